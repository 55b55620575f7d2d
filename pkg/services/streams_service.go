package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"streamrelay/pkg/cache"
	"streamrelay/pkg/models"
)

const defaultAPIBaseURL = "https://www.googleapis.com/youtube/v3"

var (
	ErrMissingVideoID = errors.New("video id is required")
	ErrStreamNotFound = errors.New("stream not found")
	ErrMissingAPIKey  = errors.New("youtube api key not configured")
)

// StreamsService looks up live-stream metadata and music recommendations
// from the YouTube Data API. It is a collaborator of the chat relay, not
// part of the relay core.
type StreamsService interface {
	LiveStreamDetails(ctx context.Context, videoID string) (models.StreamDetails, error)
	MusicRecommendations(ctx context.Context, query, region string, max int) ([]models.MusicRecommendation, error)
}

type streamsService struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	redis   *cache.Redis
	ttl     time.Duration
}

type Option func(*streamsService)

// WithBaseURL points the service at a different API host. Used by tests.
func WithBaseURL(u string) Option {
	return func(s *streamsService) { s.baseURL = u }
}

func NewStreamsService(apiKey string, redis *cache.Redis, ttl time.Duration, opts ...Option) StreamsService {
	s := &streamsService{
		apiKey:  apiKey,
		baseURL: defaultAPIBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		redis:   redis,
		ttl:     ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upstream response shapes, reduced to the fields we read.
type videosListResponse struct {
	Items []struct {
		Snippet *struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
		LiveStreamingDetails *struct {
			ConcurrentViewers string    `json:"concurrentViewers"`
			ActualStartTime   time.Time `json:"actualStartTime"`
			ActualEndTime     time.Time `json:"actualEndTime"`
		} `json:"liveStreamingDetails"`
	} `json:"items"`
}

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (s *streamsService) LiveStreamDetails(ctx context.Context, videoID string) (models.StreamDetails, error) {
	var details models.StreamDetails

	if videoID == "" {
		return details, ErrMissingVideoID
	}
	if s.apiKey == "" {
		return details, ErrMissingAPIKey
	}

	cacheKey := "streams:video:" + videoID
	if s.redis != nil && s.redis.Get(cacheKey, &details) {
		return details, nil
	}

	q := url.Values{}
	q.Set("part", "liveStreamingDetails,snippet")
	q.Set("id", videoID)
	q.Set("key", s.apiKey)

	var resp videosListResponse
	if err := s.get(ctx, "/videos", q, &resp); err != nil {
		return details, err
	}

	if len(resp.Items) == 0 {
		return details, ErrStreamNotFound
	}

	item := resp.Items[0]
	live := item.LiveStreamingDetails

	details = models.StreamDetails{
		Title:        "Untitled Stream",
		ChannelTitle: "Unknown Channel",
		ElapsedTime:  "0h 0m",
	}
	if item.Snippet != nil {
		if item.Snippet.Title != "" {
			details.Title = item.Snippet.Title
		}
		if item.Snippet.ChannelTitle != "" {
			details.ChannelTitle = item.Snippet.ChannelTitle
		}
	}
	if live != nil {
		if n, err := strconv.Atoi(live.ConcurrentViewers); err == nil {
			details.ViewerCount = n
		}
		details.IsLive = live.ActualEndTime.IsZero()
		if !live.ActualStartTime.IsZero() {
			elapsed := time.Since(live.ActualStartTime)
			details.ElapsedTime = fmt.Sprintf("%dh %dm",
				int(elapsed.Hours()), int(elapsed.Minutes())%60)
		}
	}

	if s.redis != nil {
		s.redis.Set(cacheKey, details, s.ttl)
	}
	return details, nil
}

func (s *streamsService) MusicRecommendations(ctx context.Context, query, region string, max int) ([]models.MusicRecommendation, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if query == "" {
		query = "music"
	}
	if max <= 0 || max > 50 {
		max = 10
	}

	cacheKey := fmt.Sprintf("streams:music:%s:%s:%d", query, region, max)
	var cached []models.MusicRecommendation
	if s.redis != nil && s.redis.Get(cacheKey, &cached) {
		return cached, nil
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("videoCategoryId", "10")
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(max))
	q.Set("key", s.apiKey)
	if region != "" {
		q.Set("regionCode", region)
	}

	var resp searchListResponse
	if err := s.get(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}

	recs := make([]models.MusicRecommendation, 0, len(resp.Items))
	for _, item := range resp.Items {
		recs = append(recs, models.MusicRecommendation{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnail:    item.Snippet.Thumbnails.Default.URL,
		})
	}

	if s.redis != nil {
		s.redis.Set(cacheKey, recs, s.ttl)
	}
	return recs, nil
}

func (s *streamsService) get(ctx context.Context, path string, q url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[STREAMS] upstream status %d for %s", resp.StatusCode, path)
		return fmt.Errorf("youtube api status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
