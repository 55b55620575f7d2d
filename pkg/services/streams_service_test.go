package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"streamrelay/pkg/cache"
)

func testCache(t *testing.T) *cache.Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewWithClient(client)
}

func TestLiveStreamDetailsMissingVideoID(t *testing.T) {
	svc := NewStreamsService("key", nil, time.Minute)

	_, err := svc.LiveStreamDetails(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingVideoID)
}

func TestLiveStreamDetailsMissingAPIKey(t *testing.T) {
	svc := NewStreamsService("", nil, time.Minute)

	_, err := svc.LiveStreamDetails(context.Background(), "abc")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLiveStreamDetailsNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"items": []interface{}{}})
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", nil, time.Minute, WithBaseURL(upstream.URL))

	_, err := svc.LiveStreamDetails(context.Background(), "nope")
	require.ErrorIs(t, err, ErrStreamNotFound)
}

func TestLiveStreamDetailsLive(t *testing.T) {
	req := require.New(t)
	start := time.Now().Add(-90*time.Minute - 30*time.Second).UTC()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/videos", r.URL.Path)
		req.Equal("live-1", r.URL.Query().Get("id"))
		req.Equal("key", r.URL.Query().Get("key"))
		fmt.Fprintf(w, `{
			"items": [{
				"snippet": {"title": "Launch Day", "channelTitle": "Space Channel"},
				"liveStreamingDetails": {
					"concurrentViewers": "1523",
					"actualStartTime": %q
				}
			}]
		}`, start.Format(time.RFC3339))
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", nil, time.Minute, WithBaseURL(upstream.URL))

	details, err := svc.LiveStreamDetails(context.Background(), "live-1")
	req.NoError(err)
	req.Equal(1523, details.ViewerCount)
	req.Equal("Launch Day", details.Title)
	req.True(details.IsLive)
	req.Equal("Space Channel", details.ChannelTitle)
	req.Equal("1h 30m", details.ElapsedTime)
}

func TestLiveStreamDetailsEnded(t *testing.T) {
	req := require.New(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"items": [{
				"snippet": {"title": "Replay", "channelTitle": "Space Channel"},
				"liveStreamingDetails": {
					"actualStartTime": "2026-01-01T00:00:00Z",
					"actualEndTime": "2026-01-01T02:00:00Z"
				}
			}]
		}`)
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", nil, time.Minute, WithBaseURL(upstream.URL))

	details, err := svc.LiveStreamDetails(context.Background(), "vod-1")
	req.NoError(err)
	req.False(details.IsLive)
	req.Equal(0, details.ViewerCount)
}

func TestLiveStreamDetailsNotAStream(t *testing.T) {
	req := require.New(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"snippet": {"title": "Plain Video", "channelTitle": "C"}}]}`)
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", nil, time.Minute, WithBaseURL(upstream.URL))

	details, err := svc.LiveStreamDetails(context.Background(), "video-1")
	req.NoError(err)
	req.False(details.IsLive)
	req.Equal("0h 0m", details.ElapsedTime)
}

func TestLiveStreamDetailsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", nil, time.Minute, WithBaseURL(upstream.URL))

	_, err := svc.LiveStreamDetails(context.Background(), "abc")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrStreamNotFound)
}

func TestLiveStreamDetailsCached(t *testing.T) {
	req := require.New(t)
	var hits atomic.Int32

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"items": [{"snippet": {"title": "T", "channelTitle": "C"}}]}`)
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", testCache(t), time.Minute, WithBaseURL(upstream.URL))

	for i := 0; i < 3; i++ {
		_, err := svc.LiveStreamDetails(context.Background(), "abc")
		req.NoError(err)
	}
	req.Equal(int32(1), hits.Load())
}

func TestMusicRecommendations(t *testing.T) {
	req := require.New(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/search", r.URL.Path)
		q := r.URL.Query()
		req.Equal("lofi", q.Get("q"))
		req.Equal("10", q.Get("videoCategoryId"))
		req.Equal("5", q.Get("maxResults"))
		req.Equal("TW", q.Get("regionCode"))
		fmt.Fprint(w, `{
			"items": [{
				"id": {"videoId": "v1"},
				"snippet": {
					"title": "Lofi Mix",
					"channelTitle": "Beats",
					"thumbnails": {"default": {"url": "http://img/v1.jpg"}}
				}
			}]
		}`)
	}))
	t.Cleanup(upstream.Close)

	svc := NewStreamsService("key", nil, time.Minute, WithBaseURL(upstream.URL))

	recs, err := svc.MusicRecommendations(context.Background(), "lofi", "TW", 5)
	req.NoError(err)
	req.Len(recs, 1)
	req.Equal("v1", recs[0].VideoID)
	req.Equal("Lofi Mix", recs[0].Title)
	req.Equal("Beats", recs[0].ChannelTitle)
	req.Equal("http://img/v1.jpg", recs[0].Thumbnail)
}
