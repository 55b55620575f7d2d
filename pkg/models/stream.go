package models

// StreamDetails is the shape returned by the live-stream lookup endpoint.
type StreamDetails struct {
	ViewerCount  int    `json:"viewerCount"`
	Title        string `json:"title"`
	IsLive       bool   `json:"isLive"`
	ChannelTitle string `json:"channelTitle"`
	ElapsedTime  string `json:"elapsedTime"`
}

// MusicRecommendation is one entry of the music search endpoint.
type MusicRecommendation struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnail    string `json:"thumbnail,omitempty"`
}
