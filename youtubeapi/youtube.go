// Package youtubeapi wraps the YouTube Data API for the single purpose of
// listing a channel's currently-live broadcasts. It is the API-key alternative
// to scanning the channel page with yt-dlp; result order is preserved because
// the resolver picks the first matching title.
package youtubeapi

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/silvercord/recorder/stream"
)

// Client lists live broadcasts of one channel via the Data API search
// endpoint. It implements stream.Lister.
type Client struct {
	apiKey    string
	channelID string
	opts      []option.ClientOption
}

// New builds a Client. Extra options are appended after the API key, which
// lets tests point the client at a local server.
func New(apiKey, channelID string, opts ...option.ClientOption) *Client {
	return &Client{apiKey: apiKey, channelID: channelID, opts: opts}
}

// ListLive returns the channel's currently-live broadcasts in API order.
func (c *Client) ListLive(ctx context.Context) ([]stream.LiveBroadcast, error) {
	if c.channelID == "" {
		return nil, fmt.Errorf("youtube channel id empty")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	resp, err := svc.Search.List([]string{"snippet"}).
		ChannelId(c.channelID).
		EventType("live").
		Type("video").
		MaxResults(25).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube live search: %w", err)
	}
	out := make([]stream.LiveBroadcast, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Snippet == nil {
			continue
		}
		out = append(out, stream.LiveBroadcast{ID: item.Id.VideoId, Title: item.Snippet.Title})
	}
	return out, nil
}
