package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
)

// YouTubeConfig configures the YouTube adapter.
type YouTubeConfig struct {
	APIKey string
	// BaseURL is the Data API v3 root.
	BaseURL string
	// FeedURL is the public uploads feed, queried with ?channel_id=.
	FeedURL string
}

// YouTube reads channels through the Data API and the public uploads feed.
type YouTube struct {
	cfg  YouTubeConfig
	api  apiClient
	feed *gofeed.Parser
}

var (
	_ platform.Adapter     = (*YouTube)(nil)
	_ platform.LiveChecker = (*YouTube)(nil)
)

// NewYouTube builds the adapter; client may be nil.
func NewYouTube(cfg YouTubeConfig, client *http.Client) *YouTube {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	api := newAPIClient(client)
	feed := gofeed.NewParser()
	feed.Client = api.http
	feed.UserAgent = userAgent
	return &YouTube{cfg: cfg, api: api, feed: feed}
}

func (y *YouTube) Platform() domain.Platform { return domain.PlatformYouTube }

func (y *YouTube) Configured() bool { return y.cfg.APIKey != "" }

type ytThumbnails struct {
	Default struct{ URL string } `json:"default"`
	Medium  struct{ URL string } `json:"medium"`
	High    struct{ URL string } `json:"high"`
}

func (t ytThumbnails) best() string {
	switch {
	case t.High.URL != "":
		return t.High.URL
	case t.Medium.URL != "":
		return t.Medium.URL
	default:
		return t.Default.URL
	}
}

type ytSnippet struct {
	ChannelID   string       `json:"channelId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PublishedAt string       `json:"publishedAt"`
	Thumbnails  ytThumbnails `json:"thumbnails"`
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID   string `json:"videoId"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

type ytListResponse struct {
	Items []struct {
		ID      string    `json:"id"`
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

// ResolveChannelID accepts /channel/UC... URLs directly and otherwise asks the
// Data API by handle, by video, or by searching the show title.
func (y *YouTube) ResolveChannelID(ctx context.Context, show domain.Show) (string, error) {
	if id, ok := platform.YouTubeChannelID(show.URL); ok {
		return id, nil
	}

	if handle, ok := platform.YouTubeHandle(show.URL); ok {
		var resp ytListResponse
		q := url.Values{"part": {"id"}, "forHandle": {"@" + handle}}
		if err := y.api.getJSON(ctx, withQuery(y.cfg.BaseURL, "/channels", q), y.headers(), &resp); err != nil {
			return "", fmt.Errorf("lookup handle %s: %w", handle, err)
		}
		if len(resp.Items) > 0 && resp.Items[0].ID != "" {
			return resp.Items[0].ID, nil
		}
	}

	if videoID, ok := platform.YouTubeVideoID(show.URL); ok {
		var resp ytListResponse
		q := url.Values{"part": {"snippet"}, "id": {videoID}}
		if err := y.api.getJSON(ctx, withQuery(y.cfg.BaseURL, "/videos", q), y.headers(), &resp); err != nil {
			return "", fmt.Errorf("lookup video %s: %w", videoID, err)
		}
		if len(resp.Items) > 0 && resp.Items[0].Snippet.ChannelID != "" {
			return resp.Items[0].Snippet.ChannelID, nil
		}
	}

	if show.Title == "" {
		return "", domain.NewUserError(domain.ErrNotFound, "no channel reference in show url")
	}
	var resp ytSearchResponse
	q := url.Values{"part": {"snippet"}, "type": {"channel"}, "q": {show.Title}, "maxResults": {"1"}}
	if err := y.api.getJSON(ctx, withQuery(y.cfg.BaseURL, "/search", q), y.headers(), &resp); err != nil {
		return "", fmt.Errorf("search channel: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ID.ChannelID == "" {
		return "", domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("no channel found for %q", show.Title))
	}
	return resp.Items[0].ID.ChannelID, nil
}

// LatestItem reads the uploads feed, which costs no API quota, and falls back
// to a date-ordered search.
func (y *YouTube) LatestItem(ctx context.Context, channelID string) (platform.Item, error) {
	if y.cfg.FeedURL != "" {
		items, err := y.feedItems(ctx, channelID)
		if err == nil && len(items) > 0 {
			return items[0], nil
		}
	}

	items, err := y.search(ctx, channelID, url.Values{"order": {"date"}, "maxResults": {"1"}})
	if err != nil {
		return platform.Item{}, err
	}
	if len(items) == 0 {
		return platform.Item{}, domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("channel %s has no videos", channelID))
	}
	return items[0], nil
}

// RecentItems searches the channel for review uploads.
func (y *YouTube) RecentItems(ctx context.Context, channelID string) ([]platform.Item, error) {
	return y.search(ctx, channelID, url.Values{"order": {"date"}, "maxResults": {"10"}, "q": {"review"}})
}

// IsLive reports whether the channel is broadcasting right now.
func (y *YouTube) IsLive(ctx context.Context, channelID string) (bool, error) {
	items, err := y.search(ctx, channelID, url.Values{"eventType": {"live"}, "maxResults": {"1"}})
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func (y *YouTube) search(ctx context.Context, channelID string, extra url.Values) ([]platform.Item, error) {
	q := url.Values{"part": {"snippet"}, "channelId": {channelID}, "type": {"video"}}
	for k, v := range extra {
		q[k] = v
	}

	var resp ytSearchResponse
	if err := y.api.getJSON(ctx, withQuery(y.cfg.BaseURL, "/search", q), y.headers(), &resp); err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}

	items := make([]platform.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.ID.VideoID == "" {
			continue
		}
		items = append(items, platform.Item{
			ID:           it.ID.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			URL:          "https://www.youtube.com/watch?v=" + it.ID.VideoID,
			ThumbnailURL: it.Snippet.Thumbnails.best(),
			PublishedAt:  parseTime(time.RFC3339, it.Snippet.PublishedAt),
		})
	}
	return items, nil
}

func (y *YouTube) feedItems(ctx context.Context, channelID string) ([]platform.Item, error) {
	feedURL := withQuery(y.cfg.FeedURL, "", url.Values{"channel_id": {channelID}})
	feed, err := y.feed.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse uploads feed: %v", domain.ErrUpstream, err)
	}

	items := make([]platform.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		videoID := feedVideoID(entry)
		if videoID == "" {
			continue
		}
		item := platform.Item{
			ID:           videoID,
			Title:        entry.Title,
			Description:  entry.Description,
			URL:          entry.Link,
			ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

func feedVideoID(entry *gofeed.Item) string {
	if yt, ok := entry.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && ids[0].Value != "" {
			return ids[0].Value
		}
	}
	if id, ok := platform.YouTubeVideoID(entry.Link); ok {
		return id
	}
	return ""
}

// headers carries the API key; the Data API accepts it in place of ?key=.
func (y *YouTube) headers() map[string]string {
	return map[string]string{"X-Goog-Api-Key": y.cfg.APIKey}
}
