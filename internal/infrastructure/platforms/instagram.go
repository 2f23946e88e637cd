package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
)

const instagramTimeLayout = "2006-01-02T15:04:05-0700"

// InstagramConfig configures the Graph API adapter.
type InstagramConfig struct {
	AccessToken string
	BaseURL     string
}

// Instagram reads the media of the account the access token belongs to.
type Instagram struct {
	cfg InstagramConfig
	api apiClient
}

var _ platform.Adapter = (*Instagram)(nil)

// NewInstagram builds the adapter; client may be nil.
func NewInstagram(cfg InstagramConfig, client *http.Client) *Instagram {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Instagram{cfg: cfg, api: newAPIClient(client)}
}

func (i *Instagram) Platform() domain.Platform { return domain.PlatformInstagram }

func (i *Instagram) Configured() bool { return i.cfg.AccessToken != "" }

// ResolveChannelID returns the token owner's id when it matches the show's username.
func (i *Instagram) ResolveChannelID(ctx context.Context, show domain.Show) (string, error) {
	username, ok := platform.InstagramUsername(show.URL)
	if !ok {
		return "", domain.NewUserError(domain.ErrNotFound, "no instagram username in show url")
	}

	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	q := url.Values{"fields": {"id,username"}}
	if err := i.api.getJSON(ctx, withQuery(i.cfg.BaseURL, "/me", q), i.headers(), &me); err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}
	if !strings.EqualFold(me.Username, username) {
		return "", domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("access token belongs to @%s, not @%s", me.Username, username))
	}
	return me.ID, nil
}

func (i *Instagram) LatestItem(ctx context.Context, channelID string) (platform.Item, error) {
	items, err := i.media(ctx, channelID, 1)
	if err != nil {
		return platform.Item{}, err
	}
	if len(items) == 0 {
		return platform.Item{}, domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("account %s has no media", channelID))
	}
	return items[0], nil
}

func (i *Instagram) RecentItems(ctx context.Context, channelID string) ([]platform.Item, error) {
	return i.media(ctx, channelID, 25)
}

func (i *Instagram) media(ctx context.Context, userID string, limit int) ([]platform.Item, error) {
	var resp struct {
		Data []struct {
			ID           string `json:"id"`
			Caption      string `json:"caption"`
			MediaType    string `json:"media_type"`
			MediaURL     string `json:"media_url"`
			ThumbnailURL string `json:"thumbnail_url"`
			Permalink    string `json:"permalink"`
			Timestamp    string `json:"timestamp"`
			LikeCount    int    `json:"like_count"`
		} `json:"data"`
	}
	q := url.Values{
		"fields": {"id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,like_count"},
		"limit":  {fmt.Sprint(limit)},
	}
	if err := i.api.getJSON(ctx, withQuery(i.cfg.BaseURL, "/"+url.PathEscape(userID)+"/media", q), i.headers(), &resp); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	items := make([]platform.Item, 0, len(resp.Data))
	for _, m := range resp.Data {
		thumb := m.ThumbnailURL
		if thumb == "" && m.MediaType != "VIDEO" {
			thumb = m.MediaURL
		}
		items = append(items, platform.Item{
			ID:           m.ID,
			Description:  m.Caption,
			URL:          m.Permalink,
			ThumbnailURL: thumb,
			PublishedAt:  parseTime(instagramTimeLayout, m.Timestamp),
			LikeCount:    m.LikeCount,
		})
	}
	return items, nil
}

func (i *Instagram) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + i.cfg.AccessToken}
}
