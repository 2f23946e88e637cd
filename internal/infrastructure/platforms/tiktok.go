package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
)

// TikTokConfig configures the v2 API adapter.
type TikTokConfig struct {
	AccessToken string
	BaseURL     string
}

// TikTok reads the videos of the user the access token was granted by.
type TikTok struct {
	cfg TikTokConfig
	api apiClient
}

var _ platform.Adapter = (*TikTok)(nil)

// NewTikTok builds the adapter; client may be nil.
func NewTikTok(cfg TikTokConfig, client *http.Client) *TikTok {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &TikTok{cfg: cfg, api: newAPIClient(client)}
}

func (t *TikTok) Platform() domain.Platform { return domain.PlatformTikTok }

func (t *TikTok) Configured() bool { return t.cfg.AccessToken != "" }

type tiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e tiktokError) err() error {
	if e.Code == "" || e.Code == "ok" {
		return nil
	}
	return fmt.Errorf("%w: tiktok %s: %s", domain.ErrUpstream, e.Code, e.Message)
}

// ResolveChannelID returns the token owner's open id when it matches the show's username.
func (t *TikTok) ResolveChannelID(ctx context.Context, show domain.Show) (string, error) {
	username, ok := platform.TikTokUsername(show.URL)
	if !ok {
		return "", domain.NewUserError(domain.ErrNotFound, "no tiktok username in show url")
	}

	var resp struct {
		Data struct {
			User struct {
				OpenID   string `json:"open_id"`
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
		Error tiktokError `json:"error"`
	}
	q := url.Values{"fields": {"open_id,username"}}
	if err := t.api.getJSON(ctx, withQuery(t.cfg.BaseURL, "/user/info/", q), t.headers(), &resp); err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if err := resp.Error.err(); err != nil {
		return "", err
	}
	if !strings.EqualFold(resp.Data.User.Username, username) {
		return "", domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("access token belongs to @%s, not @%s", resp.Data.User.Username, username))
	}
	return resp.Data.User.OpenID, nil
}

func (t *TikTok) LatestItem(ctx context.Context, _ string) (platform.Item, error) {
	items, err := t.videos(ctx, 1)
	if err != nil {
		return platform.Item{}, err
	}
	if len(items) == 0 {
		return platform.Item{}, domain.NewUserError(domain.ErrNotFound, "account has no videos")
	}
	return items[0], nil
}

func (t *TikTok) RecentItems(ctx context.Context, _ string) ([]platform.Item, error) {
	return t.videos(ctx, 20)
}

func (t *TikTok) videos(ctx context.Context, limit int) ([]platform.Item, error) {
	var resp struct {
		Data struct {
			Videos []struct {
				ID               string `json:"id"`
				Title            string `json:"title"`
				VideoDescription string `json:"video_description"`
				CoverImageURL    string `json:"cover_image_url"`
				ShareURL         string `json:"share_url"`
				CreateTime       int64  `json:"create_time"`
				ViewCount        int64  `json:"view_count"`
				LikeCount        int    `json:"like_count"`
			} `json:"videos"`
		} `json:"data"`
		Error tiktokError `json:"error"`
	}
	q := url.Values{"fields": {"id,title,video_description,cover_image_url,share_url,create_time,view_count,like_count"}}
	body := map[string]int{"max_count": limit}
	if err := t.api.doJSON(ctx, http.MethodPost, withQuery(t.cfg.BaseURL, "/video/list/", q), t.headers(), body, &resp); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if err := resp.Error.err(); err != nil {
		return nil, err
	}

	items := make([]platform.Item, 0, len(resp.Data.Videos))
	for _, v := range resp.Data.Videos {
		item := platform.Item{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.VideoDescription,
			URL:          v.ShareURL,
			ThumbnailURL: v.CoverImageURL,
			ViewCount:    v.ViewCount,
			LikeCount:    v.LikeCount,
		}
		if v.CreateTime > 0 {
			item.PublishedAt = time.Unix(v.CreateTime, 0).UTC()
		}
		items = append(items, item)
	}
	return items, nil
}

func (t *TikTok) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + t.cfg.AccessToken}
}
