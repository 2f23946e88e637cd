package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
)

// TwitchConfig configures the Helix adapter.
type TwitchConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthURL      string
}

// Twitch reads channels through Helix with an app access token.
type Twitch struct {
	cfg TwitchConfig
	api apiClient
	now func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

var (
	_ platform.Adapter     = (*Twitch)(nil)
	_ platform.LiveChecker = (*Twitch)(nil)
)

// NewTwitch builds the adapter; client may be nil.
func NewTwitch(cfg TwitchConfig, client *http.Client) *Twitch {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Twitch{cfg: cfg, api: newAPIClient(client), now: time.Now}
}

func (t *Twitch) Platform() domain.Platform { return domain.PlatformTwitch }

func (t *Twitch) Configured() bool { return t.cfg.ClientID != "" && t.cfg.ClientSecret != "" }

type twitchVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublishedAt  string `json:"published_at"`
	ViewCount    int64  `json:"view_count"`
}

// ResolveChannelID maps the login in the show URL to a Helix user id.
func (t *Twitch) ResolveChannelID(ctx context.Context, show domain.Show) (string, error) {
	login, ok := platform.TwitchChannel(show.URL)
	if !ok {
		return "", domain.NewUserError(domain.ErrNotFound, "no twitch login in show url")
	}

	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := t.get(ctx, "/users", url.Values{"login": {strings.ToLower(login)}}, &resp); err != nil {
		return "", fmt.Errorf("lookup user %s: %w", login, err)
	}
	if len(resp.Data) == 0 {
		return "", domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("twitch user %s not found", login))
	}
	return resp.Data[0].ID, nil
}

// LatestItem returns the newest archived video.
func (t *Twitch) LatestItem(ctx context.Context, channelID string) (platform.Item, error) {
	items, err := t.videos(ctx, channelID, 1)
	if err != nil {
		return platform.Item{}, err
	}
	if len(items) == 0 {
		return platform.Item{}, domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("channel %s has no videos", channelID))
	}
	return items[0], nil
}

// RecentItems lists the latest archived videos.
func (t *Twitch) RecentItems(ctx context.Context, channelID string) ([]platform.Item, error) {
	return t.videos(ctx, channelID, 20)
}

// IsLive reports whether the user has an active stream.
func (t *Twitch) IsLive(ctx context.Context, channelID string) (bool, error) {
	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := t.get(ctx, "/streams", url.Values{"user_id": {channelID}}, &resp); err != nil {
		return false, fmt.Errorf("lookup stream: %w", err)
	}
	return len(resp.Data) > 0, nil
}

func (t *Twitch) videos(ctx context.Context, userID string, first int) ([]platform.Item, error) {
	var resp struct {
		Data []twitchVideo `json:"data"`
	}
	q := url.Values{"user_id": {userID}, "first": {fmt.Sprint(first)}}
	if err := t.get(ctx, "/videos", q, &resp); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	items := make([]platform.Item, 0, len(resp.Data))
	for _, v := range resp.Data {
		items = append(items, platform.Item{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			URL:          v.URL,
			ThumbnailURL: sizeThumbnail(v.ThumbnailURL),
			PublishedAt:  parseTime(time.RFC3339, v.PublishedAt),
			ViewCount:    v.ViewCount,
		})
	}
	return items, nil
}

// sizeThumbnail fills the %{width}x%{height} template Helix returns.
func sizeThumbnail(raw string) string {
	r := strings.NewReplacer("%{width}", "640", "%{height}", "360")
	return r.Replace(raw)
}

func (t *Twitch) get(ctx context.Context, path string, q url.Values, out any) error {
	tok, err := t.token(ctx)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"Client-Id":     t.cfg.ClientID,
		"Authorization": "Bearer " + tok,
	}
	return t.api.getJSON(ctx, withQuery(t.cfg.BaseURL, path, q), headers, out)
}

// token returns a cached app access token, refreshing it a minute before expiry.
func (t *Twitch) token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.now().Before(t.expiresAt) {
		return t.accessToken, nil
	}

	form := url.Values{
		"client_id":     {t.cfg.ClientID},
		"client_secret": {t.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := t.api.postForm(ctx, t.cfg.AuthURL, form, &resp); err != nil {
		return "", fmt.Errorf("twitch app token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: twitch returned an empty access token", domain.ErrUpstream)
	}

	t.accessToken = resp.AccessToken
	t.expiresAt = t.now().Add(time.Duration(resp.ExpiresIn)*time.Second - time.Minute)
	return t.accessToken, nil
}
