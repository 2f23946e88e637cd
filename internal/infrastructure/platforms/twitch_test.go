package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"BangerBoard/internal/domain"
)

func TestTwitchAdapter(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.RawQuery != "" {
			http.Error(w, "credentials belong in the body", http.StatusBadRequest)
			return
		}
		if r.PostFormValue("grant_type") != "client_credentials" || r.PostFormValue("client_secret") != "secret" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		tokenCalls.Add(1)
		fmt.Fprint(w, `{"access_token":"app-token","expires_in":3600}`)
	})
	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer app-token" || r.Header.Get("Client-Id") != "cid" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/helix/users", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("login") != "somehost" {
			fmt.Fprint(w, `{"data":[]}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"1234"}]}`)
	}))
	mux.HandleFunc("/helix/videos", authorized(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"v9","title":"Rating the new album","url":"https://twitch.tv/videos/v9",
			"thumbnail_url":"https://static/%{width}x%{height}.jpg","published_at":"2025-03-01T10:00:00Z","view_count":77}]}`)
	}))
	mux.HandleFunc("/helix/streams", authorized(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"live-1"}]}`)
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tw := NewTwitch(TwitchConfig{
		ClientID:     "cid",
		ClientSecret: "secret",
		BaseURL:      srv.URL + "/helix",
		AuthURL:      srv.URL + "/oauth2/token",
	}, srv.Client())

	id, err := tw.ResolveChannelID(context.Background(), domain.Show{URL: "https://www.twitch.tv/SomeHost"})
	if err != nil || id != "1234" {
		t.Fatalf("resolve: %q, %v", id, err)
	}

	item, err := tw.LatestItem(context.Background(), id)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if item.ThumbnailURL != "https://static/640x360.jpg" || item.ViewCount != 77 {
		t.Fatalf("unexpected item %+v", item)
	}

	live, err := tw.IsLive(context.Background(), id)
	if err != nil || !live {
		t.Fatalf("expected live, got %v, %v", live, err)
	}

	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("app token should be cached, fetched %d times", got)
	}

	if _, err := tw.ResolveChannelID(context.Background(), domain.Show{URL: "https://www.twitch.tv/nobody"}); err == nil {
		t.Fatal("expected unknown login to fail")
	}
}

func TestTwitchConfigured(t *testing.T) {
	t.Parallel()

	if NewTwitch(TwitchConfig{ClientID: "only-id"}, nil).Configured() {
		t.Fatal("client id alone is not enough")
	}
}
