package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/infrastructure/platforms"
	"BangerBoard/internal/infrastructure/storage"
	"BangerBoard/internal/logging"
	"BangerBoard/internal/platform"
)

func seedShow(t *testing.T, repo *storage.MemoryRepository, p domain.Platform, url, channel string) domain.Show {
	t.Helper()
	show := domain.NewPlaceholderShow(p, url, fixedNow)
	show.ChannelID = channel
	stored, _, err := repo.CreateShowIfAbsent(context.Background(), show)
	if err != nil {
		t.Fatalf("seed show: %v", err)
	}
	return stored
}

func newOrchestrator(repo *storage.MemoryRepository, changes *recordingPublisher, adapters ...platform.Adapter) *ScrapeOrchestrator {
	deps := ScrapeDeps{
		Shows:    repo,
		Reviews:  repo,
		Registry: platform.NewRegistry(adapters...),
		Logger:   logging.Discard(),
		Now:      clock,
	}
	if changes != nil {
		deps.Changes = changes
	}
	return NewScrapeOrchestrator(deps)
}

func TestScrapeOneHarvestsReviews(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	show := seedShow(t, repo, domain.PlatformYouTube, "https://youtube.com/@host", "")
	adapter := &fakeAdapter{
		platform:   domain.PlatformYouTube,
		configured: true,
		channelID:  "UCxxxxxxxxxxxxxxxxxxxxxx",
		latest:     platform.Item{ID: "vid123", ThumbnailURL: "https://i.ytimg.com/vi/vid123/hqdefault.jpg"},
		items: []platform.Item{
			{Title: "Reviewing: Kendrick Lamar - Not Like Us", URL: "https://youtu.be/a"},
			{Title: "Vlog day 3", Description: "just chatting", URL: "https://youtu.be/b"},
			{Description: "we reviewed the latest from Doechii!", URL: "https://youtu.be/c"},
			{Title: "SZA - Saturn | track review", URL: "https://youtu.be/d"},
			{Title: "Reviewing: Kendrick Lamar - Not Like Us", URL: "https://youtu.be/a"},
		},
	}
	o := newOrchestrator(repo, nil, adapter)

	res := o.ScrapeOne(context.Background(), show)
	if !res.Success || !res.ThumbnailUpdated {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ReviewsCount != 3 {
		t.Fatalf("expected 3 new reviews, got %d", res.ReviewsCount)
	}
	if res.Message != "Scraped 3 reviews from Youtube channel" {
		t.Fatalf("unexpected message %q", res.Message)
	}

	stored, _ := repo.FindShowByID(context.Background(), show.ID)
	if stored.ChannelID != "UCxxxxxxxxxxxxxxxxxxxxxx" || stored.VideoID != "vid123" {
		t.Fatalf("channel or video not persisted: %+v", stored)
	}
	if stored.ReviewContent != "Reviews of Kendrick Lamar, Doechii, SZA" {
		t.Fatalf("unexpected summary %q", stored.ReviewContent)
	}

	reviews, _ := repo.ListReviewsByArtist(context.Background(), "kendrick")
	if len(reviews) != 1 || reviews[0].SongTitle != "Not Like Us" {
		t.Fatalf("unexpected reviews %+v", reviews)
	}

	// A second run must not duplicate anything.
	res = o.ScrapeOne(context.Background(), stored)
	if res.ReviewsCount != 0 {
		t.Fatalf("rescrape stored %d duplicates", res.ReviewsCount)
	}
}

func TestScrapeOneFallbackWithoutCredentials(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	show := seedShow(t, repo, domain.PlatformTwitch, "https://twitch.tv/host", "")
	o := newOrchestrator(repo, nil, &fakeAdapter{platform: domain.PlatformTwitch})

	res := o.ScrapeOne(context.Background(), show)
	if !res.Success || !res.UsingFallback || res.Message != fallbackMessage {
		t.Fatalf("unexpected result %+v", res)
	}

	_, want := FallbackThumbnail(show.ID)
	stored, _ := repo.FindShowByID(context.Background(), show.ID)
	if stored.Thumbnail != want {
		t.Fatalf("expected %q, got %q", want, stored.Thumbnail)
	}
}

func TestFallbackThumbnailIsDeterministic(t *testing.T) {
	t.Parallel()

	for id := int64(0); id < 8; id++ {
		v1, th1 := FallbackThumbnail(id)
		v2, th2 := FallbackThumbnail(id)
		if v1 != v2 || th1 != th2 {
			t.Fatalf("id %d not deterministic", id)
		}
		if v1 != fallbackVideoIDs[id%4] {
			t.Fatalf("id %d picked %s", id, v1)
		}
	}
}

func TestScrapeOnePartialFailure(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	show := seedShow(t, repo, domain.PlatformYouTube, "https://youtube.com/@host", "UCchan")
	adapter := &fakeAdapter{
		platform:   domain.PlatformYouTube,
		configured: true,
		latest:     platform.Item{ID: "v", ThumbnailURL: "https://img/v.jpg"},
		itemsErr:   fmt.Errorf("%w: quota exceeded", domain.ErrUpstream),
	}
	o := newOrchestrator(repo, nil, adapter)

	res := o.ScrapeOne(context.Background(), show)
	if res.Success {
		t.Fatal("review search failure should fail the show")
	}
	if !res.ThumbnailUpdated || res.ReviewsError != "platform request failed" {
		t.Fatalf("thumbnail and review outcomes must be reported independently: %+v", res)
	}
	stored, _ := repo.FindShowByID(context.Background(), show.ID)
	if stored.Thumbnail != "https://img/v.jpg" {
		t.Fatal("thumbnail update must not be rolled back")
	}
}

func TestScrapeOneChannelResolutionFailure(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	show := seedShow(t, repo, domain.PlatformInstagram, "https://instagram.com/host", "")
	o := newOrchestrator(repo, nil, &fakeAdapter{
		platform:   domain.PlatformInstagram,
		configured: true,
		channelErr: errors.New("no such user"),
	})

	res := o.ScrapeOne(context.Background(), show)
	if res.Success || !strings.Contains(res.Message, "Could not determine Instagram channel ID") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestScrapeOneUpdatesLiveStatus(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	show := seedShow(t, repo, domain.PlatformTwitch, "https://twitch.tv/host", "host")
	adapter := &liveAdapter{
		fakeAdapter: fakeAdapter{platform: domain.PlatformTwitch, configured: true, latest: platform.Item{ThumbnailURL: "https://img/t.jpg"}},
		live:        true,
	}
	o := newOrchestrator(repo, nil, adapter)

	if res := o.ScrapeOne(context.Background(), show); !res.Success {
		t.Fatalf("unexpected result %+v", res)
	}
	stored, _ := repo.FindShowByID(context.Background(), show.ID)
	if !stored.IsLive {
		t.Fatal("expected live flag to be stored")
	}
}

func TestScrapeAllIsolatesFailuresAndKeepsOrder(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	first := seedShow(t, repo, domain.PlatformYouTube, "https://youtube.com/@one", "UC1")
	second := seedShow(t, repo, domain.PlatformTikTok, "https://tiktok.com/@two", "")
	third := seedShow(t, repo, domain.PlatformInstagram, "https://instagram.com/three", "")
	fourth := seedShow(t, repo, domain.Platform("vimeo"), "https://vimeo.com/four", "")

	changes := &recordingPublisher{}
	o := newOrchestrator(repo, changes,
		&fakeAdapter{platform: domain.PlatformYouTube, configured: true, latest: platform.Item{ThumbnailURL: "https://img/1.jpg"}},
		&fakeAdapter{platform: domain.PlatformTikTok, configured: true, panicOn: "channel"},
		&fakeAdapter{platform: domain.PlatformInstagram},
	)

	batch, err := o.ScrapeAll(context.Background())
	if err != nil {
		t.Fatalf("scrape all: %v", err)
	}
	if !batch.Success || batch.Message != "Scraped 4 shows successfully" || !batch.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected batch %+v", batch)
	}

	wantIDs := []int64{first.ID, second.ID, third.ID, fourth.ID}
	for i, r := range batch.Results {
		if r.ShowID != wantIDs[i] {
			t.Fatalf("result %d is show %d, want %d", i, r.ShowID, wantIDs[i])
		}
	}
	if !batch.Results[0].Success {
		t.Fatalf("show 1 should succeed: %+v", batch.Results[0])
	}
	if batch.Results[1].Success {
		t.Fatal("panicking adapter should fail only its own show")
	}
	if !batch.Results[2].Success || !batch.Results[2].UsingFallback {
		t.Fatalf("show 3 should use the fallback: %+v", batch.Results[2])
	}
	if batch.Results[3].Success || batch.Results[3].Message != "Unsupported platform: vimeo" {
		t.Fatalf("unexpected unsupported result %+v", batch.Results[3])
	}
	if changes.count() != 1 {
		t.Fatalf("expected one change event, got %d", changes.count())
	}
}

func TestScrapeShowNotFound(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(storage.NewMemoryRepository(), nil)
	if _, err := o.ScrapeShow(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRefreshThumbnailsOnlyYouTubeWithChannel(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	withChannel := seedShow(t, repo, domain.PlatformYouTube, "https://youtube.com/@a", "UCa")
	seedShow(t, repo, domain.PlatformYouTube, "https://youtube.com/@b", "")
	seedShow(t, repo, domain.PlatformTwitch, "https://twitch.tv/c", "c")

	o := newOrchestrator(repo, nil, &fakeAdapter{
		platform:   domain.PlatformYouTube,
		configured: true,
		latest:     platform.Item{ID: "new", ThumbnailURL: "https://i.ytimg.com/vi/new/hqdefault.jpg"},
	})

	batch, err := o.RefreshThumbnails(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(batch.Results) != 1 || batch.Results[0].ShowID != withChannel.ID || !batch.Results[0].ThumbnailUpdated {
		t.Fatalf("unexpected results %+v", batch.Results)
	}
	if batch.Message != "Updated thumbnails for 1 of 1 shows" {
		t.Fatalf("unexpected message %q", batch.Message)
	}
}

func TestScrapeResultsNeverCarryCredentials(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	const (
		ytKey   = "yt-key-do-not-expose"
		igToken = "ig-token-do-not-expose"
	)
	yt := platforms.NewYouTube(platforms.YouTubeConfig{APIKey: ytKey, BaseURL: deadURL, FeedURL: deadURL + "/feed"}, nil)
	ig := platforms.NewInstagram(platforms.InstagramConfig{AccessToken: igToken, BaseURL: deadURL}, nil)

	repo := storage.NewMemoryRepository()
	seedShow(t, repo, domain.PlatformYouTube, "https://youtube.com/@host", "UCchan")
	seedShow(t, repo, domain.PlatformInstagram, "https://instagram.com/host", "")
	o := newOrchestrator(repo, nil, yt, ig)

	batch, err := o.ScrapeAll(context.Background())
	if err != nil {
		t.Fatalf("ScrapeAll: %v", err)
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	for _, secret := range []string{ytKey, igToken} {
		if strings.Contains(string(raw), secret) {
			t.Fatalf("credential leaked into scrape result: %s", raw)
		}
	}

	youtube, instagram := batch.Results[0], batch.Results[1]
	if youtube.Success || youtube.ReviewsError != "platform request failed" {
		t.Fatalf("unexpected youtube result %+v", youtube)
	}
	if instagram.Success || instagram.Message != "Could not determine Instagram channel ID: platform request failed" {
		t.Fatalf("unexpected instagram result %+v", instagram)
	}
}
