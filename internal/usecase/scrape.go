package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
	"BangerBoard/internal/ports"
)

// fallbackVideoIDs are well-known public YouTube uploads whose thumbnails
// stand in when platform credentials are missing.
var fallbackVideoIDs = []string{"dQw4w9WgXcQ", "jNQXAC9IVRw", "9bZkp7q19f0", "kJQP7kiw5Fk"}

const fallbackMessage = "Used fallback thumbnail (platform credentials not configured)"

// FallbackThumbnail picks the stand-in thumbnail of a show deterministically.
func FallbackThumbnail(showID int64) (videoID, thumbnail string) {
	idx := showID % int64(len(fallbackVideoIDs))
	if idx < 0 {
		idx = -idx
	}
	videoID = fallbackVideoIDs[idx]
	return videoID, youtubeThumbnail(videoID)
}

func youtubeThumbnail(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}

// ScrapeResult reports what happened to one show.
type ScrapeResult struct {
	ShowID           int64           `json:"showId"`
	Title            string          `json:"title"`
	Platform         domain.Platform `json:"platform"`
	Success          bool            `json:"success"`
	Message          string          `json:"message,omitempty"`
	ReviewsCount     int             `json:"reviewsCount"`
	ThumbnailUpdated bool            `json:"thumbnailUpdated"`
	ThumbnailError   string          `json:"thumbnailError,omitempty"`
	ReviewsError     string          `json:"reviewsError,omitempty"`
	UsingFallback    bool            `json:"usingFallback,omitempty"`
}

// BatchResult aggregates a run over many shows.
type BatchResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Results   []ScrapeResult `json:"results"`
	Timestamp time.Time      `json:"timestamp"`
}

// ScrapeDeps groups the collaborators of ScrapeOrchestrator.
type ScrapeDeps struct {
	Shows    ports.ShowRepository
	Reviews  ports.ReviewRepository
	Registry *platform.Registry
	// Patterns defaults to platform.TitlePatterns.
	Patterns []platform.TitlePattern
	Changes  ports.ChangePublisher
	Logger   *slog.Logger
	Now      func() time.Time
}

// ScrapeOrchestrator refreshes shows from their platforms and harvests reviews.
type ScrapeOrchestrator struct {
	deps   ScrapeDeps
	logger *slog.Logger
}

// NewScrapeOrchestrator builds the orchestrator.
func NewScrapeOrchestrator(deps ScrapeDeps) *ScrapeOrchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Patterns == nil {
		deps.Patterns = platform.TitlePatterns
	}
	if deps.Registry == nil {
		deps.Registry = platform.NewRegistry()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeOrchestrator{deps: deps, logger: logger.With("component", "scraper")}
}

// ScrapeShow scrapes a single show by id.
func (o *ScrapeOrchestrator) ScrapeShow(ctx context.Context, id int64) (ScrapeResult, error) {
	show, err := o.deps.Shows.FindShowByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return ScrapeResult{}, domain.NewUserError(domain.ErrNotFound, fmt.Sprintf("Show %d not found", id))
	}
	if err != nil {
		return ScrapeResult{}, fmt.Errorf("load show %d: %w", id, err)
	}
	res := o.scrapeIsolated(ctx, show)
	o.publish(ctx, domain.ChangeEvent{Entity: "show", ID: id, Action: "scraped", At: o.deps.Now()})
	return res, nil
}

// ScrapeAll scrapes every show concurrently. Per-show failures are reported in
// the results; only failing to list shows is an error.
func (o *ScrapeOrchestrator) ScrapeAll(ctx context.Context) (BatchResult, error) {
	shows, err := o.deps.Shows.ListShows(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list shows: %w", err)
	}

	results := o.fanOut(ctx, shows, o.scrapeIsolated)

	now := o.deps.Now()
	o.logger.Info("scrape finished", "shows", len(shows))
	o.publish(ctx, domain.ChangeEvent{Entity: "show", Action: "scraped", At: now})
	return BatchResult{
		Success:   true,
		Message:   fmt.Sprintf("Scraped %d shows successfully", len(results)),
		Results:   results,
		Timestamp: now,
	}, nil
}

// RefreshThumbnails updates only thumbnails of YouTube shows that know their channel.
func (o *ScrapeOrchestrator) RefreshThumbnails(ctx context.Context) (BatchResult, error) {
	shows, err := o.deps.Shows.ListShows(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list shows: %w", err)
	}

	var targets []domain.Show
	for _, s := range shows {
		if s.Platform == domain.PlatformYouTube && s.ChannelID != "" {
			targets = append(targets, s)
		}
	}

	results := o.fanOut(ctx, targets, o.refreshIsolated)

	updated := 0
	for _, r := range results {
		if r.ThumbnailUpdated {
			updated++
		}
	}

	now := o.deps.Now()
	o.publish(ctx, domain.ChangeEvent{Entity: "show", Action: "thumbnails", At: now})
	return BatchResult{
		Success:   true,
		Message:   fmt.Sprintf("Updated thumbnails for %d of %d shows", updated, len(targets)),
		Results:   results,
		Timestamp: now,
	}, nil
}

// fanOut runs fn once per show in its own goroutine; results keep the input order.
func (o *ScrapeOrchestrator) fanOut(ctx context.Context, shows []domain.Show, fn func(context.Context, domain.Show) ScrapeResult) []ScrapeResult {
	results := make([]ScrapeResult, len(shows))
	var wg sync.WaitGroup
	for i, show := range shows {
		wg.Add(1)
		go func(i int, show domain.Show) {
			defer wg.Done()
			results[i] = fn(ctx, show)
		}(i, show)
	}
	wg.Wait()
	return results
}

func (o *ScrapeOrchestrator) scrapeIsolated(ctx context.Context, show domain.Show) (res ScrapeResult) {
	defer o.recoverInto(&res, show)
	return o.ScrapeOne(ctx, show)
}

func (o *ScrapeOrchestrator) refreshIsolated(ctx context.Context, show domain.Show) (res ScrapeResult) {
	defer o.recoverInto(&res, show)
	return o.refreshThumbnail(ctx, show)
}

func (o *ScrapeOrchestrator) recoverInto(res *ScrapeResult, show domain.Show) {
	if r := recover(); r != nil {
		o.logger.Error("scrape panicked", "show", show.ID, "panic", r)
		*res = failed(newResult(show), "internal error")
	}
}

// ScrapeOne refreshes a show's channel, thumbnail and live status and stores
// the reviews found among its recent uploads. It never returns an error;
// failures are described in the result.
func (o *ScrapeOrchestrator) ScrapeOne(ctx context.Context, show domain.Show) ScrapeResult {
	res := newResult(show)

	adapter, err := o.deps.Registry.Resolve(show.Platform)
	if err != nil {
		return failed(res, fmt.Sprintf("Unsupported platform: %s", show.Platform))
	}
	if !adapter.Configured() {
		return o.applyFallback(ctx, show, res)
	}

	channelID := show.ChannelID
	if channelID == "" {
		channelID, err = adapter.ResolveChannelID(ctx, show)
		if err != nil || channelID == "" {
			reason := o.publicReason(show, "resolve channel", errOrEmpty(err))
			return failed(res, fmt.Sprintf("Could not determine %s channel ID: %s", show.Platform.DisplayName(), reason))
		}
		if err := o.deps.Shows.UpdateShow(ctx, show.ID, domain.ShowUpdate{ChannelID: &channelID}); err != nil {
			return failed(res, "Failed to save channel ID: "+o.publicReason(show, "save channel", err))
		}
		show.ChannelID = channelID
	}

	if latest, err := adapter.LatestItem(ctx, channelID); err != nil {
		res.ThumbnailError = o.publicReason(show, "latest item", err)
	} else if latest.ThumbnailURL == "" {
		res.ThumbnailError = "latest upload has no thumbnail"
	} else {
		update := domain.ShowUpdate{Thumbnail: &latest.ThumbnailURL}
		if latest.ID != "" {
			update.VideoID = &latest.ID
		}
		if err := o.deps.Shows.UpdateShow(ctx, show.ID, update); err != nil {
			res.ThumbnailError = o.publicReason(show, "save thumbnail", err)
		} else {
			res.ThumbnailUpdated = true
		}
	}

	if checker, ok := adapter.(platform.LiveChecker); ok {
		if live, err := checker.IsLive(ctx, channelID); err != nil {
			o.logger.Warn("live status unavailable", "show", show.ID, "error", err)
		} else if err := o.deps.Shows.UpdateShow(ctx, show.ID, domain.ShowUpdate{IsLive: &live}); err != nil {
			o.logger.Warn("live status not saved", "show", show.ID, "error", err)
		}
	}

	items, err := adapter.RecentItems(ctx, channelID)
	if err != nil {
		res.ReviewsError = o.publicReason(show, "recent items", err)
		return failed(res, "Failed to search for reviews: "+res.ReviewsError)
	}

	stored, artists, err := o.storeReviews(ctx, show, items)
	res.ReviewsCount = stored
	if err != nil {
		res.ReviewsError = o.publicReason(show, "store reviews", err)
		return failed(res, "Failed to store reviews: "+res.ReviewsError)
	}

	now := o.deps.Now()
	update := domain.ShowUpdate{LastUpdated: &now}
	if len(artists) > 0 {
		summary := domain.SummarizeArtists(artists)
		update.ReviewContent = &summary
		update.ArtistsReviewed = artists
	}
	if err := o.deps.Shows.UpdateShow(ctx, show.ID, update); err != nil {
		return failed(res, "Failed to update show summary: "+o.publicReason(show, "update summary", err))
	}

	res.Success = true
	res.Message = fmt.Sprintf("Scraped %d reviews from %s channel", stored, show.Platform.DisplayName())
	o.logger.Info("show scraped", "show", show.ID, "reviews", stored, "thumbnail", res.ThumbnailUpdated)
	return res
}

// storeReviews appends review-like items and returns how many were new along
// with the distinct artists seen, in first-seen order.
func (o *ScrapeOrchestrator) storeReviews(ctx context.Context, show domain.Show, items []platform.Item) (int, []string, error) {
	var (
		stored  int
		artists []string
		seen    = map[string]bool{}
	)
	for _, item := range items {
		if !platform.LooksLikeReview(item) {
			continue
		}
		text := item.Title
		if text == "" {
			text = item.Description
		}
		artist, song := platform.ExtractArtist(o.deps.Patterns, text)

		content := item.Description
		if content == "" {
			content = item.Title
		}
		ts := item.PublishedAt
		if ts.IsZero() {
			ts = o.deps.Now()
		}

		_, inserted, err := o.deps.Reviews.AppendReview(ctx, domain.Review{
			ShowID:        show.ID,
			ArtistName:    artist,
			SongTitle:     song,
			ReviewContent: content,
			Rating:        domain.DefaultRating,
			Timestamp:     ts,
			URL:           item.URL,
			Likes:         item.LikeCount,
		})
		if err != nil {
			return stored, artists, err
		}
		if inserted {
			stored++
		}
		if !seen[artist] {
			seen[artist] = true
			artists = append(artists, artist)
		}
	}
	return stored, artists, nil
}

func (o *ScrapeOrchestrator) refreshThumbnail(ctx context.Context, show domain.Show) ScrapeResult {
	res := newResult(show)

	adapter, err := o.deps.Registry.Resolve(show.Platform)
	if err != nil {
		return failed(res, fmt.Sprintf("Unsupported platform: %s", show.Platform))
	}
	if !adapter.Configured() {
		return o.applyFallback(ctx, show, res)
	}

	latest, err := adapter.LatestItem(ctx, show.ChannelID)
	if err != nil {
		res.ThumbnailError = o.publicReason(show, "latest item", err)
		return failed(res, "Failed to fetch latest video: "+res.ThumbnailError)
	}
	if latest.ThumbnailURL == "" {
		res.ThumbnailError = "latest upload has no thumbnail"
		return failed(res, res.ThumbnailError)
	}

	update := domain.ShowUpdate{Thumbnail: &latest.ThumbnailURL}
	if latest.ID != "" {
		update.VideoID = &latest.ID
	}
	if err := o.deps.Shows.UpdateShow(ctx, show.ID, update); err != nil {
		res.ThumbnailError = o.publicReason(show, "save thumbnail", err)
		return failed(res, "Failed to save thumbnail: "+res.ThumbnailError)
	}

	res.Success = true
	res.ThumbnailUpdated = true
	res.Message = "Thumbnail updated"
	return res
}

func (o *ScrapeOrchestrator) applyFallback(ctx context.Context, show domain.Show, res ScrapeResult) ScrapeResult {
	videoID, thumb := FallbackThumbnail(show.ID)
	err := o.deps.Shows.UpdateShow(ctx, show.ID, domain.ShowUpdate{Thumbnail: &thumb, VideoID: &videoID})
	if err != nil {
		res.ThumbnailError = o.publicReason(show, "save fallback", err)
		return failed(res, "Failed to save fallback thumbnail: "+res.ThumbnailError)
	}
	res.Success = true
	res.ThumbnailUpdated = true
	res.UsingFallback = true
	res.Message = fallbackMessage
	return res
}

func (o *ScrapeOrchestrator) publish(ctx context.Context, event domain.ChangeEvent) {
	publishChange(ctx, o.deps.Changes, o.logger, event)
}

func newResult(show domain.Show) ScrapeResult {
	return ScrapeResult{ShowID: show.ID, Title: show.Title, Platform: show.Platform}
}

func failed(res ScrapeResult, msg string) ScrapeResult {
	res.Success = false
	res.Message = msg
	return res
}

func errOrEmpty(err error) error {
	if err == nil {
		return domain.NewUserError(domain.ErrNotFound, "empty channel id")
	}
	return err
}

// publicReason logs err and returns a short reason safe to expose in a
// ScrapeResult. Adapter errors may embed request details.
func (o *ScrapeOrchestrator) publicReason(show domain.Show, step string, err error) string {
	o.logger.Warn("scrape step failed", "show", show.ID, "step", step, "error", err)

	var ue *domain.UserError
	switch {
	case errors.As(err, &ue):
		return ue.Message
	case errors.Is(err, domain.ErrUpstream):
		return "platform request failed"
	case errors.Is(err, domain.ErrMissingCredentials):
		return domain.ErrMissingCredentials.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	default:
		return "internal error"
	}
}
