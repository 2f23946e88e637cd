package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/infrastructure/storage"
	"BangerBoard/internal/logging"
	"BangerBoard/internal/token"
	"BangerBoard/internal/usecase"
)

type qualifyAll struct{}

func (qualifyAll) Evaluate(context.Context, string, domain.Platform) usecase.ContentCheck {
	return usecase.ContentCheck{MeetsCriteria: true}
}

type fakeScraper struct {
	batch usecase.BatchResult
	err   error
}

func (f fakeScraper) ScrapeAll(context.Context) (usecase.BatchResult, error) { return f.batch, f.err }

func (f fakeScraper) RefreshThumbnails(context.Context) (usecase.BatchResult, error) {
	return f.batch, f.err
}

func (f fakeScraper) ScrapeShow(_ context.Context, id int64) (usecase.ScrapeResult, error) {
	if id == 404 {
		return usecase.ScrapeResult{}, domain.NewUserError(domain.ErrNotFound, "Show 404 not found")
	}
	return usecase.ScrapeResult{ShowID: id, Success: true, Message: "ok"}, f.err
}

type fixture struct {
	repo   *storage.MemoryRepository
	tokens *token.Service
	server *Server
}

func newFixture(t *testing.T, scraper ScrapeService) *fixture {
	t.Helper()
	repo := storage.NewMemoryRepository()
	tokens := token.NewService(token.NewMemoryStore(), "http://bb.test")
	workflow := usecase.NewSubmissionWorkflow(usecase.SubmissionDeps{
		Submissions: repo,
		Shows:       repo,
		Evaluator:   qualifyAll{},
		Tokens:      tokens,
		Logger:      logging.Discard(),
	})
	if scraper == nil {
		scraper = fakeScraper{}
	}
	return &fixture{repo: repo, tokens: tokens, server: NewServer(workflow, scraper, repo, logging.Discard())}
}

func (f *fixture) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := f.server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, body
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSubmitEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	status, body := f.do(t, postJSON("/api/submissions", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d %v", status, body)
	}
	if body["message"] != "Your submission has been received and a profile has been created." {
		t.Fatalf("unexpected message %v", body["message"])
	}

	status, body = f.do(t, postJSON("/api/submissions", `{"url":"https://example.com"}`))
	if status != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("expected 400, got %d %v", status, body)
	}
	if body["message"] != "Please enter a valid YouTube, Twitch, Instagram, or TikTok URL" {
		t.Fatalf("unexpected message %v", body["message"])
	}

	form := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader("url="+"https%3A%2F%2Fyoutu.be%2FdQw4w9WgXcQ"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, body = f.do(t, form)
	if status != http.StatusOK || body["message"] != "This URL has already been submitted and is being processed." {
		t.Fatalf("unexpected duplicate response %d %v", status, body)
	}
}

func TestSubmitEndpointMissingURL(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	status, body := f.do(t, httptest.NewRequest(http.MethodPost, "/api/submissions", nil))
	if status != http.StatusBadRequest || body["message"] != "URL is required" {
		t.Fatalf("empty body: got %d %v", status, body)
	}

	status, body = f.do(t, postJSON("/api/submissions", `{}`))
	if status != http.StatusBadRequest || body["message"] != "URL is required" {
		t.Fatalf("empty object: got %d %v", status, body)
	}

	status, body = f.do(t, postJSON("/api/submissions", `{"url":`))
	if status != http.StatusBadRequest || body["message"] != "Invalid request body" {
		t.Fatalf("malformed json: got %d %v", status, body)
	}
}

func TestSubmissionActionEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	if _, err := f.repo.InsertSubmission(context.Background(), domain.Submission{
		URL: "https://twitch.tv/host", Platform: domain.PlatformTwitch, Status: domain.StatusHoldForReview, SubmittedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	issued, err := f.tokens.Issue(context.Background(), "1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		query  string
		status int
		key    string
		want   string
	}{
		{"missing", "?action=approve&id=1", http.StatusBadRequest, "error", "Missing required parameters"},
		{"bad token", "?action=approve&id=1&token=nope", http.StatusUnauthorized, "error", "Invalid or expired token"},
		{"bad action", "?action=promote&id=1&token=" + issued.Token, http.StatusBadRequest, "error", "Invalid action"},
		{"approve", "?action=approve&id=1&token=" + issued.Token, http.StatusOK, "message", "Submission approved successfully"},
	}
	for _, tc := range cases {
		status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/submission-action"+tc.query, nil))
		if status != tc.status || body[tc.key] != tc.want {
			t.Fatalf("%s: got %d %v", tc.name, status, body)
		}
	}

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/shows", nil))
	shows, _ := body["shows"].([]any)
	if status != http.StatusOK || len(shows) != 1 {
		t.Fatalf("approved submission should create a show: %d %v", status, body)
	}
	show := shows[0].(map[string]any)
	if show["title"] != "New Twitch Show" || show["rating"] != float64(domain.DefaultRating) {
		t.Fatalf("unexpected show %v", show)
	}
}

func TestScrapeEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fakeScraper{batch: usecase.BatchResult{Success: true, Message: "Scraped 0 shows successfully"}})

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/cron/scrape-shows", nil))
	if status != http.StatusOK || body["message"] != "Scraped 0 shows successfully" {
		t.Fatalf("unexpected cron response %d %v", status, body)
	}

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/scrape-show/abc", nil))
	if status != http.StatusBadRequest || body["error"] != "Invalid show ID" {
		t.Fatalf("expected 400, got %d %v", status, body)
	}

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/scrape-show/404", nil))
	if status != http.StatusNotFound || body["error"] != "Show 404 not found" {
		t.Fatalf("expected 404, got %d %v", status, body)
	}

	status, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/scrape-show/7", nil))
	if status != http.StatusOK || body["showId"] != float64(7) {
		t.Fatalf("unexpected scrape response %d %v", status, body)
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fakeScraper{err: errors.New("pq: password authentication failed")})

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/cron/refresh-thumbnails", nil))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if msg := fmt.Sprint(body["error"]); msg != "Failed to refresh thumbnails" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestReviewsEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	for _, artist := range []string{"Kendrick Lamar", "SZA"} {
		if _, _, err := f.repo.AppendReview(context.Background(), domain.Review{ShowID: 1, ArtistName: artist, URL: "https://x/" + artist}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	_, all := f.do(t, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))
	if got := len(all["reviews"].([]any)); got != 2 {
		t.Fatalf("expected 2 reviews, got %d", got)
	}

	_, filtered := f.do(t, httptest.NewRequest(http.MethodGet, "/api/reviews?artist=kendrick", nil))
	reviews := filtered["reviews"].([]any)
	if len(reviews) != 1 || reviews[0].(map[string]any)["artistName"] != "Kendrick Lamar" {
		t.Fatalf("unexpected filtered reviews %v", reviews)
	}
}
