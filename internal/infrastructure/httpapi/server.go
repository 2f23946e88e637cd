package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/usecase"
)

// SubmissionService is the submission and moderation workflow.
type SubmissionService interface {
	Submit(ctx context.Context, rawURL string) (usecase.Outcome, error)
	ResolveAction(ctx context.Context, id, action, token string) (usecase.Outcome, error)
}

// ScrapeService refreshes shows from their platforms.
type ScrapeService interface {
	ScrapeAll(ctx context.Context) (usecase.BatchResult, error)
	ScrapeShow(ctx context.Context, id int64) (usecase.ScrapeResult, error)
	RefreshThumbnails(ctx context.Context) (usecase.BatchResult, error)
}

// ReadModel serves the listing endpoints.
type ReadModel interface {
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	ListShows(ctx context.Context) ([]domain.Show, error)
	ListReviews(ctx context.Context) ([]domain.Review, error)
	ListReviewsByArtist(ctx context.Context, artist string) ([]domain.Review, error)
}

// Server exposes the use cases over HTTP.
type Server struct {
	app         *fiber.App
	submissions SubmissionService
	scraper     ScrapeService
	reads       ReadModel
	logger      *slog.Logger
}

// NewServer registers every route.
func NewServer(submissions SubmissionService, scraper ScrapeService, reads ReadModel, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		submissions: submissions,
		scraper:     scraper,
		reads:       reads,
		logger:      logger.With("component", "http"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "BangerBoard",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		// Scrapes fan out to every show; give them room.
		WriteTimeout: 5 * time.Minute,
	})
	s.app.Use(recover.New())
	s.app.Use(s.accessLog)

	api := s.app.Group("/api")
	api.Post("/submissions", s.submit)
	api.Get("/submissions", s.listSubmissions)
	api.Get("/submission-action", s.submissionAction)
	api.Get("/cron/scrape-shows", s.scrapeAll)
	api.Get("/cron/refresh-thumbnails", s.refreshThumbnails)
	api.Get("/scrape-show/:id", s.scrapeShow)
	api.Get("/shows", s.listShows)
	api.Get("/reviews", s.listReviews)

	return s
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

type submitRequest struct {
	URL string `json:"url" form:"url"`
}

func (s *Server) submit(c *fiber.Ctx) error {
	// An empty body carries no url; Submit reports which field is missing.
	var req submitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
	}

	out, err := s.submissions.Submit(c.UserContext(), req.URL)
	if err != nil {
		return s.fail(c, err, "message", "Failed to submit resource")
	}
	return c.JSON(fiber.Map{"success": out.Success, "message": out.Message})
}

func (s *Server) submissionAction(c *fiber.Ctx) error {
	out, err := s.submissions.ResolveAction(c.UserContext(),
		strings.TrimSpace(c.Query("id")),
		strings.TrimSpace(c.Query("action")),
		strings.TrimSpace(c.Query("token")),
	)
	if err != nil {
		return s.fail(c, err, "error", "Failed to process action")
	}
	return c.JSON(fiber.Map{"success": out.Success, "message": out.Message})
}

func (s *Server) scrapeAll(c *fiber.Ctx) error {
	batch, err := s.scraper.ScrapeAll(c.UserContext())
	if err != nil {
		return s.fail(c, err, "error", "Failed to scrape shows")
	}
	return c.JSON(batch)
}

func (s *Server) refreshThumbnails(c *fiber.Ctx) error {
	batch, err := s.scraper.RefreshThumbnails(c.UserContext())
	if err != nil {
		return s.fail(c, err, "error", "Failed to refresh thumbnails")
	}
	return c.JSON(batch)
}

func (s *Server) scrapeShow(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid show ID"})
	}

	res, err := s.scraper.ScrapeShow(c.UserContext(), id)
	if err != nil {
		return s.fail(c, err, "error", "Failed to scrape show "+strconv.FormatInt(id, 10))
	}
	return c.JSON(res)
}

func (s *Server) listSubmissions(c *fiber.Ctx) error {
	subs, err := s.reads.ListSubmissions(c.UserContext())
	if err != nil {
		return s.fail(c, err, "error", "Failed to fetch submissions")
	}
	out := make([]submissionJSON, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubmissionJSON(sub))
	}
	return c.JSON(fiber.Map{"success": true, "submissions": out})
}

func (s *Server) listShows(c *fiber.Ctx) error {
	shows, err := s.reads.ListShows(c.UserContext())
	if err != nil {
		return s.fail(c, err, "error", "Failed to fetch shows")
	}
	out := make([]showJSON, 0, len(shows))
	for _, show := range shows {
		out = append(out, toShowJSON(show))
	}
	return c.JSON(fiber.Map{"success": true, "shows": out})
}

func (s *Server) listReviews(c *fiber.Ctx) error {
	var (
		reviews []domain.Review
		err     error
	)
	if artist := strings.TrimSpace(c.Query("artist")); artist != "" {
		reviews, err = s.reads.ListReviewsByArtist(c.UserContext(), artist)
	} else {
		reviews, err = s.reads.ListReviews(c.UserContext())
	}
	if err != nil {
		return s.fail(c, err, "error", "Failed to fetch reviews")
	}
	out := make([]reviewJSON, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewJSON(r))
	}
	return c.JSON(fiber.Map{"success": true, "reviews": out})
}

// fail maps domain errors to status codes. Only user-facing messages reach the
// client; anything else is logged and replaced by fallback.
func (s *Server) fail(c *fiber.Ctx, err error, key, fallback string) error {
	status := fiber.StatusInternalServerError
	msg := fallback
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = fiber.StatusBadRequest
		msg = domain.UserMessage(err, "Invalid request")
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
		msg = "Invalid or expired token"
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
		msg = domain.UserMessage(err, "Not found")
	default:
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"success": false, key: msg})
}
