package ports

import (
	"context"
	"time"

	"BangerBoard/internal/domain"
)

// SubmissionRepository persists submissions. Implementations return
// domain.ErrNotFound for unknown rows and domain.ErrDuplicate when the URL hash exists.
type SubmissionRepository interface {
	InsertSubmission(ctx context.Context, sub domain.Submission) (domain.Submission, error)
	FindSubmissionByURLHash(ctx context.Context, hash string) (domain.Submission, error)
	FindSubmissionByID(ctx context.Context, id int64) (domain.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id int64, status domain.SubmissionStatus) error
	DeleteSubmission(ctx context.Context, id int64) error
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
}

// ShowRepository persists shows, at most one per (platform, url).
type ShowRepository interface {
	// CreateShowIfAbsent inserts show unless one exists for its platform and URL;
	// it returns the stored row and whether it was created by this call.
	CreateShowIfAbsent(ctx context.Context, show domain.Show) (domain.Show, bool, error)
	FindShowByID(ctx context.Context, id int64) (domain.Show, error)
	ListShows(ctx context.Context) ([]domain.Show, error)
	UpdateShow(ctx context.Context, id int64, update domain.ShowUpdate) error
}

// ReviewRepository stores scraped reviews. AppendReview never mutates an
// existing row; it reports false when an identical review is already stored.
type ReviewRepository interface {
	AppendReview(ctx context.Context, review domain.Review) (domain.Review, bool, error)
	ListReviews(ctx context.Context) ([]domain.Review, error)
	ListReviewsByArtist(ctx context.Context, artist string) ([]domain.Review, error)
}

// Repository bundles all storage ports behind one handle.
type Repository interface {
	SubmissionRepository
	ShowRepository
	ReviewRepository
}

// TokenStore keeps a single action token per submission.
type TokenStore interface {
	Put(ctx context.Context, submissionID, token string, expiresAt time.Time) error
	Get(ctx context.Context, submissionID string) (token string, expiresAt time.Time, ok bool, err error)
}

// Message is a composed moderation request ready for a transport.
type Message struct {
	Subject string
	Body    string
	// Links holds labelled action URLs, rendered as buttons where the transport supports them.
	Links []Link
}

// Link is a labelled URL inside a Message.
type Link struct {
	Label string
	URL   string
}

// Messenger delivers moderation requests to a human reviewer (chat, email, ...).
type Messenger interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// ChangePublisher signals caches above persistence that data changed.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event domain.ChangeEvent) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// PageMetadata is what a public page reveals about its content.
type PageMetadata struct {
	Title       string
	Description string
	Image       string
	ViewCount   int64
}

// PageInspector reads public page metadata without platform credentials.
type PageInspector interface {
	Inspect(ctx context.Context, pageURL string) (PageMetadata, error)
}
