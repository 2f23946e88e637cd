package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
)

type showKey struct {
	platform domain.Platform
	url      string
}

type reviewKey struct {
	showID int64
	artist string
	song   string
	url    string
}

// MemoryRepository keeps every table in process memory. Each method holds the
// lock for its whole body, so single-row operations are atomic.
type MemoryRepository struct {
	mu sync.RWMutex

	nextSubmissionID int64
	nextShowID       int64
	nextReviewID     int64

	submissions  map[int64]domain.Submission
	submissionBy map[string]int64
	shows        map[int64]domain.Show
	showBy       map[showKey]int64
	reviews      []domain.Review
	reviewSeen   map[reviewKey]struct{}
}

var _ ports.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		submissions:  map[int64]domain.Submission{},
		submissionBy: map[string]int64{},
		shows:        map[int64]domain.Show{},
		showBy:       map[showKey]int64{},
		reviewSeen:   map[reviewKey]struct{}{},
	}
}

// InsertSubmission stores sub and assigns its id.
func (m *MemoryRepository) InsertSubmission(_ context.Context, sub domain.Submission) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.URLHash == "" {
		sub.URLHash = domain.HashURL(sub.URL)
	}
	if _, exists := m.submissionBy[sub.URLHash]; exists {
		return domain.Submission{}, domain.ErrDuplicate
	}

	m.nextSubmissionID++
	sub.ID = m.nextSubmissionID
	m.submissions[sub.ID] = sub
	m.submissionBy[sub.URLHash] = sub.ID
	return sub, nil
}

// FindSubmissionByURLHash looks a submission up by normalized URL hash.
func (m *MemoryRepository) FindSubmissionByURLHash(_ context.Context, hash string) (domain.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.submissionBy[hash]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return m.submissions[id], nil
}

// FindSubmissionByID looks a submission up by id.
func (m *MemoryRepository) FindSubmissionByID(_ context.Context, id int64) (domain.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return sub, nil
}

// UpdateSubmissionStatus changes the moderation status of one submission.
func (m *MemoryRepository) UpdateSubmissionStatus(_ context.Context, id int64, status domain.SubmissionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.submissions[id]
	if !ok {
		return domain.ErrNotFound
	}
	sub.Status = status
	m.submissions[id] = sub
	return nil
}

// DeleteSubmission removes the row; deleting a missing row is not an error.
func (m *MemoryRepository) DeleteSubmission(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.submissions[id]; ok {
		delete(m.submissionBy, sub.URLHash)
		delete(m.submissions, id)
	}
	return nil
}

// ListSubmissions returns submissions ordered by id.
func (m *MemoryRepository) ListSubmissions(_ context.Context) ([]domain.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Submission, 0, len(m.submissions))
	for _, sub := range m.submissions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateShowIfAbsent inserts show unless one exists for (platform, url).
func (m *MemoryRepository) CreateShowIfAbsent(_ context.Context, show domain.Show) (domain.Show, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := showKey{platform: show.Platform, url: show.URL}
	if id, ok := m.showBy[key]; ok {
		return cloneShow(m.shows[id]), false, nil
	}

	m.nextShowID++
	show.ID = m.nextShowID
	show = cloneShow(show)
	m.shows[show.ID] = show
	m.showBy[key] = show.ID
	return cloneShow(show), true, nil
}

// FindShowByID looks a show up by id.
func (m *MemoryRepository) FindShowByID(_ context.Context, id int64) (domain.Show, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	show, ok := m.shows[id]
	if !ok {
		return domain.Show{}, domain.ErrNotFound
	}
	return cloneShow(show), nil
}

// ListShows returns shows ordered by id.
func (m *MemoryRepository) ListShows(_ context.Context) ([]domain.Show, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Show, 0, len(m.shows))
	for _, show := range m.shows {
		out = append(out, cloneShow(show))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateShow applies the scraped fields of update to one show.
func (m *MemoryRepository) UpdateShow(_ context.Context, id int64, update domain.ShowUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	show, ok := m.shows[id]
	if !ok {
		return domain.ErrNotFound
	}
	update.Apply(&show)
	m.shows[id] = show
	return nil
}

// AppendReview stores review unless an identical one exists for the show.
func (m *MemoryRepository) AppendReview(_ context.Context, review domain.Review) (domain.Review, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := reviewKey{showID: review.ShowID, artist: review.ArtistName, song: review.SongTitle, url: review.URL}
	if _, dup := m.reviewSeen[key]; dup {
		return review, false, nil
	}

	m.nextReviewID++
	review.ID = m.nextReviewID
	m.reviews = append(m.reviews, review)
	m.reviewSeen[key] = struct{}{}
	return review, true, nil
}

// ListReviews returns all reviews in insertion order.
func (m *MemoryRepository) ListReviews(_ context.Context) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]domain.Review(nil), m.reviews...), nil
}

// ListReviewsByArtist filters reviews by case-insensitive artist substring.
func (m *MemoryRepository) ListReviewsByArtist(_ context.Context, artist string) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(artist))
	var out []domain.Review
	for _, r := range m.reviews {
		if strings.Contains(strings.ToLower(r.ArtistName), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func cloneShow(s domain.Show) domain.Show {
	if s.ArtistsReviewed != nil {
		s.ArtistsReviewed = append([]string(nil), s.ArtistsReviewed...)
	}
	return s
}
