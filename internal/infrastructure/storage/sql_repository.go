package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
)

var (
	submissionColumns = []string{"id", "url", "url_hash", "platform", "submitted_at", "status", "meets_criteria"}
	showColumns       = []string{
		"id", "title", "description", "platform", "url", "channel_id", "thumbnail", "video_id",
		"rating", "next_show", "is_live", "last_updated", "review_content", "artists_reviewed",
		"view_count", "engagement_rate", "host_id",
	}
	reviewColumns = []string{
		"id", "show_id", "artist_name", "song_title", "album_title", "review_content", "rating",
		"reviewed_at", "url", "host_response", "likes", "dislikes", "is_verified",
	}
)

// SQLRepository persists submissions, shows and reviews through database/sql.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

var _ ports.Repository = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB handle with its dialect.
func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
	}
}

// Open connects to driver/dsn and verifies connectivity.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s DSN is required", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == SQLite.Name {
		// sqlite serializes writers; one connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Close releases the underlying handle.
func (r *SQLRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.db.QueryRowContext(ctx, query, args...), nil
}

func (r *SQLRepository) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.db.ExecContext(ctx, query, args...)
}

// InsertSubmission stores sub; an existing URL hash yields domain.ErrDuplicate.
func (r *SQLRepository) InsertSubmission(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	if sub.URLHash == "" {
		sub.URLHash = domain.HashURL(sub.URL)
	}

	row, err := r.queryRow(ctx, r.sb.Insert("submissions").
		Columns("url", "url_hash", "platform", "submitted_at", "status", "meets_criteria").
		Values(sub.URL, sub.URLHash, string(sub.Platform), sub.SubmittedAt.UTC(), string(sub.Status), sub.MeetsCriteria).
		Suffix("ON CONFLICT (url_hash) DO NOTHING RETURNING id"))
	if err != nil {
		return domain.Submission{}, err
	}

	if err := row.Scan(&sub.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Submission{}, domain.ErrDuplicate
		}
		return domain.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// FindSubmissionByURLHash looks a submission up by normalized URL hash.
func (r *SQLRepository) FindSubmissionByURLHash(ctx context.Context, hash string) (domain.Submission, error) {
	return r.findSubmission(ctx, sq.Eq{"url_hash": hash})
}

// FindSubmissionByID looks a submission up by id.
func (r *SQLRepository) FindSubmissionByID(ctx context.Context, id int64) (domain.Submission, error) {
	return r.findSubmission(ctx, sq.Eq{"id": id})
}

func (r *SQLRepository) findSubmission(ctx context.Context, where sq.Eq) (domain.Submission, error) {
	row, err := r.queryRow(ctx, r.sb.Select(submissionColumns...).From("submissions").Where(where).Limit(1))
	if err != nil {
		return domain.Submission{}, err
	}
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Submission{}, domain.ErrNotFound
		}
		return domain.Submission{}, fmt.Errorf("find submission: %w", err)
	}
	return sub, nil
}

// UpdateSubmissionStatus changes the moderation status of one submission.
func (r *SQLRepository) UpdateSubmissionStatus(ctx context.Context, id int64, status domain.SubmissionStatus) error {
	res, err := r.exec(ctx, r.sb.Update("submissions").Set("status", string(status)).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return requireRow(res)
}

// DeleteSubmission removes the row; deleting a missing row is not an error.
func (r *SQLRepository) DeleteSubmission(ctx context.Context, id int64) error {
	if _, err := r.exec(ctx, r.sb.Delete("submissions").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

// ListSubmissions returns submissions ordered by id.
func (r *SQLRepository) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	query, args, err := r.sb.Select(submissionColumns...).From("submissions").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// CreateShowIfAbsent inserts show unless one exists for (platform, url).
func (r *SQLRepository) CreateShowIfAbsent(ctx context.Context, show domain.Show) (domain.Show, bool, error) {
	artists, err := encodeArtists(show.ArtistsReviewed)
	if err != nil {
		return domain.Show{}, false, err
	}

	row, err := r.queryRow(ctx, r.sb.Insert("shows").
		Columns(showColumns[1:]...).
		Values(show.Title, show.Description, string(show.Platform), show.URL, show.ChannelID, show.Thumbnail,
			show.VideoID, show.Rating, show.NextShow, show.IsLive, show.LastUpdated.UTC(), show.ReviewContent,
			artists, show.ViewCount, show.EngagementRate, show.HostID).
		Suffix("ON CONFLICT (platform, url) DO NOTHING RETURNING id"))
	if err != nil {
		return domain.Show{}, false, err
	}

	if err := row.Scan(&show.ID); err == nil {
		return show, true, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Show{}, false, fmt.Errorf("insert show: %w", err)
	}

	existing, err := r.findShow(ctx, sq.Eq{"platform": string(show.Platform), "url": show.URL})
	if err != nil {
		return domain.Show{}, false, err
	}
	return existing, false, nil
}

// FindShowByID looks a show up by id.
func (r *SQLRepository) FindShowByID(ctx context.Context, id int64) (domain.Show, error) {
	return r.findShow(ctx, sq.Eq{"id": id})
}

func (r *SQLRepository) findShow(ctx context.Context, where sq.Eq) (domain.Show, error) {
	row, err := r.queryRow(ctx, r.sb.Select(showColumns...).From("shows").Where(where).Limit(1))
	if err != nil {
		return domain.Show{}, err
	}
	show, err := scanShow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Show{}, domain.ErrNotFound
		}
		return domain.Show{}, fmt.Errorf("find show: %w", err)
	}
	return show, nil
}

// ListShows returns shows ordered by id.
func (r *SQLRepository) ListShows(ctx context.Context) ([]domain.Show, error) {
	query, args, err := r.sb.Select(showColumns...).From("shows").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var out []domain.Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		out = append(out, show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// UpdateShow applies the scraped fields of update to one show.
func (r *SQLRepository) UpdateShow(ctx context.Context, id int64, update domain.ShowUpdate) error {
	if update.Empty() {
		return nil
	}

	b := r.sb.Update("shows").Where(sq.Eq{"id": id})
	if update.ChannelID != nil {
		b = b.Set("channel_id", *update.ChannelID)
	}
	if update.Thumbnail != nil {
		b = b.Set("thumbnail", *update.Thumbnail)
	}
	if update.VideoID != nil {
		b = b.Set("video_id", *update.VideoID)
	}
	if update.IsLive != nil {
		b = b.Set("is_live", *update.IsLive)
	}
	if update.ReviewContent != nil {
		b = b.Set("review_content", *update.ReviewContent)
	}
	if update.ArtistsReviewed != nil {
		artists, err := encodeArtists(update.ArtistsReviewed)
		if err != nil {
			return err
		}
		b = b.Set("artists_reviewed", artists)
	}
	if update.LastUpdated != nil {
		b = b.Set("last_updated", update.LastUpdated.UTC())
	}

	res, err := r.exec(ctx, b)
	if err != nil {
		return fmt.Errorf("update show: %w", err)
	}
	return requireRow(res)
}

// AppendReview stores review unless an identical one exists for the show.
func (r *SQLRepository) AppendReview(ctx context.Context, review domain.Review) (domain.Review, bool, error) {
	row, err := r.queryRow(ctx, r.sb.Insert("reviews").
		Columns(reviewColumns[1:]...).
		Values(review.ShowID, review.ArtistName, review.SongTitle, review.AlbumTitle, review.ReviewContent,
			review.Rating, review.Timestamp.UTC(), review.URL, review.HostResponse, review.Likes,
			review.Dislikes, review.IsVerified).
		Suffix("ON CONFLICT (show_id, artist_name, song_title, url) DO NOTHING RETURNING id"))
	if err != nil {
		return domain.Review{}, false, err
	}

	if err := row.Scan(&review.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return review, false, nil
		}
		return domain.Review{}, false, fmt.Errorf("insert review: %w", err)
	}
	return review, true, nil
}

// ListReviews returns all reviews in insertion order.
func (r *SQLRepository) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return r.listReviews(ctx, nil)
}

// ListReviewsByArtist filters reviews by case-insensitive artist substring.
func (r *SQLRepository) ListReviewsByArtist(ctx context.Context, artist string) ([]domain.Review, error) {
	needle := "%" + escapeLike(strings.ToLower(strings.TrimSpace(artist))) + "%"
	return r.listReviews(ctx, sq.Expr(`LOWER(artist_name) LIKE ? ESCAPE '\'`, needle))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *SQLRepository) listReviews(ctx context.Context, where sq.Sqlizer) ([]domain.Review, error) {
	b := r.sb.Select(reviewColumns...).From("reviews").OrderBy("id")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.ShowID, &rev.ArtistName, &rev.SongTitle, &rev.AlbumTitle,
			&rev.ReviewContent, &rev.Rating, &rev.Timestamp, &rev.URL, &rev.HostResponse, &rev.Likes,
			&rev.Dislikes, &rev.IsVerified); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func scanSubmission(s rowScanner) (domain.Submission, error) {
	var (
		sub      domain.Submission
		platform string
		status   string
	)
	if err := s.Scan(&sub.ID, &sub.URL, &sub.URLHash, &platform, &sub.SubmittedAt, &status, &sub.MeetsCriteria); err != nil {
		return domain.Submission{}, err
	}
	sub.Platform = domain.Platform(platform)
	sub.Status = domain.SubmissionStatus(status)
	return sub, nil
}

func scanShow(s rowScanner) (domain.Show, error) {
	var (
		show        domain.Show
		platform    string
		artistsJSON string
		lastUpdated time.Time
	)
	if err := s.Scan(&show.ID, &show.Title, &show.Description, &platform, &show.URL, &show.ChannelID,
		&show.Thumbnail, &show.VideoID, &show.Rating, &show.NextShow, &show.IsLive, &lastUpdated,
		&show.ReviewContent, &artistsJSON, &show.ViewCount, &show.EngagementRate, &show.HostID); err != nil {
		return domain.Show{}, err
	}
	show.Platform = domain.Platform(platform)
	show.LastUpdated = lastUpdated
	if err := json.Unmarshal([]byte(artistsJSON), &show.ArtistsReviewed); err != nil {
		return domain.Show{}, fmt.Errorf("decode artists_reviewed: %w", err)
	}
	return show, nil
}

func encodeArtists(artists []string) (string, error) {
	if artists == nil {
		artists = []string{}
	}
	raw, err := json.Marshal(artists)
	if err != nil {
		return "", fmt.Errorf("encode artists_reviewed: %w", err)
	}
	return string(raw), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
