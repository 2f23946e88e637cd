package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect captures the few SQL differences between supported engines.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	// IDColumn is the auto-increment primary key definition.
	IDColumn  string
	Timestamp string
}

var (
	// Postgres is used in production.
	Postgres = Dialect{Name: "postgres", Placeholder: sq.Dollar, IDColumn: "BIGSERIAL PRIMARY KEY", Timestamp: "TIMESTAMPTZ"}
	// PGX is Postgres through the pgx stdlib driver.
	PGX = Dialect{Name: "pgx", Placeholder: sq.Dollar, IDColumn: "BIGSERIAL PRIMARY KEY", Timestamp: "TIMESTAMPTZ"}
	// SQLite backs local runs and integration tests.
	SQLite = Dialect{Name: "sqlite3", Placeholder: sq.Question, IDColumn: "INTEGER PRIMARY KEY AUTOINCREMENT", Timestamp: "TIMESTAMP"}
)

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.Name:
		return Postgres, nil
	case PGX.Name:
		return PGX, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func (d Dialect) schema() []string {
	r := strings.NewReplacer("{{ID}}", d.IDColumn, "{{TS}}", d.Timestamp)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id {{ID}},
			url TEXT NOT NULL,
			url_hash TEXT NOT NULL UNIQUE,
			platform TEXT NOT NULL,
			submitted_at {{TS}} NOT NULL,
			status TEXT NOT NULL,
			meets_criteria BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS shows (
			id {{ID}},
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL,
			url TEXT NOT NULL,
			channel_id TEXT NOT NULL DEFAULT '',
			thumbnail TEXT NOT NULL DEFAULT '',
			video_id TEXT NOT NULL DEFAULT '',
			rating INTEGER NOT NULL DEFAULT 3,
			next_show TEXT NOT NULL DEFAULT 'TBD',
			is_live BOOLEAN NOT NULL DEFAULT FALSE,
			last_updated {{TS}} NOT NULL,
			review_content TEXT NOT NULL DEFAULT '',
			artists_reviewed TEXT NOT NULL DEFAULT '[]',
			view_count BIGINT NOT NULL DEFAULT 0,
			engagement_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			host_id TEXT NOT NULL DEFAULT '',
			UNIQUE (platform, url)
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id {{ID}},
			show_id BIGINT NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
			artist_name TEXT NOT NULL,
			song_title TEXT NOT NULL DEFAULT '',
			album_title TEXT NOT NULL DEFAULT '',
			review_content TEXT NOT NULL DEFAULT '',
			rating INTEGER NOT NULL DEFAULT 0,
			reviewed_at {{TS}} NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			host_response TEXT NOT NULL DEFAULT '',
			likes INTEGER NOT NULL DEFAULT 0,
			dislikes INTEGER NOT NULL DEFAULT 0,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (show_id, artist_name, song_title, url)
		)`,
		`CREATE INDEX IF NOT EXISTS reviews_artist_idx ON reviews (artist_name)`,
	}
	for i := range stmts {
		stmts[i] = r.Replace(stmts[i])
	}
	return stmts
}

// Migrate creates the tables if they do not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", r.dialect.Name, err)
		}
	}
	return nil
}
