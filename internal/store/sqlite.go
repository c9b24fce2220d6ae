package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS logo_cache (
	domain     TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	quality    TEXT NOT NULL,
	source     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS category_cache (
	domain     TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetLogo(ctx context.Context, domain string) (*LogoEntry, error) {
	var entry LogoEntry
	var quality string
	err := s.db.QueryRowContext(ctx,
		`SELECT url, quality, source FROM logo_cache WHERE domain = ?`, domain,
	).Scan(&entry.URL, &quality, &entry.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get logo %s", domain)
	}
	entry.Quality = model.LogoQuality(quality)
	return &entry, nil
}

func (s *SQLiteStore) PutLogo(ctx context.Context, domain string, entry LogoEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logo_cache (domain, url, quality, source, updated_at)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(domain) DO UPDATE SET
		   url = excluded.url, quality = excluded.quality,
		   source = excluded.source, updated_at = excluded.updated_at`,
		domain, entry.URL, string(entry.Quality), entry.Source,
	)
	return eris.Wrapf(err, "sqlite: put logo %s", domain)
}

func (s *SQLiteStore) GetClassifications(ctx context.Context, domains []string) (map[string]string, error) {
	out := make(map[string]string, len(domains))
	if len(domains) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(domains)), ",")
	args := make([]any, len(domains))
	for i, d := range domains {
		args[i] = d
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, category FROM category_cache WHERE domain IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get classifications")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var domain, category string
		if err := rows.Scan(&domain, &category); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan classification")
		}
		out[domain] = category
	}
	return out, eris.Wrap(rows.Err(), "sqlite: classification rows")
}

func (s *SQLiteStore) PutClassifications(ctx context.Context, classes map[string]string) error {
	if len(classes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO category_cache (domain, category, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(domain) DO UPDATE SET
		   category = excluded.category, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare put classification")
	}
	defer stmt.Close() //nolint:errcheck

	for domain, category := range classes {
		if _, err := stmt.ExecContext(ctx, domain, category); err != nil {
			return eris.Wrapf(err, "sqlite: put classification %s", domain)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit classifications")
}
