package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS logo_cache (
	domain     TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	quality    TEXT NOT NULL,
	source     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS category_cache (
	domain     TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetLogo(ctx context.Context, domain string) (*LogoEntry, error) {
	var entry LogoEntry
	var quality string
	err := s.pool.QueryRow(ctx,
		`SELECT url, quality, source FROM logo_cache WHERE domain = $1`, domain,
	).Scan(&entry.URL, &quality, &entry.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get logo %s", domain)
	}
	entry.Quality = model.LogoQuality(quality)
	return &entry, nil
}

func (s *PostgresStore) PutLogo(ctx context.Context, domain string, entry LogoEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO logo_cache (domain, url, quality, source, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (domain) DO UPDATE SET
		   url = excluded.url, quality = excluded.quality,
		   source = excluded.source, updated_at = excluded.updated_at`,
		domain, entry.URL, string(entry.Quality), entry.Source,
	)
	return eris.Wrapf(err, "postgres: put logo %s", domain)
}

func (s *PostgresStore) GetClassifications(ctx context.Context, domains []string) (map[string]string, error) {
	out := make(map[string]string, len(domains))
	if len(domains) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT domain, category FROM category_cache WHERE domain = ANY($1)`, domains,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get classifications")
	}
	defer rows.Close()

	for rows.Next() {
		var domain, category string
		if err := rows.Scan(&domain, &category); err != nil {
			return nil, eris.Wrap(err, "postgres: scan classification")
		}
		out[domain] = category
	}
	return out, eris.Wrap(rows.Err(), "postgres: classification rows")
}

func (s *PostgresStore) PutClassifications(ctx context.Context, classes map[string]string) error {
	if len(classes) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for domain, category := range classes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO category_cache (domain, category, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (domain) DO UPDATE SET
			   category = excluded.category, updated_at = excluded.updated_at`,
			domain, category,
		); err != nil {
			return eris.Wrapf(err, "postgres: put classification %s", domain)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit classifications")
}
