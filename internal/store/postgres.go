package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	id          UUID PRIMARY KEY,
	address_key TEXT NOT NULL,
	analysis    JSONB NOT NULL,
	cached_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS favorites (
	id                  UUID PRIMARY KEY,
	address             TEXT NOT NULL,
	rent_estimate       DOUBLE PRECISION NOT NULL,
	investment_badge    TEXT NOT NULL,
	quick_score         INTEGER NOT NULL,
	estimated_cash_flow DOUBLE PRECISION NOT NULL,
	saved_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analysis_cache_address_key ON analysis_cache(address_key);
CREATE INDEX IF NOT EXISTS idx_analysis_cache_expires_at ON analysis_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_favorites_address ON favorites(address);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetCachedAnalysis(ctx context.Context, addressKey string) (*model.EnrichedAnalysis, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT analysis FROM analysis_cache
		 WHERE address_key = $1 AND expires_at > now()
		 ORDER BY cached_at DESC LIMIT 1`,
		addressKey,
	)

	var analysisJSON []byte
	err := row.Scan(&analysisJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached analysis")
	}

	var analysis model.EnrichedAnalysis
	if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached analysis")
	}
	return &analysis, nil
}

func (s *PostgresStore) SetCachedAnalysis(ctx context.Context, addressKey string, analysis *model.EnrichedAnalysis, ttl time.Duration) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal analysis")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_cache (id, address_key, analysis, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), addressKey, analysisJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached analysis")
}

func (s *PostgresStore) PruneExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analysis_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune expired")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CacheStats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN expires_at <= now() THEN 1 ELSE 0 END), 0)
		 FROM analysis_cache`,
	).Scan(&stats.Entries, &stats.Expired)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: cache stats")
	}
	return &stats, nil
}

func (s *PostgresStore) SaveFavorite(ctx context.Context, fav model.Favorite) (*model.Favorite, error) {
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}
	if fav.SavedAt.IsZero() {
		fav.SavedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO favorites (id, address, rent_estimate, investment_badge, quick_score, estimated_cash_flow, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		fav.ID, fav.Address, fav.RentEstimate, string(fav.InvestmentBadge), fav.QuickScore, fav.EstimatedCashFlow, fav.SavedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: save favorite")
	}
	return &fav, nil
}

func (s *PostgresStore) ListFavorites(ctx context.Context, limit int) ([]model.Favorite, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, address, rent_estimate, investment_badge, quick_score, estimated_cash_flow, saved_at
		 FROM favorites ORDER BY saved_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list favorites")
	}
	defer rows.Close()

	var favs []model.Favorite
	for rows.Next() {
		var f model.Favorite
		var badge string
		if err := rows.Scan(&f.ID, &f.Address, &f.RentEstimate, &badge, &f.QuickScore, &f.EstimatedCashFlow, &f.SavedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan favorite")
		}
		f.InvestmentBadge = model.Badge(badge)
		favs = append(favs, f)
	}
	return favs, eris.Wrap(rows.Err(), "postgres: list favorites iterate")
}

func (s *PostgresStore) DeleteFavorite(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete favorite %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("favorite not found: %s", id)
	}
	return nil
}
