package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rentfolio/analyzer-cli/internal/model"
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

// sqliteTimeLayout matches datetime('now') output so stored timestamps
// compare correctly as text.
const sqliteTimeLayout = "2006-01-02 15:04:05"

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	id          TEXT PRIMARY KEY,
	address_key TEXT NOT NULL,
	analysis    TEXT NOT NULL,
	cached_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS favorites (
	id                  TEXT PRIMARY KEY,
	address             TEXT NOT NULL,
	rent_estimate       REAL NOT NULL,
	investment_badge    TEXT NOT NULL,
	quick_score         INTEGER NOT NULL,
	estimated_cash_flow REAL NOT NULL,
	saved_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analysis_cache_address_key ON analysis_cache(address_key);
CREATE INDEX IF NOT EXISTS idx_analysis_cache_expires_at ON analysis_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_favorites_address ON favorites(address);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedAnalysis(ctx context.Context, addressKey string) (*model.EnrichedAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT analysis FROM analysis_cache
		 WHERE address_key = ? AND expires_at > datetime('now')
		 ORDER BY cached_at DESC LIMIT 1`,
		addressKey,
	)

	var analysisJSON string
	err := row.Scan(&analysisJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached analysis")
	}

	var analysis model.EnrichedAnalysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached analysis")
	}
	return &analysis, nil
}

func (s *SQLiteStore) SetCachedAnalysis(ctx context.Context, addressKey string, analysis *model.EnrichedAnalysis, ttl time.Duration) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_cache (id, address_key, analysis, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), addressKey, string(analysisJSON),
		now.Format(sqliteTimeLayout), now.Add(ttl).Format(sqliteTimeLayout),
	)
	return eris.Wrap(err, "sqlite: set cached analysis")
}

func (s *SQLiteStore) PruneExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune expired")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) CacheStats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN expires_at <= datetime('now') THEN 1 ELSE 0 END), 0)
		 FROM analysis_cache`,
	).Scan(&stats.Entries, &stats.Expired)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: cache stats")
	}
	return &stats, nil
}

func (s *SQLiteStore) SaveFavorite(ctx context.Context, fav model.Favorite) (*model.Favorite, error) {
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}
	if fav.SavedAt.IsZero() {
		fav.SavedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (id, address, rent_estimate, investment_badge, quick_score, estimated_cash_flow, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fav.ID, fav.Address, fav.RentEstimate, string(fav.InvestmentBadge), fav.QuickScore, fav.EstimatedCashFlow,
		fav.SavedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: save favorite")
	}
	return &fav, nil
}

func (s *SQLiteStore) ListFavorites(ctx context.Context, limit int) ([]model.Favorite, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, address, rent_estimate, investment_badge, quick_score, estimated_cash_flow, saved_at
		 FROM favorites ORDER BY saved_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list favorites")
	}
	defer rows.Close()

	var favs []model.Favorite
	for rows.Next() {
		var f model.Favorite
		var badge, savedAt string
		if err := rows.Scan(&f.ID, &f.Address, &f.RentEstimate, &badge, &f.QuickScore, &f.EstimatedCashFlow, &savedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan favorite")
		}
		f.InvestmentBadge = model.Badge(badge)
		if ts, err := time.Parse(sqliteTimeLayout, savedAt); err == nil {
			f.SavedAt = ts
		}
		favs = append(favs, f)
	}
	return favs, eris.Wrap(rows.Err(), "sqlite: list favorites iterate")
}

func (s *SQLiteStore) DeleteFavorite(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete favorite %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("favorite not found: %s", id)
	}
	return nil
}
