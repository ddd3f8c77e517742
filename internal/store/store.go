// Package store persists analysis cache entries and saved favorites behind
// a driver-agnostic interface with SQLite and Postgres backends.
package store

import (
	"context"
	"time"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// CacheStats summarizes the analysis cache contents.
type CacheStats struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
}

// Store defines persistence for the analyzer: a TTL cache of full analyses
// keyed by normalized address, and the favorites snapshot list.
type Store interface {
	// Analysis cache
	GetCachedAnalysis(ctx context.Context, addressKey string) (*model.EnrichedAnalysis, error)
	SetCachedAnalysis(ctx context.Context, addressKey string, analysis *model.EnrichedAnalysis, ttl time.Duration) error
	PruneExpired(ctx context.Context) (int, error)
	CacheStats(ctx context.Context) (*CacheStats, error)

	// Favorites
	SaveFavorite(ctx context.Context, fav model.Favorite) (*model.Favorite, error)
	ListFavorites(ctx context.Context, limit int) ([]model.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
