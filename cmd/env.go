package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rentfolio/analyzer-cli/internal/analyzer"
	"github.com/rentfolio/analyzer-cli/internal/finance"
	"github.com/rentfolio/analyzer-cli/internal/store"
	"github.com/rentfolio/analyzer-cli/pkg/homeharvest"
	"github.com/rentfolio/analyzer-cli/pkg/parcelrec"
	"github.com/rentfolio/analyzer-cli/pkg/rentcast"
)

// appEnv holds the wired application dependencies for a command run.
type appEnv struct {
	Store    store.Store
	Analyzer *analyzer.Analyzer
	Listings homeharvest.Client
}

// initEnv opens the store and constructs the analyzer with whichever
// provider clients are configured. A provider without credentials is left
// nil; its rent signal is simply never gathered.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(cfg.Lookup.MinIntervalSecs) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	var rc rentcast.Client
	if cfg.RentCast.Key != "" {
		rc = rentcast.NewClient(cfg.RentCast.Key,
			rentcast.WithBaseURL(cfg.RentCast.BaseURL),
			rentcast.WithRateLimit(interval),
		)
	} else {
		zap.L().Warn("env: rentcast key not configured, primary rent signal disabled")
	}

	var hh homeharvest.Client
	if cfg.HomeHarvest.BaseURL != "" {
		hh = homeharvest.NewClient(
			homeharvest.WithBaseURL(cfg.HomeHarvest.BaseURL),
			homeharvest.WithRateLimit(interval),
		)
	}

	var pr parcelrec.Client
	if cfg.ParcelRec.Key != "" {
		pr = parcelrec.NewClient(cfg.ParcelRec.Key,
			parcelrec.WithBaseURL(cfg.ParcelRec.BaseURL),
			parcelrec.WithRateLimit(interval),
		)
	}

	an := analyzer.New(cfg, st, rc, hh, pr)
	if assumptionsPath != "" {
		a, err := finance.LoadAssumptions(assumptionsPath)
		if err != nil {
			st.Close()
			return nil, eris.Wrap(err, "env: load assumptions")
		}
		an.SetAssumptions(a)
		zap.L().Info("env: assumptions loaded from file", zap.String("path", assumptionsPath))
	}

	return &appEnv{
		Store:    st,
		Analyzer: an,
		Listings: hh,
	}, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "env: open postgres store")
		}
		st = pg
	case "", "sqlite":
		sq, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, eris.Wrap(err, "env: open sqlite store")
		}
		st = sq
	default:
		return nil, eris.Errorf("env: unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "env: migrate store")
	}
	return st, nil
}

func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("env: close store", zap.Error(err))
		}
	}
}
