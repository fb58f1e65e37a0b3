// Package app assembles the dataset store, engine and games service from
// configuration. The binaries share it.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"gamerec/internal/dataset"
	"gamerec/internal/format"
	"gamerec/internal/games"
	"gamerec/internal/metrics"
	"gamerec/internal/recommend"
	"gamerec/internal/resolver"
	"gamerec/pkg/database"
	"gamerec/pkg/utils"
)

type App struct {
	Store   *dataset.Store
	Engine  *recommend.Engine
	Service *games.Service
	DB      *sql.DB // nil for the csv source
}

// Loader returns the dataset loader for cfg.Data.Source. For the sqlite
// source it also returns the opened, migrated database.
func Loader(ctx context.Context, cfg *utils.Config) (dataset.Loader, *sql.DB, error) {
	switch cfg.Data.Source {
	case "sqlite":
		db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return func(ctx context.Context) (*dataset.Data, error) {
			return dataset.LoadFromDatabase(ctx, db)
		}, db, nil
	case "csv", "":
		gp, sp := cfg.Data.GamesPath, cfg.Data.SimilarityPath
		return func(context.Context) (*dataset.Data, error) {
			return dataset.LoadFiles(gp, sp)
		}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// New loads the initial dataset and wires the service. Extra options are
// applied after the configured ones.
func New(ctx context.Context, cfg *utils.Config, logger zerolog.Logger, opts ...games.Option) (*App, error) {
	loader, db, err := Loader(ctx, cfg)
	if err != nil {
		return nil, err
	}

	retry := dataset.RetryPolicy{Attempts: cfg.Data.LoadRetries, Interval: cfg.Data.RetryInterval}
	store, err := dataset.Open(ctx, loader, retry, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	if data := store.Current(); data != nil {
		metrics.RecordSnapshot(data.Games.Len(), float64(data.LoadedAt.Unix()))
	}

	sampler, err := recommend.NewSampler(cfg.Recommend.Sampling, cfg.Recommend.Seed)
	if err != nil {
		return nil, err
	}
	engine := recommend.NewEngine(store,
		recommend.WithSampler(sampler),
		recommend.WithLimit(cfg.Recommend.Limit),
		recommend.WithLogger(logger),
	)

	svcOpts := append([]games.Option{
		games.WithMatchMode(resolver.Mode(cfg.Recommend.MatchMode)),
		games.WithDefaultGame(cfg.Recommend.DefaultGame),
		games.WithLogger(logger),
	}, opts...)
	svc := games.NewService(store, engine, format.New(cfg.Recommend.WikiBaseURL), svcOpts...)

	return &App{Store: store, Engine: engine, Service: svc, DB: db}, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
