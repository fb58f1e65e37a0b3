package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"gamerec/internal/app"
	"gamerec/internal/dataset"
	"gamerec/internal/games"
	"gamerec/internal/grpcserver"
	"gamerec/internal/logging"
	"gamerec/pkg/utils"
)

// backend is what the query commands need, served locally or remotely.
type backend interface {
	Recommend(ctx context.Context, query string) (*games.Result, error)
	ListGames(ctx context.Context, q games.ListQuery) (*games.Page, error)
	Genres(ctx context.Context) ([]dataset.GenreCount, error)
}

type commandContext struct {
	configPath string
	apiURL     string
	grpcAddr   string
	jsonOutput bool

	cfg     *utils.Config
	local   *app.App
	closers []func() error
}

func (c *commandContext) ensureConfig() (*utils.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if c.configPath != "" {
		if _, err := os.Stat(c.configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := os.Setenv(utils.ConfigPathEnvVar, c.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := utils.LoadConfig()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) logger() zerolog.Logger {
	level := "warn"
	if c.cfg != nil && c.cfg.Logging.Level == "debug" {
		level = "debug"
	}
	l, err := logging.New(logging.Config{Level: level, Format: "auto", Output: os.Stderr})
	if err != nil {
		return zerolog.Nop()
	}
	return l
}

func (c *commandContext) backend(ctx context.Context) (backend, error) {
	switch {
	case c.apiURL != "" && c.grpcAddr != "":
		return nil, errors.New("--api and --grpc are mutually exclusive")
	case c.apiURL != "":
		return newHTTPBackend(c.apiURL), nil
	case c.grpcAddr != "":
		client, conn, err := grpcserver.Dial(c.grpcAddr)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, conn.Close)
		return grpcBackend{client}, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if c.local == nil {
		a, err := app.New(ctx, cfg, c.logger())
		if err != nil {
			return nil, err
		}
		c.local = a
		c.closers = append(c.closers, a.Close)
	}
	return c.local.Service, nil
}

func (c *commandContext) close() error {
	var errs []error
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// grpcBackend adapts the gRPC client. Paged listing has no RPC.
type grpcBackend struct {
	client *grpcserver.Client
}

func (b grpcBackend) Recommend(ctx context.Context, query string) (*games.Result, error) {
	return b.client.Recommend(ctx, query)
}

func (b grpcBackend) ListGames(context.Context, games.ListQuery) (*games.Page, error) {
	return nil, errors.New("listing games is not available over gRPC; use --api")
}

func (b grpcBackend) Genres(ctx context.Context) ([]dataset.GenreCount, error) {
	return b.client.ListGenres(ctx)
}
