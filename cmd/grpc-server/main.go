package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gamerec/internal/app"
	"gamerec/internal/grpcserver"
	"gamerec/internal/logging"
	"gamerec/pkg/utils"
)

func main() {
	cfg, logger, err := setup()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("startup")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	a, err := app.New(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.Data.Source).Msg("load dataset")
	}
	defer a.Close()

	listener, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.GRPC.Addr).Msg("grpc listen")
	}

	gs := grpcserver.New(a.Service, logger.With().Str("component", "grpc").Logger())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				_, _ = a.Service.Reload(ctx)
				cancel()
				continue
			}
			logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
			gs.GracefulStop()
			return
		}
	}()

	logger.Info().Str("addr", cfg.GRPC.Addr).Msg("gRPC server listening")
	if err := gs.Serve(listener); err != nil {
		logger.Fatal().Err(err).Msg("grpc server stopped")
	}
	logger.Info().Msg("gRPC server stopped")
}

// setup loads the configuration and builds the process logger.
func setup() (*utils.Config, zerolog.Logger, error) {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
