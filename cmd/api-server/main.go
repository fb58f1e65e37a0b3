package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gamerec/internal/app"
	"gamerec/internal/games"
	"gamerec/internal/logging"
	"gamerec/internal/middleware"
	synchub "gamerec/internal/sync"
	"gamerec/pkg/utils"
)

func main() {
	cfg, logger, err := setup()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("startup")
	}

	hub := synchub.NewHub(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	a, err := app.New(startCtx, cfg, logger, games.WithReloadHook(hub.DatasetReloaded))
	cancelStart()
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.Data.Source).Msg("load dataset")
	}
	defer a.Close()

	router := newRouter(cfg, logger, a, hub)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var tcpSrv *synchub.Server
	if cfg.Sync.TCPAddr != "" {
		tcpSrv = synchub.NewServer(cfg.Sync.TCPAddr, hub)
		// bind early so address errors surface before serving HTTP
		if err := tcpSrv.Listen(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Sync.TCPAddr).Msg("tcp sync listen")
		}
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Serve(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", cfg.Server.Addr).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

wait:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info().Msg("SIGHUP received, reloading dataset")
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				_, _ = a.Service.Reload(ctx)
				cancel()
				continue
			}
			logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
			break wait
		case err := <-errCh:
			logger.Error().Err(err).Msg("server error")
			break wait
		}
	}

	logger.Info().Msg("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Error().Err(err).Msg("tcp shutdown")
		}
	}

	wg.Wait()
	logger.Info().Msg("servers stopped")
}

func newRouter(cfg *utils.Config, logger zerolog.Logger, a *app.App, hub *synchub.Hub) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies(cfg.Server.TrustedProxies)
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger.With().Str("component", "http").Logger()),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		data := a.Store.Current()
		if data == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "dataset not loaded"})
			return
		}
		if a.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := a.DB.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"source":      cfg.Data.Source,
			"games":       data.Games.Len(),
			"loaded_at":   data.LoadedAt,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", synchub.WSHandler(hub))

	api := router.Group("")
	if cfg.Server.RateLimitRPS > 0 {
		api.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).Middleware())
	}
	games.NewHandler(a.Service).RegisterRoutes(api)

	if cfg.Server.EnableAdmin {
		router.POST("/admin/reload", func(c *gin.Context) {
			data, err := a.Service.Reload(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": games.CodeDataUnavailable})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "reloaded", "games": data.Games.Len(), "loaded_at": data.LoadedAt})
		})
	}

	return router
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
