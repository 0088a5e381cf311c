package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/dharmasatrya/tripsearch/internal/cache"
	"github.com/dharmasatrya/tripsearch/internal/config"
	"github.com/dharmasatrya/tripsearch/internal/cursor"
	"github.com/dharmasatrya/tripsearch/internal/diagnostics"
	"github.com/dharmasatrya/tripsearch/internal/handler"
	"github.com/dharmasatrya/tripsearch/internal/logging"
	"github.com/dharmasatrya/tripsearch/internal/ratelimit"
	"github.com/dharmasatrya/tripsearch/internal/search"
	"github.com/dharmasatrya/tripsearch/internal/timezone"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

const (
	upstreamTransit    = "journey-planner"
	upstreamNonTransit = "journey-planner-non-transit"
)

func main() {
	app := &cli.App{
		Name:  "tripsearch",
		Usage: "Trip search backend for the travel planner apps",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen address, overrides PORT",
					},
				},
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					listen := c.String("listen")
					if listen == "" {
						listen = ":" + cfg.Port
					}
					return serve(c.Context, cfg, listen)
				},
			},
			{
				Name:      "decode-cursor",
				Usage:     "print the search params held by a page cursor",
				ArgsUsage: "<cursor>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one cursor", 2)
					}
					data, ok := cursor.Decode(c.Args().First())
					if !ok {
						return cli.Exit("cursor could not be decoded", 1)
					}
					_, err := pretty.Println(data)
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func serve(ctx context.Context, cfg config.Config, listen string) error {
	closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	limiter := ratelimit.NewUpstreamLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.UpstreamRPS,
		BurstSize:         cfg.UpstreamBurst,
	})
	limiter.SetLimit(upstreamNonTransit, cfg.UpstreamNonTransitRPS, cfg.UpstreamNonTransitBurst)
	clientOpts := []upstream.Option{
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		upstream.WithClientName(cfg.ClientName),
		upstream.WithRateLimiter(limiter),
		upstream.WithMaxRetries(cfg.UpstreamMaxRetries),
	}
	transit := upstream.New(upstreamTransit, cfg.JourneyPlannerURL, clientOpts...)
	nonTransit := upstream.New(upstreamNonTransit, cfg.JourneyPlannerNonTransitURL, clientOpts...)

	searchConfig := search.DefaultConfig()
	searchConfig.DefaultNumTripPatterns = cfg.DefaultNumTripPatterns
	searchConfig.Location = timezone.Load(cfg.ServiceTimezone)
	orchestrator := search.NewOrchestrator(transit, nonTransit, searchConfig)

	tripCache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer tripCache.Close()
	writer := cache.NewWriter(tripCache, cfg.CacheTTL, 16, 1024)

	links := diagnostics.NewLinkBuilder(cfg.ShamashURL, cfg.IsProduction())
	searchHandler := handler.NewSearchHandler(orchestrator, tripCache, writer, links)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int64("duration_ms", v.Latency.Milliseconds()).
				Str("correlation_id", v.RequestID).
				Msg("Request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api := e.Group("/bff/v2")
	api.POST("/trips", searchHandler.Trips)
	api.POST("/trips/non-transit", searchHandler.NonTransit)
	api.GET("/trips/:id", searchHandler.Trip)
	e.GET("/health", handler.HealthHandler)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("listen", listen).
			Str("environment", cfg.Environment).
			Str("cache_backend", cfg.CacheBackend).
			Msg("Starting trip search server")
		errCh <- e.Start(listen)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	writer.Close()
	return nil
}

func newCache(cfg config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info().Str("host", cfg.RedisHost).Str("port", cfg.RedisPort).Dur("ttl", cfg.CacheTTL).Msg("Redis cache enabled")
		return redisCache, nil
	case config.CacheBackendMemory:
		log.Info().Int("size", cfg.MemoryCacheSize).Dur("ttl", cfg.CacheTTL).Msg("In-memory cache enabled")
		return cache.NewMemoryCache(cfg.MemoryCacheSize, cfg.CacheTTL), nil
	default:
		log.Warn().Msg("Cache disabled, trips cannot be looked up by id")
		return cache.NewNoOpCache(), nil
	}
}
