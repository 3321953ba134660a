package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/loomhouse/storefront/config"
	httpDelivery "github.com/loomhouse/storefront/internal/delivery/http"
	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/infrastructure/cache"
	"github.com/loomhouse/storefront/internal/infrastructure/catalog"
	"github.com/loomhouse/storefront/internal/usecase"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Server.Environment)
	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("catalog", cfg.Catalog.BaseURL).
		Msg("starting Loomhouse storefront v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, closer, err := newCache(ctx, cfg.Cache)
	if err != nil {
		log.Error().Err(err).Msg("cache initialization failed")
		fmt.Fprintf(os.Stderr, "cache initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		MaxAttempts:       cfg.Catalog.MaxAttempts,
	})
	if cfg.Catalog.Debug || cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Debug().Msg("catalog client debug mode enabled")
	}

	imageBase := cfg.Catalog.PublicBaseURL
	history := usecase.NewHistoryService(store, cfg.History.TTL)
	home := usecase.NewHomeService(catalogClient, store, cfg.Cache.TTL, imageBase)

	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Feed:     usecase.NewFeedService(catalogClient, imageBase),
		Home:     home,
		Products: usecase.NewProductService(catalogClient, imageBase, nil),
		Suggest:  usecase.NewSuggestService(catalogClient, store, cfg.Suggest.Debounce, cfg.Suggest.CacheTTL),
		History:  history,
		Admin:    usecase.NewAdminService(catalogClient, home, imageBase),
	})

	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

// newCache builds the cache selected by cfg.Type
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, io.Closer, error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("redis cache connected")
		return redisCache, redisCache, nil
	}
	memoryCache := cache.NewMemoryCache()
	return memoryCache, memoryCache, nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
