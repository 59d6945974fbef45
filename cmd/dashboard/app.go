package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"coin-dashboard/internal/config"
	"coin-dashboard/internal/infra/backend"
	"coin-dashboard/internal/infra/cache"
	"coin-dashboard/internal/infra/coingecko"
	"coin-dashboard/internal/infra/db"
	"coin-dashboard/internal/infra/keyring"
	"coin-dashboard/internal/resilience/circuitbreaker"
	"coin-dashboard/internal/usecase/favorites"
	"coin-dashboard/internal/usecase/market"
	"coin-dashboard/internal/usecase/rugpull"
)

// app holds the wired dependencies for one invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	jsonOut bool

	db        *sql.DB
	market    *coingecko.Client
	backend   *backend.Client
	analysis  *rugpull.Service
	favorites *favorites.Service
	overview  *market.Service
	breakers  []*circuitbreaker.CircuitBreaker
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, jsonOut bool) (*app, error) {
	cgBreaker := circuitbreaker.New(circuitbreaker.CoinGeckoConfig())
	backendBreaker := circuitbreaker.New(circuitbreaker.BackendConfig())
	storeBreaker := circuitbreaker.New(circuitbreaker.DurableStoreConfig())

	keys := keyring.New(cfg.CoinGecko.APIKeys, keyring.WithCooldown(cfg.CoinGecko.KeyCooldown))
	marketClient := coingecko.NewClient(cfg.CoinGeckoClientConfig(), keys,
		coingecko.WithBreaker(cgBreaker),
		coingecko.WithRateLimiter(coingecko.NewRateLimiter(cfg.CoinGecko.RateLimit, cfg.CoinGecko.RateBurst)),
	)
	backendClient := backend.NewClient(cfg.BackendClientConfig(), backend.WithBreaker(backendBreaker))

	// Without the durable tier the cache and favorites live in memory only.
	var store cache.Store
	database, err := openCacheDB(ctx, cfg.Cache.DBPath)
	if err != nil {
		logger.Warn("cache database unavailable, caching in memory only",
			slog.String("cache_db", cfg.Cache.DBPath),
			slog.Any("error", err))
	} else {
		store = cache.NewSQLiteStore(database, cache.WithBreaker(storeBreaker))
	}
	analysisCache := cache.NewTwoTier(store, cache.WithTTL(cfg.Cache.TTL))
	analysis := rugpull.NewService(backendClient, analysisCache)

	logger.Debug("dashboard initialized",
		slog.Int("api_keys", keys.Len()),
		slog.String("cache_db", cfg.Cache.DBPath),
		slog.Duration("analysis_ttl", analysisCache.TTL()))

	return &app{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		jsonOut:   jsonOut,
		db:        database,
		market:    marketClient,
		backend:   backendClient,
		analysis:  analysis,
		favorites: favorites.NewService(store),
		overview:  market.NewService(marketClient, analysis),
		breakers:  []*circuitbreaker.CircuitBreaker{cgBreaker, backendBreaker, storeBreaker},
	}, nil
}

// openCacheDB opens and migrates the durable cache database.
func openCacheDB(ctx context.Context, path string) (*sql.DB, error) {
	database, err := db.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate cache database: %w", err)
	}
	return database, nil
}

// Close releases the cache database.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// emit prints v as indented JSON when -json is set, otherwise calls text.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return nil
	}
	text(a.out)
	return nil
}
