package app

import (
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/acewatch/acewatch/external/notifier"
	"github.com/acewatch/acewatch/external/sportsdb"
	"github.com/acewatch/acewatch/internal/config"
	"github.com/acewatch/acewatch/internal/domain/alert"
	"github.com/acewatch/acewatch/internal/domain/favorite"
	"github.com/acewatch/acewatch/internal/domain/user"
	"github.com/acewatch/acewatch/internal/infrastructure/repository/memory"
	"github.com/acewatch/acewatch/internal/infrastructure/repository/postgres"
	"github.com/acewatch/acewatch/internal/interfaces/httpapi"
	"github.com/acewatch/acewatch/internal/platform/cache"
	idgen "github.com/acewatch/acewatch/internal/platform/id"
	"github.com/acewatch/acewatch/internal/platform/logging"
	"github.com/acewatch/acewatch/internal/platform/resilience"
	"github.com/acewatch/acewatch/internal/usecase"
)

// NewHTTPServer wires repositories, services and the HTTP router from
// config. The returned cleanup releases resources the server does not
// own, such as the database pool, and is safe to call after Shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		userRepo     user.Repository
		favoriteRepo favorite.Repository
		alertRepo    alert.Repository
		cleanup      = func() error { return nil }
	)

	switch cfg.RepositoryDriver {
	case config.RepositoryDriverPostgres:
		dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
		db, err := otelsqlx.Connect("postgres", dsn,
			otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
			otelsql.WithDBName(dbNameFromURL(dsn)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		userRepo = postgres.NewUserRepository(db)
		favoriteRepo = postgres.NewFavoriteRepository(db)
		alertRepo = postgres.NewAlertRepository(db)
		cleanup = db.Close
		logger.Info("repository driver selected", "driver", cfg.RepositoryDriver, "db", dbNameFromURL(dsn))
	default:
		userRepo = memory.NewUserRepository()
		favoriteRepo = memory.NewFavoriteRepository()
		alertRepo = memory.NewAlertRepository()
		logger.Info("repository driver selected", "driver", config.RepositoryDriverMemory)
	}

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	provider := sportsdb.NewClient(sportsdb.ClientConfig{
		V1BaseURL:  cfg.SportsDBV1BaseURL,
		V2BaseURL:  cfg.SportsDBV2BaseURL,
		APIKey:     cfg.SportsDBAPIKey,
		LeagueID:   cfg.SportsDBLeagueID,
		Timeout:    cfg.SportsDBTimeout,
		MaxRetries: cfg.SportsDBMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportsDBCircuitEnabled,
			FailureThreshold: cfg.SportsDBCircuitFailureCount,
			OpenTimeout:      cfg.SportsDBCircuitOpenTimeout,
			MaxProbes:        cfg.SportsDBCircuitMaxProbes,
		},
	})

	normalizer := usecase.NewNormalizer(logger)
	enricher := usecase.NewEnrichmentService(
		provider.FetchEventByID,
		normalizer,
		usecase.NewDemoEnhancer(nil),
		cfg.EnrichMaxInFlight,
		logger,
	)
	eventSvc := usecase.NewEventService(provider, normalizer, enricher, cacheStore, cfg.SportsDBLeagueID, logger)

	ids := idgen.NewRandomGenerator()
	accountSvc := usecase.NewAccountService(userRepo, ids, cfg.SessionTTL, logger)
	favoriteSvc := usecase.NewFavoriteService(favoriteRepo, ids, logger)

	var dispatcher usecase.AlertDispatcher
	if cfg.WebhookEnabled {
		publisher, err := notifier.NewWebhookPublisher(notifier.WebhookPublisherConfig{
			URL:        cfg.WebhookURL,
			Token:      cfg.WebhookToken,
			Timeout:    cfg.WebhookTimeout,
			MaxRetries: cfg.WebhookMaxRetries,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				MaxProbes:        cfg.WebhookCircuitMaxProbes,
			},
		}, logger)
		if err != nil {
			_ = cleanup()
			return nil, nil, fmt.Errorf("configure alert webhook: %w", err)
		}
		dispatcher = publisher
	}

	alertSvc := usecase.NewAlertService(alertRepo, eventSvc, dispatcher, ids, logger)

	handler := httpapi.NewHandler(accountSvc, eventSvc, favoriteSvc, alertSvc, logger)
	router := httpapi.NewRouter(handler, accountSvc, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}
