package app

import (
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/swaggerdagger987/FDL/external/nflverse"
	"github.com/swaggerdagger987/FDL/external/sleeper"
	"github.com/swaggerdagger987/FDL/internal/config"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/postgres"
	"github.com/swaggerdagger987/FDL/internal/interfaces/httpapi"
	"github.com/swaggerdagger987/FDL/internal/platform/id"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
	"github.com/swaggerdagger987/FDL/internal/platform/resilience"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

// NewHTTPServer wires storage, external clients, and services into a ready
// http.Server. The returned cleanup drains the sync worker and closes the DB.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	db, err := otelsqlx.Connect("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	playerRepo := postgres.NewPlayerRepository(db)
	statRepo := postgres.NewWeeklyStatRepository(db)
	metricRepo := postgres.NewMetricRepository(db)
	screenerRepo := postgres.NewScreenerRepository(db)
	jobRepo := postgres.NewSyncJobRepository(db)
	stateRepo := postgres.NewSyncStateRepository(db)

	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		PlayersURL:      cfg.SleeperPlayersURL,
		StatsMirrors:    cfg.SleeperStatsMirrors,
		PlayersCacheTTL: cfg.SleeperPlayersCacheTTL,
		WeekTimeout:     cfg.SleeperWeekTimeout,
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.SleeperMaxRetries,
			BaseBackoff: cfg.SleeperRetryBaseBackoff,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMax,
		},
		Logger: logger,
	})
	nflverseClient := nflverse.NewClient(nflverse.ClientConfig{
		ReleasesURL:   cfg.NflverseReleasesURL,
		StreamTimeout: cfg.NflverseStreamTimeout,
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.NflverseMaxRetries,
			BaseBackoff: cfg.NflverseRetryBaseBackoff,
		},
		Logger: logger,
	})

	syncSvc := usecase.NewSyncService(
		playerRepo,
		statRepo,
		metricRepo,
		stateRepo,
		sleeperClient,
		nflverseClient,
		usecase.SyncConfig{
			Weeks:         cfg.SyncWeeks,
			AssetCacheTTL: cfg.SyncAssetCacheTTL,
		},
		logger,
	)
	syncJobSvc, err := usecase.NewSyncJobService(
		jobRepo,
		syncSvc,
		id.NewRandomGenerator(),
		usecase.SyncJobConfig{
			DebounceWindow: cfg.JobDebounceWindow,
			JobTimeout:     cfg.JobTimeout,
		},
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("build sync job service: %w", err)
	}

	screenerSvc := usecase.NewScreenerService(screenerRepo, playerRepo, stateRepo, logger)
	playerSvc := usecase.NewPlayerService(playerRepo, statRepo, metricRepo, logger)

	handler := httpapi.NewHandler(screenerSvc, playerSvc, syncSvc, syncJobSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	cleanup := func() {
		syncJobSvc.Close()
		if err := db.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}

	return server, cleanup, nil
}
