package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/moola-sync/internal"
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/posting"
	postingPostgres "github.com/frahmantamala/moola-sync/internal/posting/postgres"
	"github.com/frahmantamala/moola-sync/internal/settings"
	settingsPostgres "github.com/frahmantamala/moola-sync/internal/settings/postgres"
	syncService "github.com/frahmantamala/moola-sync/internal/sync"
	"github.com/frahmantamala/moola-sync/internal/synclog"
	synclogPostgres "github.com/frahmantamala/moola-sync/internal/synclog/postgres"
	"github.com/frahmantamala/moola-sync/internal/transport/rest"
	"github.com/frahmantamala/moola-sync/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server exposing the sync control API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	GormDB      *gorm.DB
	Router      *chi.Mux
	SyncHandler *syncService.Handler
	SyncService *syncService.Service
	Logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.SyncHandler, deps.Config.Operator.APIKey, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	svc, runLogs := buildSyncService(config, gormDB, lg)
	handler := syncService.NewHandler(svc, runLogs, lg)

	return &Dependencies{
		Config:      config,
		Logger:      lg,
		DB:          db,
		GormDB:      gormDB,
		Router:      chi.NewRouter(),
		SyncHandler: handler,
		SyncService: svc,
	}, nil
}

// buildSyncService wires the full posting pipeline: settings, journal
// store, attachment fetcher, posting engine and the run orchestrator.
func buildSyncService(config *internal.Config, gormDB *gorm.DB, lg *slog.Logger) (*syncService.Service, *synclog.Service) {
	settingsRepo := settingsPostgres.NewSettingsRepository(gormDB)
	settingsService := settings.NewService(settingsRepo, lg)

	journalRepo := postingPostgres.NewJournalRepository(gormDB)
	fetcher := posting.NewFetcher(journalRepo, posting.FetcherConfig{
		MaxBytes: config.Sync.AttachmentMaxBytes,
		Timeout:  config.Sync.AttachmentTimeout,
	}, lg)
	engine := posting.NewEngine(journalRepo, fetcher, lg)

	syncLogRepo := synclogPostgres.NewSyncLogRepository(gormDB)
	runLogs := synclog.NewService(syncLogRepo)

	newClient := func(s *settings.Settings) syncService.FetchClient {
		return moola.NewClient(moola.Config{
			BaseURL:       s.APIBaseURL,
			ListEndpoint:  s.ExpenseListEndpoint,
			AuthType:      s.AuthType,
			BasicUsername: s.BasicUsername,
			BasicPassword: s.BasicPassword,
			APIKey:        s.APIKey,
			Timeout:       config.Sync.FetchTimeout,
		}, lg)
	}

	svc := syncService.NewService(settingsService, newClient, engine, syncLogRepo, syncService.NewRunLock(), lg)
	return svc, runLogs
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
