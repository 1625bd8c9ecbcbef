package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ultramed/clinic/internal/api"
	"github.com/ultramed/clinic/internal/app"
	"github.com/ultramed/clinic/internal/config"
	"github.com/ultramed/clinic/internal/platform/auth"
	"github.com/ultramed/clinic/internal/platform/catalog"
	"github.com/ultramed/clinic/internal/platform/db"
	"github.com/ultramed/clinic/internal/platform/middleware"
	"github.com/ultramed/clinic/internal/platform/store"
)

// devSessionSecret signs session tokens when no SESSION_SECRET is configured
// in development, so the server runs with zero setup. Config validation
// refuses to start without a real secret outside development.
const devSessionSecret = "clinic-dev-session-secret"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic patient-record API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initDBCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// initDBCmd creates the Postgres state table ahead of time. serve also does
// this at startup; the command exists for provisioning pipelines that want
// schema changes separated from the serving process.
func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the database state table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.UsePostgres() {
				return fmt.Errorf("DATABASE_URL is not configured")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.NewPGStore(pool).Init(ctx); err != nil {
				return err
			}
			fmt.Println("app_state table ready")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = devSessionSecret
		logger.Warn().Msg("SESSION_SECRET not set; using development fallback")
	}

	// Persistence: Postgres when DATABASE_URL is configured, JSON files in
	// DATA_DIR otherwise.
	ctx := context.Background()
	var st store.Store
	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		pg := store.NewPGStore(pool)
		if err := pg.Init(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize database state table")
		}
		st = pg
		logger.Info().Msg("using postgres store")
	} else {
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open data directory")
		}
		st = fs
		logger.Info().Str("dir", cfg.DataDir).Msg("using file store")
	}

	// Application state
	a := app.New(st, logger)
	if err := a.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load application state")
	}
	if n, err := a.MigrateLegacyPatients(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate legacy patients")
	} else if n > 0 {
		logger.Info().Int("patients", n).Msg("legacy patient migration complete")
	}

	// Medication catalog, best effort
	fetcher := catalog.NewFetcher(logger)
	if url := a.Settings().MedicationsURL; url != "" {
		meds := fetcher.Fetch(ctx, url)
		a.SetMedicationCatalog(meds)
		logger.Info().Int("count", len(meds)).Msg("medication catalog loaded")
	}

	sessions := auth.NewSessionManager(secret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	api.NewHandler(a, sessions, fetcher, logger).RegisterRoutes(e)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
