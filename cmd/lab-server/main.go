package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/config"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/admin"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/catalog"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/patient"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/reporting"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/request"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/auth"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/db"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/middleware"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/notification"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/reniec"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/webhook"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lab-server",
		Short: "Clinical laboratory API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the laboratory API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Notification fan-out: websocket hub plus optional webhook relay.
	hub := websocket.NewHub(logger)
	relay := webhook.NewRelay(cfg.WebhookURL, cfg.WebhookSecret, logger)
	notifier := notification.NewNotifier(hub, relay, logger)

	registry := reniec.NewClient(cfg.ReniecURL, cfg.ReniecToken, cfg.ReniecTimeout, logger)

	catalogRepo := catalog.NewRepo(pool)
	catalogSvc := catalog.NewService(catalogRepo, pool, logger)

	patientRepo := patient.NewRepo(pool)
	patientSvc := patient.NewService(patientRepo, registry, logger)

	requestRepo := request.NewRepo(pool)
	requestSvc := request.NewService(requestRepo, catalogSvc, patientRepo, notifier, pool, logger)

	reportingSvc := reporting.NewService(reporting.NewRepo(pool), logger)

	adminSvc := admin.NewService(admin.NewRepo(pool))

	e.GET("/health", db.HealthHandler(pool))

	api := e.Group("/api/v1")
	rlCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rlCfg.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimit(rlCfg))
	}
	if cfg.IsDev() {
		api.Use(auth.DevMiddleware())
	} else {
		api.Use(auth.Middleware([]byte(cfg.AuthSecret)))
	}

	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	request.NewHandler(requestSvc).RegisterRoutes(api)
	reporting.NewHandler(reportingSvc).RegisterRoutes(api)
	admin.NewHandler(adminSvc).RegisterRoutes(api)

	api.GET("/ws", websocket.Handler(hub))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
