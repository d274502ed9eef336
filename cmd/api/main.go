package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/MCTHIAS/CathPed/internal/config"
	"github.com/MCTHIAS/CathPed/internal/email"
	authHandler "github.com/MCTHIAS/CathPed/internal/handler/auth"
	healthHandler "github.com/MCTHIAS/CathPed/internal/handler/health"
	patientHandler "github.com/MCTHIAS/CathPed/internal/handler/patient"
	"github.com/MCTHIAS/CathPed/internal/middleware"
	"github.com/MCTHIAS/CathPed/internal/repository/postgres"
	"github.com/MCTHIAS/CathPed/internal/router"
	"github.com/MCTHIAS/CathPed/internal/service/auth"
	"github.com/MCTHIAS/CathPed/internal/service/intake"
	patientService "github.com/MCTHIAS/CathPed/internal/service/patient"
	"github.com/MCTHIAS/CathPed/internal/sheets"
	"github.com/MCTHIAS/CathPed/pkg/logger"
	"github.com/MCTHIAS/CathPed/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(&logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	stageRepo := postgres.NewStageRepository(db)

	// External collaborators
	sheetsClient := sheets.NewClient(cfg.Sheets)
	emailSvc := email.NewService(cfg.SMTP, appLogger)

	// Services
	appMetrics := metrics.NewMetrics("cathped", prometheus.DefaultRegisterer)
	intakeSvc := intake.NewService(sheetsClient, patientRepo, emailSvc, appMetrics, appLogger)
	patientSvc := patientService.NewService(patientRepo, stageRepo, intakeSvc, appLogger)
	authSvc := auth.NewService(cfg.Auth)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	authH := authHandler.NewHandler(authSvc, authMiddleware)
	patientH := patientHandler.NewHandler(patientSvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authH,
		patientH,
		healthH,
		router.Config{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			},
			CORSConfig: corsConfig(cfg),
		},
		prometheus.DefaultRegisterer,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}
	return corsCfg
}
