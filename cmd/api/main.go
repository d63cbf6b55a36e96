package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medicore/hospital-api/config"
	"github.com/medicore/hospital-api/internal/email"
	appointmentHandler "github.com/medicore/hospital-api/internal/handler/appointment"
	authHandler "github.com/medicore/hospital-api/internal/handler/auth"
	doctorHandler "github.com/medicore/hospital-api/internal/handler/doctor"
	healthHandler "github.com/medicore/hospital-api/internal/handler/health"
	patientHandler "github.com/medicore/hospital-api/internal/handler/patient"
	prescriptionHandler "github.com/medicore/hospital-api/internal/handler/prescription"
	"github.com/medicore/hospital-api/internal/middleware"
	"github.com/medicore/hospital-api/internal/repository/postgres"
	"github.com/medicore/hospital-api/internal/router"
	appointmentService "github.com/medicore/hospital-api/internal/service/appointment"
	authService "github.com/medicore/hospital-api/internal/service/auth"
	doctorService "github.com/medicore/hospital-api/internal/service/doctor"
	"github.com/medicore/hospital-api/internal/service/outbox"
	patientService "github.com/medicore/hospital-api/internal/service/patient"
	prescriptionService "github.com/medicore/hospital-api/internal/service/prescription"
	"github.com/medicore/hospital-api/pkg/auth"
	"github.com/medicore/hospital-api/pkg/metrics"
	"github.com/medicore/hospital-api/pkg/security"
	"github.com/medicore/hospital-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Logging.Pretty {
		log.Logger = log.Logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	if err := validator.RegisterCustomRules(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validation rules")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics("hospital", "api")

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	events := outbox.NewRecorder(outboxRepo, log.Logger)
	mailer := email.NewSMTPSender(cfg.SMTP, log.Logger)

	tokenExpiry := time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, tokenExpiry)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)

	authSvc := authService.NewService(userRepo, hasher, jwtSvc, tokenExpiry, log.Logger)
	patientSvc := patientService.NewService(patientRepo, events, log.Logger)
	doctorSvc := doctorService.NewService(doctorRepo, cfg.Cache.DoctorTTL, cfg.Cache.CleanupInterval, events, log.Logger)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, doctorSvc, patientSvc, mailer, events, appMetrics, log.Logger)
	prescriptionSvc := prescriptionService.NewService(
		prescriptionRepo, patientRepo, doctorRepo, appointmentRepo, events, log.Logger)

	authMW := middleware.NewAuthMiddleware(jwtSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.Security.AllowedHeaders
	}

	r := router.NewRouter(
		log.Logger,
		authMW,
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		doctorHandler.NewHandler(doctorSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		prescriptionHandler.NewHandler(prescriptionSvc),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimitEnabled:  cfg.RateLimit.Enabled,
			RateLimit:         rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:         cfg.RateLimit.Burst,
			RequestTimeout:    cfg.Server.RequestTimeout,
			CORSConfig:        corsConfig,
			PrometheusEnabled: cfg.Monitoring.PrometheusEnabled,
			MetricsPath:       cfg.Monitoring.MetricsPath,
		},
	)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
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
