// Package main is the entrypoint for the Meetapp API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"meetapp/config"
	_ "meetapp/docs"
	"meetapp/internal/adapters/auth"
	"meetapp/internal/adapters/email"
	deliveryhttp "meetapp/internal/delivery/http"
	"meetapp/internal/delivery/http/controllers"
	"meetapp/internal/delivery/http/middleware"
	"meetapp/internal/domain"
	"meetapp/internal/queue"
	"meetapp/internal/repository/postgres"
	"meetapp/internal/services"
)

// @title Meetapp API
// @version 1.0
// @description Meetup subscription platform: meetups, subscriptions, and notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger()
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	meetupRepo := postgres.NewMeetupRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	queueRepo := queue.NewRepository(db)

	// Email
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKey,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	// Dispatch queue and worker
	taskQueue := queue.New(queueRepo, logger)
	worker := queue.NewWorker(queueRepo, logger)
	worker.SetPollInterval(cfg.QueuePollInterval)
	worker.SetBatchSize(cfg.QueueBatchSize)
	worker.Register(domain.JobKeySubscriptionMail, services.NewSubscriptionMailHandler(emailService))

	// Auth adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	userService := services.NewUserService(userRepo, hasher, issuer, cfg.TokenExpiry)
	meetupService := services.NewMeetupService(meetupRepo, userRepo)
	subscriptionService := services.NewSubscriptionService(meetupRepo, subscriptionRepo, notificationRepo, userRepo, taskQueue, logger)
	notificationService := services.NewNotificationService(notificationRepo)

	// Controllers
	userController := controllers.NewUserController(logger, userService)
	meetupController := controllers.NewMeetupController(logger, meetupService)
	subscriptionController := controllers.NewSubscriptionController(logger, subscriptionService)
	notificationController := controllers.NewNotificationController(logger, notificationService)

	mux := deliveryhttp.NewRouter(verifier, userController, meetupController, subscriptionController, notificationController)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("worker stopped", "error", err)
		}
	}()

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	<-workerDone
	logger.Info("stopped")
}
