package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lmittmann/tint"

	"github.com/eventlens/api/internal/config"
	"github.com/eventlens/api/internal/domain"
	"github.com/eventlens/api/internal/handler"
	"github.com/eventlens/api/internal/mail"
	"github.com/eventlens/api/internal/repository"
	"github.com/eventlens/api/internal/service"
)

func main() {
	setupLogging()

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(context.Background(), db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	slog.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)

	var mailer mail.Mailer = mail.ConsoleMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	providers := service.NewOAuthProviders(cfg.ServerURL, map[domain.Provider]service.ProviderCredentials{
		domain.ProviderGoogle:   {ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret},
		domain.ProviderGitHub:   {ClientID: cfg.GitHubClientID, ClientSecret: cfg.GitHubClientSecret},
		domain.ProviderLinkedIn: {ClientID: cfg.LinkedInClientID, ClientSecret: cfg.LinkedInClientSecret},
	})

	authSvc := service.NewAuthService(userRepo, tokens, mailer, cfg.FrontendURL)
	resolver := service.NewAccountResolver(userRepo, tokens)
	eventSvc := service.NewEventService(eventRepo)

	validate := handler.NewAppValidator()
	userHandler := handler.NewUserHandler(authSvc, validate)
	authHandler := handler.NewAuthHandler(resolver, providers, validate, cfg.FrontendURL)
	eventHandler := handler.NewEventHandler(eventSvc, validate)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(handler.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/forgot-password", userHandler.ForgotPassword)

			r.With(handler.JWTAuth(tokens)).Get("/me", userHandler.Me)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/reset-password/{token}", userHandler.ResetPassword)
			r.Post("/google/complete-signup", authHandler.CompleteSignup)
			r.Get("/{provider}", authHandler.Redirect)
			r.Get("/{provider}/callback", authHandler.Callback)
		})

		r.Route("/events", func(r chi.Router) {
			r.Use(handler.JWTAuth(tokens))

			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func setupLogging() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      levelFromEnv(),
			TimeFormat: time.Kitchen,
		}),
	))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
