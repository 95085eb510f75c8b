package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sessionlite/sessionlite/internal/auth"
	"github.com/sessionlite/sessionlite/internal/config"
	"github.com/sessionlite/sessionlite/internal/database"
	"github.com/sessionlite/sessionlite/internal/person"
	"github.com/sessionlite/sessionlite/internal/session"
	"github.com/sessionlite/sessionlite/internal/token"
	"go.uber.org/zap"
	"moul.io/chizap"
)

func main() {
	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// load database
	db, err := database.Init(cfg.DbConfig)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// run migrations
	database.SetMigrationLogger(logger)
	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// repositories
	personRepo := person.NewPersonRepo(db, logger)
	sessionRepo := session.NewSessionRepo(db, logger)
	tokenRepo := token.NewRefreshTokenRepo(db, logger)

	// services
	tokenService := token.NewTokenService(logger, tokenRepo, cfg.JWTConfig)
	authService := auth.NewAuthenticationService(personRepo, sessionRepo, tokenRepo, tokenService, logger)
	sessionService := session.NewBrowserSessionService(sessionRepo, authService, auth.NewBcryptVerifier(), logger)

	// handlers
	authHandler := auth.NewAuthenticationHandler(authService, logger)
	sessionHandler := session.NewBrowserSessionHandler(sessionService, logger)

	r := chi.NewRouter()
	r.Use(chizap.New(logger, &chizap.Opts{
		WithReferer:   false,
		WithUserAgent: true,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))

	r.Mount("/auth", authHandler.Routes())
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokenService, personRepo, sessionRepo, logger))
		r.Mount("/user", sessionHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppConfig.Port,
		Handler:      r,
		ReadTimeout:  cfg.AppConfig.ReadTimeout,
		WriteTimeout: cfg.AppConfig.WriteTimeout,
		IdleTimeout:  cfg.AppConfig.IdleTimeout,
	}

	go func() {
		logger.Info("application started", zap.String("port", cfg.AppConfig.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("application stopped")
}
