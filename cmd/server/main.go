package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cashvelo/internal/config"
	"cashvelo/internal/database"
	"cashvelo/internal/handlers"
	"cashvelo/internal/models"
	"cashvelo/internal/repository"
	"cashvelo/internal/security"
	"cashvelo/internal/service"
)

const (
	shutdownTimeout = 15 * time.Second
	startupTimeout  = 30 * time.Second
	authRateWindow  = time.Minute
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Database connection established", "type", cfg.DatabaseType)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := db.RunMigrations(startupCtx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations completed successfully")

	emailService, err := service.NewEmailServiceFromConfig(startupCtx, cfg)
	if err != nil {
		slog.Error("Failed to initialize email service", "error", err)
		os.Exit(1)
	}
	if !emailService.IsEnabled() {
		slog.Warn("Email delivery is disabled; password reset emails will be skipped")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	creditCardRepo := repository.NewCreditCardRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	// Services
	tokens := security.NewTokenService(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTokenTTL)
	authService := service.NewAuthService(userRepo, tokens, emailService)
	goalService := service.NewGoalService(goalRepo)
	statementService := service.NewStatementService(expenseRepo)

	authLimiter := security.NewRateLimiter(cfg.AuthRateLimit, authRateWindow)
	defer authLimiter.Stop()

	router := handlers.SetupRoutes(handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Budgets:       handlers.NewResourceHandler[models.Budget]("Budget", budgetRepo),
		Expenses:      handlers.NewResourceHandler[models.Expense]("Expense", expenseRepo),
		CreditCards:   handlers.NewResourceHandler[models.CreditCard]("Credit card", creditCardRepo),
		Income:        handlers.NewResourceHandler[models.Income]("Income", incomeRepo),
		Goals:         handlers.NewGoalHandler(goalRepo, goalService),
		Statements:    handlers.NewStatementHandler(authService, statementService),
		Middleware:    handlers.NewMiddleware(tokens),
		AuthLimiter:   authLimiter,
		AllowedOrigin: cfg.FrontendURL,
		TrustProxy:    cfg.TrustProxy,
	})

	startServer(cfg.ServerPort, router)
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
		return
	case <-shutdownSignal:
	}
	slog.Info("Shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server gracefully stopped")
}
