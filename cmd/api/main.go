package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/contaflow/contaflow/internal/config"
	"github.com/contaflow/contaflow/internal/handler"
	"github.com/contaflow/contaflow/internal/logging"
	"github.com/contaflow/contaflow/internal/middleware"
	"github.com/contaflow/contaflow/internal/repository"
	"github.com/contaflow/contaflow/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("contaflow-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	billRepo := repository.NewBillRepository(db)
	userRepo := repository.NewUserRepository(db)

	billSvc := service.NewBillService(billRepo, userRepo, db)
	ledgerSvc := service.NewLedgerService(billRepo)
	userSvc := service.NewUserService(userRepo)

	jwtExpiry := time.Duration(cfg.JWTExpiryM) * time.Minute
	billHandler := handler.NewBillHandler(billSvc, ledgerSvc)
	userHandler := handler.NewUserHandler(userSvc)
	authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, jwtExpiry)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/users", userHandler.Register)

	authed := middleware.Auth(cfg.JWTSecret)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.Handle("GET /api/v1/users", protect(userHandler.List))
	mux.Handle("GET /api/v1/users/{id}", protect(userHandler.GetByID))
	mux.Handle("PUT /api/v1/users/{id}", protect(userHandler.Update))
	mux.Handle("DELETE /api/v1/users/{id}", protect(userHandler.Delete))
	mux.Handle("GET /api/v1/users/{id}/bills", protect(billHandler.ListByUser))

	mux.Handle("POST /api/v1/bills", protect(billHandler.Create))
	mux.Handle("GET /api/v1/bills", protect(billHandler.List))
	mux.Handle("GET /api/v1/bills/total-paid", protect(billHandler.TotalPaid))
	mux.Handle("GET /api/v1/bills/pending", protect(billHandler.Pending))
	mux.Handle("GET /api/v1/bills/{id}", protect(billHandler.Get))
	mux.Handle("PUT /api/v1/bills/{id}", protect(billHandler.Update))
	mux.Handle("PUT /api/v1/bills/{id}/payment", protect(billHandler.Pay))
	mux.Handle("DELETE /api/v1/bills/{id}", protect(billHandler.Delete))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}
	return db, nil
}
