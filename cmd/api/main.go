package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/handlers"
	"github.com/taskflow/backend/internal/jobs"
	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/router"
	"github.com/taskflow/backend/internal/seed"
	"github.com/taskflow/backend/internal/services"
	"github.com/taskflow/backend/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// Application state: one ledger, one task store, one submission store,
	// one user directory. All in-memory, discarded on restart.
	wallet := ledger.New()
	tasks := store.NewTaskStore()
	subs := store.NewSubmissionStore()
	users := auth.NewRepository()

	engine := services.NewLifecycleService(tasks, subs, wallet, users, logger)
	walletSvc := services.NewWalletService(wallet, logger)

	authSvc := auth.NewService(users, wallet, []byte(cfg.JWTSecret), cfg.UploaderStartingBalance)
	authHandler := auth.NewHandler(authSvc, wallet, logger)

	taskHandler := handlers.NewTaskHandler(engine, tasks, subs, logger)
	walletHandler := handlers.NewWalletHandler(walletSvc, logger)
	adminHandler := handlers.NewAdminHandler(authSvc, users, tasks, logger)

	if cfg.SeedDemo {
		if err := seed.Run(users, wallet, engine, logger); err != nil {
			slog.Error("seed failed", "error", err)
			os.Exit(1)
		}
	}

	scheduler := jobs.NewScheduler(users, logger)
	scheduler.Start()
	defer scheduler.Stop()

	authn := middleware.Authenticate(authSvc, users)
	mux := router.New(authHandler, taskHandler, walletHandler, adminHandler, authn)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	addr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", addr)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
