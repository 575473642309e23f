package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toeic-web/internal/api"
	"toeic-web/internal/auth"
	"toeic-web/internal/config"
	"toeic-web/internal/database"
	"toeic-web/internal/logger"
	"toeic-web/internal/service"
	"toeic-web/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Nop()
		if l, lerr := logger.New("development"); lerr == nil {
			bootLog = l
		}
		bootLog.Fatal("config error", "error", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := database.Connect(ctx, cfg.DatabaseURL, database.Options{
		Retries:       cfg.DBConnectTries,
		RetryInterval: cfg.DBRetryInterval,
	}, log)
	if err != nil {
		log.Fatal("DB connect error", "error", err)
	}
	defer sqlDB.Close()
	log.Info("DB connected")

	db, err := database.Open(sqlDB)
	if err != nil {
		log.Fatal("DB init error", "error", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("DB migrate error", "error", err)
		}
		log.Info("DB schema migrated")
	}

	st := store.New(db, log)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	router := api.NewRouter(api.Config{
		Services: service.New(st, tokens, log),
		Tokens:   tokens,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal("Server start error", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down", "timeout", cfg.ShutdownTimeout.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
