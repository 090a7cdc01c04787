package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/config"
	"github.com/budgenv/backend/internal/controllers"
	"github.com/budgenv/backend/internal/ledger"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/router"
	"github.com/budgenv/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//	@title						budgenv
//	@description				The backend for budgenv, a personal budgeting API with budgets, categories, transactions and monthly affectations.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token from POST /tokens, sent as "Bearer <token>"
func main() {
	// A missing .env file is fine, the environment is used as is then
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal().Err(err).Msg("Loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Configuration")
	}

	gin.SetMode(cfg.GinMode)

	output := io.Writer(os.Stdout)
	if cfg.HumanLogs() {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(output).With().Timestamp().Logger()

	db, err := connect(cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	s := store.New(db)
	engine := ledger.New(s, log.Logger)

	co := controllers.Controller{
		Ledger: engine,
		Auth:   auth.New(s, cfg.Secret, cfg.TokenTTL),
		DB:     db,
	}

	r, teardown, err := router.Config(cfg, ledger.Collectors()...)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()

	router.AttachRoutes(co, r.Group("/"), cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ReconcileInterval > 0 {
		go ledger.NewReconciler(engine, cfg.ReconcileInterval).Run(ctx)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// connect opens PostgreSQL if a host is configured and SQLite otherwise.
func connect(cfg config.Config) (*gorm.DB, error) {
	if cfg.Postgres() {
		return models.ConnectPostgres(cfg.PostgresDSN())
	}

	// Create data directory
	err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm)
	if err != nil {
		return nil, err
	}

	return models.Connect(cfg.DBPath)
}
