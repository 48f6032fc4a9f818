// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package main is the entry point for the Jarvis analytics server.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading via Koanf v2 (defaults, config
//     file, environment variables)
//  2. Logging: zerolog, JSON or console format
//  3. Dataset: synthetic CSVs are generated on first run
//  4. Database: embedded DuckDB, loaded from the CSVs
//  5. Analyzer and agent: metrics computation and the NL-to-SQL
//     pipeline (rule fallback when no LLM is configured)
//  6. HTTP server: chi router serving the REST API, Prometheus
//     metrics and the dashboard
//
// # Configuration
//
// Environment variables use the JARVIS_ prefix (JARVIS_SERVER_PORT,
// JARVIS_LOGGING_LEVEL, ...). The LLM provider keeps its legacy
// variables: LLM_PROVIDER, DEEPSEEK_API_KEY, OPENAI_API_KEY,
// OLLAMA_BASE_URL, OLLAMA_MODEL.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections, in-flight requests get the configured
// shutdown timeout to finish, then the database closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/agent"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/analyzer"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/api"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/generator"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/logging"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("data_dir", cfg.Data.Dir).
		Str("llm_provider", cfg.LLM.Provider).
		Msg("Configuration loaded")

	// First run: generate the synthetic dataset.
	if !generator.CSVsExist(cfg.Data.Dir) {
		logging.Info().
			Int("orders", cfg.Data.Orders).
			Int("users", cfg.Data.Users).
			Int("products", cfg.Data.Products).
			Msg("No dataset found, generating")
		ds := generator.New(cfg.Data).Generate()
		if err := generator.WriteCSVs(ds, cfg.Data.Dir); err != nil {
			logging.Fatal().Err(err).Msg("Failed to write dataset")
		}
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	count, err := db.LoadCSV(context.Background(), cfg.Data.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load dataset")
	}
	metrics.OrdersLoaded.Set(float64(count))
	logging.Info().Int64("orders", count).Msg("Dataset loaded")

	provider, err := agent.NewProvider(&cfg.LLM)
	switch {
	case err == nil:
		logging.Info().Str("provider", provider.Name()).Msg("LLM provider connected")
	case errors.Is(err, agent.ErrNoProvider):
		logging.Info().Msg("No LLM provider configured, chat uses rule fallback")
	default:
		logging.Warn().Err(err).Msg("LLM provider unavailable, chat uses rule fallback")
		provider = nil
	}

	handler := api.NewHandler(db, analyzer.New(db, cfg.RFM), agent.New(db, provider), cfg)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
