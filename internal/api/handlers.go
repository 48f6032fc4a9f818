// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package api provides the HTTP surface: chi routing, the standard
// response envelope, request middleware and the handlers backing the
// dashboard.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_analytics.go: KPI, RFM, funnel and forecast endpoints
//   - handlers_stats.go: dimensional stats, rankings and schema
//   - handlers_chat.go: natural-language analysis endpoint
//   - handlers_data.go: dataset regeneration and reload
//   - handlers_health.go: liveness and readiness probes
package api

import (
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/agent"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/analyzer"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	db        *database.DB
	analyzer  *analyzer.Analyzer
	agent     *agent.Agent
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler. agent may be nil-provider but
// never nil itself; every dependency is wired at startup.
func NewHandler(db *database.DB, an *analyzer.Analyzer, ag *agent.Agent, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		analyzer:  an,
		agent:     ag,
		config:    cfg,
		startTime: time.Now(),
	}
}
