// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"net/http"
	"time"
)

// Health serves GET /health: process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"llm_enabled":    h.agent.HasProvider(),
	}, time.Now())
}

// HealthReady serves GET /health/ready: the service is ready once the
// store answers queries and holds data.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", "Database not reachable", err)
		return
	}

	count, err := h.db.CountOrders(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", "Database not queryable", err)
		return
	}
	if count == 0 {
		respondError(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", "No data loaded", nil)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"status": "ready",
		"orders": count,
	}, start)
}
