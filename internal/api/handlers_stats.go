// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"net/http"
	"time"
)

// dailyStatsParams bounds the lookback window.
type dailyStatsParams struct {
	Days int `validate:"gte=1,lte=365"`
}

// DailyStats serves GET /api/stats/daily?days=30.
func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := dailyStatsParams{Days: getIntParam(r, "days", 30)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	stats, err := h.db.GetDailyStats(r.Context(), params.Days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve daily stats", err)
		return
	}
	respondSuccess(w, stats, start)
}

// CategoryStats serves GET /api/stats/category.
func (h *Handler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.GetCategoryStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve category stats", err)
		return
	}
	respondSuccess(w, stats, start)
}

// ChannelStats serves GET /api/stats/channel.
func (h *Handler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.GetChannelStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve channel stats", err)
		return
	}
	respondSuccess(w, stats, start)
}

// CityStats serves GET /api/stats/city.
func (h *Handler) CityStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.GetCityStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve city stats", err)
		return
	}
	respondSuccess(w, stats, start)
}

// rankingParams bounds ranking list sizes.
type rankingParams struct {
	Limit int `validate:"gte=1,lte=100"`
}

// TopUsers serves GET /api/users/top?limit=10.
func (h *Handler) TopUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := rankingParams{Limit: getIntParam(r, "limit", 10)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	users, err := h.db.GetTopUsers(r.Context(), params.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve top users", err)
		return
	}
	respondSuccess(w, users, start)
}

// TopProducts serves GET /api/products/top?limit=10.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := rankingParams{Limit: getIntParam(r, "limit", 10)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	products, err := h.db.GetTopProducts(r.Context(), params.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve top products", err)
		return
	}
	respondSuccess(w, products, start)
}

// Schema serves GET /api/schema: table and column listing.
func (h *Handler) Schema(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	schema, err := h.db.Schema(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to retrieve schema", err)
		return
	}
	respondSuccess(w, schema, start)
}
