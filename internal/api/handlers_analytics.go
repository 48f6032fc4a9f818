// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"net/http"
	"time"
)

// KPI serves GET /api/kpi: the core scalar metrics.
func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	kpi, err := h.analyzer.KPI(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to compute KPIs", err)
		return
	}
	respondSuccess(w, kpi, start)
}

// kpiTrendParams bounds the comparison window.
type kpiTrendParams struct {
	Days int `validate:"gte=1,lte=90"`
}

// KPITrend serves GET /api/kpi/trend?days=7.
func (h *Handler) KPITrend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := kpiTrendParams{Days: getIntParam(r, "days", 7)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	trend, err := h.analyzer.KPITrend(r.Context(), params.Days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to compute KPI trend", err)
		return
	}
	respondSuccess(w, trend, start)
}

// rfmParams bounds the requested cluster count; 0 means use the
// configured default.
type rfmParams struct {
	Clusters int `validate:"gte=0,lte=8"`
}

// RFM serves GET /api/rfm?clusters=4: customer segmentation.
func (h *Handler) RFM(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := rfmParams{Clusters: getIntParam(r, "clusters", 0)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.analyzer.RFM(r.Context(), params.Clusters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to segment users", err)
		return
	}
	respondSuccess(w, result, start)
}

// Funnel serves GET /api/funnel: stage counts and conversion rates.
func (h *Handler) Funnel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	result, err := h.analyzer.Funnel(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to compute funnel", err)
		return
	}
	respondSuccess(w, result, start)
}

// forecastParams bounds the projection horizon.
type forecastParams struct {
	Days int `validate:"gte=1,lte=90"`
}

// Forecast serves GET /api/forecast?days=7: history plus projection.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := forecastParams{Days: getIntParam(r, "days", 7)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	points, err := h.analyzer.Forecast(r.Context(), params.Days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to compute forecast", err)
		return
	}
	respondSuccess(w, points, start)
}
