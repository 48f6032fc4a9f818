// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"net/http"
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/generator"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/logging"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/metrics"
)

// ReloadData serves POST /api/data/reload: regenerate the synthetic
// dataset and atomically replace the store contents. Readers keep
// seeing the old data until the reload commits.
func (h *Handler) ReloadData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dir := h.config.Data.Dir
	ds := generator.NewAt(h.config.Data, time.Now()).Generate()
	if err := generator.WriteCSVs(ds, dir); err != nil {
		metrics.DataReloadsTotal.WithLabelValues("error").Inc()
		respondError(w, http.StatusInternalServerError, "IMPORT_ERROR", "Failed to write dataset", err)
		return
	}

	count, err := h.db.Reload(r.Context(), dir)
	if err != nil {
		metrics.DataReloadsTotal.WithLabelValues("error").Inc()
		respondError(w, http.StatusInternalServerError, "IMPORT_ERROR", "Failed to reload dataset", err)
		return
	}

	metrics.DataReloadsTotal.WithLabelValues("success").Inc()
	metrics.OrdersLoaded.Set(float64(count))
	logging.Info().Int64("orders", count).Msg("dataset regenerated and reloaded")

	respondSuccess(w, map[string]interface{}{
		"orders":   count,
		"users":    len(ds.Users),
		"products": len(ds.Products),
	}, start)
}
