// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
)

// webRoot is the directory serving the dashboard's static assets.
const webRoot = "web"

// NewRouter wires all routes and middleware.
func NewRouter(h *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health probes stay outside rate limiting so orchestrators can
	// poll freely.
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(PrometheusMetrics())

		r.Get("/kpi", h.KPI)
		r.Get("/kpi/trend", h.KPITrend)
		r.Get("/rfm", h.RFM)
		r.Get("/funnel", h.Funnel)
		r.Get("/forecast", h.Forecast)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/daily", h.DailyStats)
			r.Get("/category", h.CategoryStats)
			r.Get("/channel", h.ChannelStats)
			r.Get("/city", h.CityStats)
		})

		r.Get("/users/top", h.TopUsers)
		r.Get("/products/top", h.TopProducts)
		r.Get("/schema", h.Schema)

		r.Post("/chat", h.Chat)
		r.Post("/data/reload", h.ReloadData)
	})

	// Dashboard static assets at the root.
	r.Handle("/*", http.FileServer(http.Dir(webRoot)))

	return r
}
