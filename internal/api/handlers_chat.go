// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/metrics"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// maxChatBodyBytes caps the chat request body.
const maxChatBodyBytes = 64 << 10

// Chat serves POST /api/chat: natural-language data analysis. The
// response is always 200 with the pipeline outcome embedded, except
// for malformed requests.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resp := h.agent.Chat(r.Context(), req.Question)

	switch {
	case resp.Error != "":
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
	case h.agent.HasProvider():
		metrics.ChatRequestsTotal.WithLabelValues("answered").Inc()
	default:
		metrics.ChatRequestsTotal.WithLabelValues("fallback").Inc()
	}

	respondSuccess(w, resp, start)
}
