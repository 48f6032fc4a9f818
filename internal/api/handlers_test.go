// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/agent"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/analyzer"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/generator"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
		Database: config.DatabaseConfig{
			Path:      filepath.Join(t.TempDir(), "api_test.duckdb"),
			MaxMemory: "512MB",
		},
		Data: config.DataConfig{
			Dir:           t.TempDir(),
			Orders:        400,
			Users:         40,
			Products:      25,
			DateRangeDays: 45,
			RefundRate:    0.15,
			Categories:    []string{"电子产品", "服装", "家居"},
			Channels:      []string{"直播", "搜索", "推荐", "活动", "复购"},
			Cities:        []string{"北京", "上海", "广州"},
		},
		RFM: config.RFMConfig{
			Clusters: 4,
			Labels:   []string{"重要价值客户", "潜力发展客户", "一般维护客户", "流失风险客户"},
			Strategies: map[string]string{
				"重要价值客户": "提供专属权益,重点维护",
				"潜力发展客户": "精准营销,提升客单价",
				"一般维护客户": "定期触达,维持活跃",
				"流失风险客户": "发放召回优惠券",
			},
		},
		LLM: config.LLMConfig{Provider: "none", Timeout: 30 * time.Second},
	}
}

// newTestServer builds a fully wired API over a seeded store, with no
// language model configured.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := testConfig(t)

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ds := generator.NewAt(cfg.Data, now).Generate()
	if err := generator.WriteCSVs(ds, cfg.Data.Dir); err != nil {
		t.Fatalf("failed to write CSVs: %v", err)
	}
	if _, err := db.Reload(t.Context(), cfg.Data.Dir); err != nil {
		t.Fatalf("failed to load data: %v", err)
	}

	h := NewHandler(db, analyzer.New(db, cfg.RFM), agent.New(db, nil), cfg)
	srv := httptest.NewServer(NewRouter(h, &cfg.Server))
	t.Cleanup(srv.Close)
	return srv
}

func getEnvelope(t *testing.T, srv *httptest.Server, path string, wantStatus int) *models.APIResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status %d, want %d", path, resp.StatusCode, wantStatus)
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("GET %s decode: %v", path, err)
	}
	return &envelope
}

func dataMap(t *testing.T, envelope *models.APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", envelope.Data)
	}
	return m
}

func TestKPIEndpoint(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/kpi", http.StatusOK)
	if envelope.Status != "success" {
		t.Fatalf("status = %s, want success", envelope.Status)
	}

	kpi := dataMap(t, envelope)
	gmv, ok := kpi["gmv"].(float64)
	if !ok || gmv <= 0 {
		t.Errorf("gmv = %v, want positive number", kpi["gmv"])
	}
	refundRate, ok := kpi["refund_rate"].(float64)
	if !ok || refundRate < 0 || refundRate > 1 {
		t.Errorf("refund_rate = %v, want value in [0,1]", kpi["refund_rate"])
	}
}

func TestKPITrendEndpoint_InvalidDays(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/kpi/trend?days=500", http.StatusBadRequest)
	if envelope.Status != "error" || envelope.Error == nil {
		t.Fatalf("expected error envelope, got %+v", envelope)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error code = %s, want VALIDATION_ERROR", envelope.Error.Code)
	}
}

func TestFunnelEndpoint(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/funnel", http.StatusOK)
	funnel := dataMap(t, envelope)

	stages, ok := funnel["stages"].([]interface{})
	if !ok || len(stages) != 4 {
		t.Fatalf("stages = %v, want 4 entries", funnel["stages"])
	}
	first, ok := stages[0].(map[string]interface{})
	if !ok || first["stage"] != "浏览" {
		t.Errorf("first stage = %v, want 浏览", stages[0])
	}
}

func TestForecastEndpoint(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/forecast?days=7", http.StatusOK)
	points, ok := envelope.Data.([]interface{})
	if !ok || len(points) == 0 {
		t.Fatalf("data = %T, want non-empty array", envelope.Data)
	}

	last, ok := points[len(points)-1].(map[string]interface{})
	if !ok || last["type"] != "forecast" {
		t.Errorf("last point = %v, want forecast type", points[len(points)-1])
	}
}

func TestRFMEndpoint(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/rfm", http.StatusOK)
	rfm := dataMap(t, envelope)

	summaries, ok := rfm["summaries"].([]interface{})
	if !ok || len(summaries) == 0 {
		t.Fatalf("summaries = %v, want non-empty", rfm["summaries"])
	}

	envelope = getEnvelope(t, srv, "/api/rfm?clusters=99", http.StatusBadRequest)
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR for clusters=99, got %+v", envelope.Error)
	}
}

func TestTopUsersEndpoint(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/users/top?limit=5", http.StatusOK)
	users, ok := envelope.Data.([]interface{})
	if !ok || len(users) != 5 {
		t.Fatalf("data = %v, want 5 users", envelope.Data)
	}

	envelope = getEnvelope(t, srv, "/api/users/top?limit=0", http.StatusBadRequest)
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR for limit=0, got %+v", envelope.Error)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/api/schema", http.StatusOK)
	tables, ok := envelope.Data.([]interface{})
	if !ok || len(tables) != 4 {
		t.Fatalf("data = %v, want 4 tables", envelope.Data)
	}
}

func TestChatEndpoint_Fallback(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(models.ChatRequest{Question: "找出消费最高的用户"})
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/chat: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	chat := dataMap(t, &envelope)

	sql, _ := chat["sql"].(string)
	if sql == "" {
		t.Error("expected fallback SQL in response")
	}
	data, ok := chat["data"].([]interface{})
	if !ok || len(data) == 0 {
		t.Error("expected query results in response")
	}
	if chat["insight"] == "" {
		t.Error("expected canned insight in response")
	}
}

func TestChatEndpoint_EmptyQuestion(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader([]byte(`{"question":""}`)))
	if err != nil {
		t.Fatalf("POST /api/chat: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	envelope := getEnvelope(t, srv, "/health", http.StatusOK)
	health := dataMap(t, envelope)
	if health["status"] != "ok" {
		t.Errorf("health status = %v, want ok", health["status"])
	}
	if health["llm_enabled"] != false {
		t.Errorf("llm_enabled = %v, want false", health["llm_enabled"])
	}

	envelope = getEnvelope(t, srv, "/health/ready", http.StatusOK)
	ready := dataMap(t, envelope)
	if ready["status"] != "ready" {
		t.Errorf("ready status = %v, want ready", ready["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d, want 200", resp.StatusCode)
	}
}

func TestDataReloadEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/data/reload", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/data/reload: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	result := dataMap(t, &envelope)
	if orders, ok := result["orders"].(float64); !ok || orders != 400 {
		t.Errorf("orders = %v, want 400", result["orders"])
	}
}
