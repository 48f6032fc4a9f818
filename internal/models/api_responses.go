// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package models

import "time"

// APIResponse is the standardized envelope used by all HTTP endpoints.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only when Status is "error".
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries a machine-readable code and a human-readable
// message. Codes: VALIDATION_ERROR, QUERY_ERROR, IMPORT_ERROR,
// PROVIDER_ERROR, INTERNAL_ERROR, NOT_FOUND.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question string `json:"question" validate:"required,min=1,max=2000"`
}

// ChatResponse is the agent's answer to one question. SQL is always
// set when a query was produced (provider or fallback). Data is the
// tabular query result. Insight is empty when narration was skipped or
// failed; Error is set when SQL execution failed.
type ChatResponse struct {
	Question string                   `json:"question"`
	SQL      string                   `json:"sql,omitempty"`
	Data     []map[string]interface{} `json:"data,omitempty"`
	Insight  string                   `json:"insight,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// QueryResult is a generic tabular result from a raw SQL query.
type QueryResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// TableSchema describes one table's columns, used both by
// GET /api/schema and by the agent's prompt builder.
type TableSchema struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}
