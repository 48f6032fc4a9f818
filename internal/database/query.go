// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// maxRawQueryRows caps the rows returned by a raw Query so an
// unbounded SELECT cannot exhaust memory on the chat path.
const maxRawQueryRows = 1000

// Query executes arbitrary read SQL and returns a tabular result.
// Input is trusted per the process model (no sanitization beyond what
// the engine provides); malformed SQL surfaces as a QueryError.
func (db *DB) Query(ctx context.Context, query string) (result *models.QueryResult, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("raw")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}

	result = &models.QueryResult{Columns: cols, Rows: []map[string]interface{}{}}
	values := make([]interface{}, len(cols))
	scanArgs := make([]interface{}, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) >= maxRawQueryRows {
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return result, nil
}

// normalizeValue converts driver-specific values into
// JSON-serializable ones.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
