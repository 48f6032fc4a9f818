// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package database

import "fmt"

// QueryError wraps a SQL execution failure (malformed SQL or engine
// failure). Surfaced to API callers per the error policy.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ImportError wraps a CSV load failure (missing file or schema
// mismatch). A reload that hits an ImportError leaves the prior tables
// intact.
type ImportError struct {
	Table string
	Path  string
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import into %s from %s failed: %v", e.Table, e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// ValidationError reports a bad filter or parameter before any SQL is
// issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
