// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/logging"
)

// csvFiles maps each managed table to its CSV file name within the
// data directory. Column order in the CSVs matches the table schema.
var csvFiles = map[string]string{
	"users":    "users.csv",
	"products": "products.csv",
	"orders":   "orders.csv",
	"funnel":   "funnel.csv",
}

// LoadCSV loads the four tables from CSVs in dir, skipping the load
// when the orders table already has rows. Returns the number of orders
// in the database after the call.
func (db *DB) LoadCSV(ctx context.Context, dir string) (int64, error) {
	count, err := db.CountOrders(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Info().Int64("orders", count).Msg("database already loaded, skipping CSV load")
		return count, nil
	}
	return db.Reload(ctx, dir)
}

// Reload replaces all table contents from the CSVs in dir. The whole
// load runs in one transaction: any failure rolls back, leaving the
// prior tables intact. Reload is serialized against in-flight reads.
func (db *DB) Reload(ctx context.Context, dir string) (int64, error) {
	db.reloadMu.Lock()
	defer db.reloadMu.Unlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// Fail before touching any table when a source file is missing.
	for table, name := range csvFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return 0, &ImportError{Table: table, Path: path, Err: err}
		}
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reload transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range tables {
		path := filepath.Join(dir, csvFiles[table])

		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return 0, fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("COPY %s FROM ? (FORMAT CSV, HEADER)", table), path); err != nil {
			return 0, &ImportError{Table: table, Path: path, Err: err}
		}
	}

	var count int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count loaded orders: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reload: %w", err)
	}

	logging.Info().Str("dir", dir).Int64("orders", count).Msg("tables reloaded from CSV")
	return count, nil
}

// ImportCSV appends rows from a CSV file into one table and returns
// the number of rows imported. Schema mismatches surface as
// ImportError.
func (db *DB) ImportCSV(ctx context.Context, table, path string) (int64, error) {
	if !isManagedTable(table) {
		return 0, &ValidationError{Field: "table", Message: fmt.Sprintf("unknown table %q", table)}
	}

	db.reloadMu.Lock()
	defer db.reloadMu.Unlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	before, err := db.countRows(ctx, table)
	if err != nil {
		return 0, err
	}

	if _, err := db.conn.ExecContext(ctx,
		fmt.Sprintf("COPY %s FROM ? (FORMAT CSV, HEADER)", table), path); err != nil {
		return 0, &ImportError{Table: table, Path: path, Err: err}
	}

	after, err := db.countRows(ctx, table)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

// ExportCSV writes one table to a CSV file and returns the number of
// rows exported.
func (db *DB) ExportCSV(ctx context.Context, table, path string) (int64, error) {
	if !isManagedTable(table) {
		return 0, &ValidationError{Field: "table", Message: fmt.Sprintf("unknown table %q", table)}
	}

	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	count, err := db.countRows(ctx, table)
	if err != nil {
		return 0, err
	}

	if _, err := db.conn.ExecContext(ctx,
		fmt.Sprintf("COPY %s TO ? (FORMAT CSV, HEADER)", table), path); err != nil {
		return 0, &QueryError{SQL: "COPY TO", Err: err}
	}
	return count, nil
}

// CountOrders returns the number of rows in the orders table.
func (db *DB) CountOrders(ctx context.Context) (int64, error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.countRows(ctx, "orders")
}

func (db *DB) countRows(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, &QueryError{SQL: "COUNT", Err: err}
	}
	return count, nil
}

func isManagedTable(table string) bool {
	_, ok := csvFiles[table]
	return ok
}
