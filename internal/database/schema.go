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

// tables lists the managed tables in load order.
var tables = []string{"users", "products", "orders", "funnel"}

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables. Idempotent.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id VARCHAR PRIMARY KEY,
			username VARCHAR,
			register_date TIMESTAMP,
			city VARCHAR,
			age INTEGER,
			gender VARCHAR,
			vip_level INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id VARCHAR PRIMARY KEY,
			product_name VARCHAR,
			category VARCHAR,
			price DOUBLE,
			cost DOUBLE,
			stock INTEGER,
			rating DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id VARCHAR PRIMARY KEY,
			user_id VARCHAR,
			product_id VARCHAR,
			quantity INTEGER,
			order_date TIMESTAMP,
			status VARCHAR,
			channel VARCHAR,
			discount DOUBLE,
			price DOUBLE,
			cost DOUBLE,
			category VARCHAR,
			amount DOUBLE,
			profit DOUBLE,
			city VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS funnel (
			stage VARCHAR,
			count BIGINT,
			date TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Schema returns the column names of every managed table, used by
// GET /api/schema and by the agent's prompt builder.
func (db *DB) Schema(ctx context.Context) ([]models.TableSchema, error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	schemas := make([]models.TableSchema, 0, len(tables))
	for _, table := range tables {
		rows, err := db.conn.QueryContext(ctx,
			`SELECT column_name FROM information_schema.columns
			 WHERE table_name = ? ORDER BY ordinal_position`, table)
		if err != nil {
			return nil, &QueryError{SQL: "information_schema.columns", Err: err}
		}

		var cols []string
		for rows.Next() {
			var col string
			if err := rows.Scan(&col); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan column name: %w", err)
			}
			cols = append(cols, col)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to iterate columns: %w", err)
		}
		_ = rows.Close()

		schemas = append(schemas, models.TableSchema{Table: table, Columns: cols})
	}
	return schemas, nil
}
