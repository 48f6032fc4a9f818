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

// OrderFilter narrows GetOrders results. All fields are optional and
// combine with AND. Zero Limit means no limit.
type OrderFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Category  string
	City      string
	Limit     int
	Offset    int
}

// Validate checks the filter before any SQL is issued.
func (f *OrderFilter) Validate() error {
	if f.Limit < 0 {
		return &ValidationError{Field: "limit", Message: "must be non-negative"}
	}
	if f.Offset < 0 {
		return &ValidationError{Field: "offset", Message: "must be non-negative"}
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return &ValidationError{Field: "end_date", Message: "must not precede start_date"}
	}
	return nil
}

// buildConditions returns the WHERE clause fragment (without leading
// "WHERE") and its arguments.
func (f *OrderFilter) buildConditions() (string, []interface{}) {
	clause := ""
	args := []interface{}{}

	if f.StartDate != nil {
		clause += " AND order_date >= ?"
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		clause += " AND order_date <= ?"
		args = append(args, *f.EndDate)
	}
	if f.Status != "" {
		clause += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Category != "" {
		clause += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.City != "" {
		clause += " AND city = ?"
		args = append(args, f.City)
	}
	return clause, args
}

// GetOrders returns orders matching the filter, most recent first.
func (db *DB) GetOrders(ctx context.Context, filter OrderFilter) (_ []models.Order, err error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("orders")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT order_id, user_id, product_id, quantity, order_date, status,
		channel, discount, price, cost, category, amount, profit, city
		FROM orders WHERE 1=1`
	conditions, args := filter.buildConditions()
	query += conditions + " ORDER BY order_date DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.ProductID, &o.Quantity, &o.OrderDate,
			&o.Status, &o.Channel, &o.Discount, &o.Price, &o.Cost, &o.Category,
			&o.Amount, &o.Profit, &o.City); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return orders, nil
}
