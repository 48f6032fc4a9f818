// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// OrderAggregates holds the raw counts the analyzer derives KPIs from.
type OrderAggregates struct {
	TotalOrders     int64
	PaidOrders      int64
	RefundedOrders  int64
	UniqueUsers     int64
	GMV             float64
	Profit          float64
	RepeatUsers     int64 // users with >1 completed order
	PurchasingUsers int64 // users with >=1 completed order
}

// RFMFeature is one user's raw recency/frequency/monetary values over
// completed orders. Recency is measured in days against the day after
// the most recent completed order in the table.
type RFMFeature struct {
	UserID    string
	Recency   int
	Frequency int64
	Monetary  float64
}

// DailySales is one day of completed-order revenue, the forecast
// input series.
type DailySales struct {
	Date   time.Time
	Sales  float64
	Orders int64
}

// OrderAggregates computes the scalar aggregates over the orders table
// in two queries: one over orders, one over per-user completed counts.
func (db *DB) OrderAggregates(ctx context.Context) (_ *OrderAggregates, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("order_aggregates")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	agg := &OrderAggregates{}

	var gmv, profit sql.NullFloat64
	err = db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = '已完成'),
			COUNT(*) FILTER (WHERE status = '已退款'),
			COUNT(DISTINCT user_id),
			SUM(amount) FILTER (WHERE status = '已完成'),
			SUM(profit) FILTER (WHERE status = '已完成')
		FROM orders`).Scan(
		&agg.TotalOrders, &agg.PaidOrders, &agg.RefundedOrders,
		&agg.UniqueUsers, &gmv, &profit)
	if err != nil {
		return nil, &QueryError{SQL: "order aggregates", Err: err}
	}
	agg.GMV = gmv.Float64
	agg.Profit = profit.Float64

	err = db.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(COUNT(*) FILTER (WHERE cnt > 1), 0),
			COALESCE(COUNT(*), 0)
		FROM (
			SELECT user_id, COUNT(*) AS cnt
			FROM orders
			WHERE status = '已完成'
			GROUP BY user_id
		)`).Scan(&agg.RepeatUsers, &agg.PurchasingUsers)
	if err != nil {
		return nil, &QueryError{SQL: "repeat purchase aggregates", Err: err}
	}

	return agg, nil
}

// RFMFeatures computes per-user recency/frequency/monetary over
// completed orders.
func (db *DB) RFMFeatures(ctx context.Context) (_ []RFMFeature, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("rfm_features")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		WITH paid AS (
			SELECT user_id, order_date, amount
			FROM orders
			WHERE status = '已完成'
		)
		SELECT
			user_id,
			DATE_DIFF('day', MAX(order_date), (SELECT MAX(order_date) + INTERVAL 1 DAY FROM paid)),
			COUNT(*),
			SUM(amount)
		FROM paid
		GROUP BY user_id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var features []RFMFeature
	for rows.Next() {
		var f RFMFeature
		if err := rows.Scan(&f.UserID, &f.Recency, &f.Frequency, &f.Monetary); err != nil {
			return nil, fmt.Errorf("failed to scan RFM feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return features, nil
}

// DailySales returns the per-day completed-order revenue series in
// ascending date order, the input for trend fitting.
func (db *DB) DailySales(ctx context.Context) (_ []DailySales, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("daily_sales")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT DATE_TRUNC('day', order_date) AS day, SUM(amount), COUNT(*)
		FROM orders
		WHERE status = '已完成'
		GROUP BY day
		ORDER BY day`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var series []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.Sales, &d.Orders); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		series = append(series, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return series, nil
}

// GetDailyStats returns per-day order aggregates for the most recent
// N days relative to the newest order.
func (db *DB) GetDailyStats(ctx context.Context, days int) (_ []models.DailyStat, err error) {
	if days < 1 {
		return nil, &ValidationError{Field: "days", Message: "must be at least 1"}
	}

	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("daily_stats")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT
			DATE_TRUNC('day', order_date) AS day,
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE status = '已完成'), 0),
			COALESCE(SUM(profit) FILTER (WHERE status = '已完成'), 0),
			COUNT(DISTINCT user_id),
			COALESCE(AVG(amount), 0),
			COUNT(*) FILTER (WHERE status = '已退款') * 1.0 / COUNT(*)
		FROM orders
		WHERE order_date >= (SELECT MAX(order_date) FROM orders) - ? * INTERVAL 1 DAY
		GROUP BY day
		ORDER BY day`

	rows, err := db.conn.QueryContext(ctx, query, days)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []models.DailyStat
	for rows.Next() {
		var s models.DailyStat
		if err := rows.Scan(&s.Date, &s.OrderCount, &s.GMV, &s.Profit,
			&s.UniqueUsers, &s.AvgOrderValue, &s.RefundRate); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return stats, nil
}

// GetCategoryStats aggregates orders per category, highest GMV first.
func (db *DB) GetCategoryStats(ctx context.Context) (_ []models.CategoryStat, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("category_stats")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT
			category,
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE status = '已完成'), 0) AS gmv,
			COALESCE(SUM(profit) FILTER (WHERE status = '已完成'), 0),
			COUNT(*) FILTER (WHERE status = '已退款') * 1.0 / COUNT(*)
		FROM orders
		GROUP BY category
		ORDER BY gmv DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []models.CategoryStat
	for rows.Next() {
		var s models.CategoryStat
		if err := rows.Scan(&s.Category, &s.OrderCount, &s.GMV, &s.Profit, &s.RefundRate); err != nil {
			return nil, fmt.Errorf("failed to scan category stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return stats, nil
}

// GetChannelStats aggregates orders per channel, highest GMV first.
func (db *DB) GetChannelStats(ctx context.Context) (_ []models.ChannelStat, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("channel_stats")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT
			channel,
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE status = '已完成'), 0) AS gmv,
			COUNT(DISTINCT user_id),
			COALESCE(AVG(amount), 0)
		FROM orders
		GROUP BY channel
		ORDER BY gmv DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []models.ChannelStat
	for rows.Next() {
		var s models.ChannelStat
		if err := rows.Scan(&s.Channel, &s.OrderCount, &s.GMV, &s.UniqueUsers, &s.AvgOrderValue); err != nil {
			return nil, fmt.Errorf("failed to scan channel stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return stats, nil
}

// GetCityStats aggregates orders per city, highest GMV first.
func (db *DB) GetCityStats(ctx context.Context) (_ []models.CityStat, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("city_stats")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT
			city,
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE status = '已完成'), 0) AS gmv,
			COUNT(DISTINCT user_id),
			COUNT(*) FILTER (WHERE status = '已退款') * 1.0 / COUNT(*)
		FROM orders
		GROUP BY city
		ORDER BY gmv DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []models.CityStat
	for rows.Next() {
		var s models.CityStat
		if err := rows.Scan(&s.City, &s.OrderCount, &s.GMV, &s.UniqueUsers, &s.RefundRate); err != nil {
			return nil, fmt.Errorf("failed to scan city stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return stats, nil
}

// GetTopUsers returns the highest-spending users by completed-order
// amount.
func (db *DB) GetTopUsers(ctx context.Context, limit int) (_ []models.TopUser, err error) {
	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Message: "must be at least 1"}
	}

	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("top_users")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT user_id, SUM(amount) AS total_spend, COUNT(*), MAX(order_date)
		FROM orders
		WHERE status = '已完成'
		GROUP BY user_id
		ORDER BY total_spend DESC
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []models.TopUser
	for rows.Next() {
		var u models.TopUser
		if err := rows.Scan(&u.UserID, &u.TotalSpend, &u.OrderCount, &u.LastOrder); err != nil {
			return nil, fmt.Errorf("failed to scan top user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return users, nil
}

// GetTopProducts returns the best-selling products by completed-order
// revenue.
func (db *DB) GetTopProducts(ctx context.Context, limit int) (_ []models.TopProduct, err error) {
	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Message: "must be at least 1"}
	}

	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("top_products")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT product_id, SUM(amount) AS revenue, SUM(quantity), COUNT(*)
		FROM orders
		WHERE status = '已完成'
		GROUP BY product_id
		ORDER BY revenue DESC
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var products []models.TopProduct
	for rows.Next() {
		var p models.TopProduct
		if err := rows.Scan(&p.ProductID, &p.Revenue, &p.Quantity, &p.OrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return products, nil
}

// GetFunnel returns the funnel stage counts ordered by the conversion
// sequence. Stages missing from the table appear with a zero count.
func (db *DB) GetFunnel(ctx context.Context) (_ []models.FunnelRecord, err error) {
	db.reloadMu.RLock()
	defer db.reloadMu.RUnlock()
	defer instrument("funnel")(&err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT stage, SUM(count), MAX(date) FROM funnel GROUP BY stage`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	byStage := make(map[string]models.FunnelRecord)
	for rows.Next() {
		var r models.FunnelRecord
		var date sql.NullTime
		if err := rows.Scan(&r.Stage, &r.Count, &date); err != nil {
			return nil, fmt.Errorf("failed to scan funnel record: %w", err)
		}
		r.Date = date.Time
		byStage[r.Stage] = r
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}

	records := make([]models.FunnelRecord, len(models.FunnelStages))
	for i, stage := range models.FunnelStages {
		if r, ok := byStage[stage]; ok {
			records[i] = r
		} else {
			records[i] = models.FunnelRecord{Stage: stage}
		}
	}
	return records, nil
}
