// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package models

import "time"

// KPI holds the core scalar business metrics derived from the order
// table. RefundRate and RepeatRate are fractions in [0, 1].
type KPI struct {
	GMV         float64 `json:"gmv"`
	TotalOrders int64   `json:"total_orders"`
	PaidOrders  int64   `json:"paid_orders"`
	RefundRate  float64 `json:"refund_rate"`
	AOV         float64 `json:"aov"`
	Profit      float64 `json:"profit"`
	UniqueUsers int64   `json:"unique_users"`
	RepeatRate  float64 `json:"repeat_rate"`
}

// KPITrend compares GMV over the most recent N days against the N days
// before that. ChangePct is 0 when the previous window had no revenue.
type KPITrend struct {
	Days        int     `json:"days"`
	RecentGMV   float64 `json:"recent_gmv"`
	PreviousGMV float64 `json:"previous_gmv"`
	ChangePct   float64 `json:"gmv_change"`
}

// RFMRecord is one user's recency/frequency/monetary profile with its
// assigned cluster and label. Derived, ephemeral: recomputed on each
// analysis request.
type RFMRecord struct {
	UserID    string  `json:"user_id"`
	Recency   int     `json:"recency"`
	Frequency int64   `json:"frequency"`
	Monetary  float64 `json:"monetary"`
	Cluster   int     `json:"cluster"`
	Label     string  `json:"label"`
	Strategy  string  `json:"strategy,omitempty"`
}

// RFMClusterSummary aggregates one labeled cluster.
type RFMClusterSummary struct {
	Label        string  `json:"label"`
	Users        int     `json:"users"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
	SharePct     float64 `json:"share_pct"`
	Strategy     string  `json:"strategy,omitempty"`
}

// RFMResult is the full segmentation output.
type RFMResult struct {
	Records   []RFMRecord         `json:"records"`
	Summaries []RFMClusterSummary `json:"summaries"`
	Clusters  int                 `json:"clusters"`
}

// FunnelStageResult is one funnel stage with its conversion rate from
// the previous stage. ConversionRate is 1 for the first stage and 0
// when the upstream stage count is zero (defined, never an error).
type FunnelStageResult struct {
	Stage          string  `json:"stage"`
	Count          int64   `json:"count"`
	ConversionRate float64 `json:"conversion_rate"`
}

// FunnelResult is the funnel analysis output. OverallRate is
// count(last)/count(first), or 0 when the first stage is empty.
type FunnelResult struct {
	Stages      []FunnelStageResult `json:"stages"`
	OverallRate float64             `json:"overall_rate"`
}

// ForecastPoint is one day of actual or projected sales. Date uses
// the yyyy-mm-dd form; Type is "actual" for history and "forecast"
// for projections.
type ForecastPoint struct {
	Date   string  `json:"date"`
	Sales  float64 `json:"sales"`
	Orders float64 `json:"orders"`
	Type   string  `json:"type"`
}

// DailyStat is one day of order aggregates.
type DailyStat struct {
	Date          time.Time `json:"date"`
	OrderCount    int64     `json:"order_count"`
	GMV           float64   `json:"gmv"`
	Profit        float64   `json:"profit"`
	UniqueUsers   int64     `json:"unique_users"`
	AvgOrderValue float64   `json:"avg_order_value"`
	RefundRate    float64   `json:"refund_rate"`
}

// CategoryStat aggregates orders for one product category.
type CategoryStat struct {
	Category   string  `json:"category"`
	OrderCount int64   `json:"order_count"`
	GMV        float64 `json:"gmv"`
	Profit     float64 `json:"profit"`
	RefundRate float64 `json:"refund_rate"`
}

// ChannelStat aggregates orders for one acquisition channel.
type ChannelStat struct {
	Channel       string  `json:"channel"`
	OrderCount    int64   `json:"order_count"`
	GMV           float64 `json:"gmv"`
	UniqueUsers   int64   `json:"unique_users"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// CityStat aggregates orders for one city.
type CityStat struct {
	City        string  `json:"city"`
	OrderCount  int64   `json:"order_count"`
	GMV         float64 `json:"gmv"`
	UniqueUsers int64   `json:"unique_users"`
	RefundRate  float64 `json:"refund_rate"`
}

// TopUser is one row of the top-spender ranking.
type TopUser struct {
	UserID     string    `json:"user_id"`
	TotalSpend float64   `json:"total_spend"`
	OrderCount int64     `json:"order_count"`
	LastOrder  time.Time `json:"last_order"`
}

// TopProduct is one row of the top-seller ranking.
type TopProduct struct {
	ProductID  string  `json:"product_id"`
	Revenue    float64 `json:"revenue"`
	Quantity   int64   `json:"quantity"`
	OrderCount int64   `json:"order_count"`
}
