// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package analyzer

import (
	"context"
	"math"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// KPI computes the core scalar metrics. Rates with a zero denominator
// come back as 0, never NaN.
func (a *Analyzer) KPI(ctx context.Context) (*models.KPI, error) {
	agg, err := a.db.OrderAggregates(ctx)
	if err != nil {
		return nil, err
	}
	return deriveKPI(agg), nil
}

func deriveKPI(agg *database.OrderAggregates) *models.KPI {
	kpi := &models.KPI{
		GMV:         round2(agg.GMV),
		TotalOrders: agg.TotalOrders,
		PaidOrders:  agg.PaidOrders,
		Profit:      round2(agg.Profit),
		UniqueUsers: agg.UniqueUsers,
	}
	if agg.TotalOrders > 0 {
		kpi.RefundRate = round4(float64(agg.RefundedOrders) / float64(agg.TotalOrders))
	}
	if agg.PaidOrders > 0 {
		kpi.AOV = round2(agg.GMV / float64(agg.PaidOrders))
	}
	if agg.PurchasingUsers > 0 {
		kpi.RepeatRate = round4(float64(agg.RepeatUsers) / float64(agg.PurchasingUsers))
	}
	return kpi
}

// KPITrend compares completed-order revenue over the most recent N
// days against the N days before that, relative to the newest order.
func (a *Analyzer) KPITrend(ctx context.Context, days int) (*models.KPITrend, error) {
	if days < 1 {
		days = 7
	}

	series, err := a.db.DailySales(ctx)
	if err != nil {
		return nil, err
	}
	return deriveTrend(series, days), nil
}

func deriveTrend(series []database.DailySales, days int) *models.KPITrend {
	trend := &models.KPITrend{Days: days}
	if len(series) == 0 {
		return trend
	}

	maxDate := series[len(series)-1].Date
	recentStart := maxDate.AddDate(0, 0, -days)
	previousStart := recentStart.AddDate(0, 0, -days)

	for _, d := range series {
		switch {
		case d.Date.After(recentStart):
			trend.RecentGMV += d.Sales
		case d.Date.After(previousStart):
			trend.PreviousGMV += d.Sales
		}
	}

	trend.RecentGMV = round2(trend.RecentGMV)
	trend.PreviousGMV = round2(trend.PreviousGMV)
	if trend.PreviousGMV > 0 {
		trend.ChangePct = round2((trend.RecentGMV - trend.PreviousGMV) / trend.PreviousGMV * 100)
	}
	return trend
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
