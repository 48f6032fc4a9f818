// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package analyzer

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

const (
	defaultForecastDays = 7
	maxForecastDays     = 90
)

// Forecast fits an ordinary least-squares line through the daily
// completed-order revenue series and projects it forward. The history
// is returned alongside the projection so charts can overlay both.
// Forecast sales are floored at zero; future order counts are scaled
// from the historical sales-per-order ratio.
func (a *Analyzer) Forecast(ctx context.Context, days int) ([]models.ForecastPoint, error) {
	if days < 1 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	series, err := a.db.DailySales(ctx)
	if err != nil {
		return nil, err
	}
	return deriveForecast(series, days), nil
}

func deriveForecast(series []database.DailySales, days int) []models.ForecastPoint {
	points := make([]models.ForecastPoint, 0, len(series)+days)
	for _, d := range series {
		points = append(points, models.ForecastPoint{
			Date:   d.Date.Format("2006-01-02"),
			Sales:  round2(d.Sales),
			Orders: float64(d.Orders),
			Type:   "actual",
		})
	}
	if len(series) == 0 {
		return points
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	var sumOrders float64
	for i, d := range series {
		xs[i] = float64(i)
		ys[i] = d.Sales
		sumOrders += float64(d.Orders)
	}

	// With a single observation there is no slope; hold the level flat.
	var alpha, beta float64
	if len(series) >= 2 {
		alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	} else {
		alpha = ys[0]
	}

	meanSales := stat.Mean(ys, nil)
	meanOrders := sumOrders / float64(len(series))

	last := series[len(series)-1].Date
	for i := 1; i <= days; i++ {
		x := float64(len(series) - 1 + i)
		sales := alpha + beta*x
		if sales < 0 {
			sales = 0
		}
		orders := 0.0
		if meanSales > 0 {
			orders = sales / meanSales * meanOrders
		}
		points = append(points, models.ForecastPoint{
			Date:   last.AddDate(0, 0, i).Format("2006-01-02"),
			Sales:  round2(sales),
			Orders: round1(orders),
			Type:   "forecast",
		})
	}
	return points
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
