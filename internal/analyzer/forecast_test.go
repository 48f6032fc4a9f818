// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
)

func TestDeriveForecast_LinearSeries(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var series []database.DailySales
	// Perfectly linear: 100, 110, ..., 190.
	for i := 0; i < 10; i++ {
		series = append(series, database.DailySales{
			Date:   base.AddDate(0, 0, i),
			Sales:  100 + 10*float64(i),
			Orders: 5,
		})
	}

	points := deriveForecast(series, 3)

	if len(points) != 13 {
		t.Fatalf("got %d points, want 13", len(points))
	}
	for i := 0; i < 10; i++ {
		if points[i].Type != "actual" {
			t.Errorf("point %d type = %s, want actual", i, points[i].Type)
		}
	}
	for i := 10; i < 13; i++ {
		if points[i].Type != "forecast" {
			t.Errorf("point %d type = %s, want forecast", i, points[i].Type)
		}
	}

	// The fitted line continues exactly: day 10 should be 200.
	if math.Abs(points[10].Sales-200) > 0.01 {
		t.Errorf("first forecast = %f, want 200", points[10].Sales)
	}
	if points[10].Date != "2026-08-11" {
		t.Errorf("first forecast date = %s, want 2026-08-11", points[10].Date)
	}
	if math.Abs(points[12].Sales-220) > 0.01 {
		t.Errorf("third forecast = %f, want 220", points[12].Sales)
	}
}

func TestDeriveForecast_NegativeProjectionFloored(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	series := []database.DailySales{
		{Date: base, Sales: 100, Orders: 2},
		{Date: base.AddDate(0, 0, 1), Sales: 10, Orders: 1},
	}

	points := deriveForecast(series, 5)

	for _, p := range points {
		if p.Sales < 0 {
			t.Errorf("sales %f on %s below zero", p.Sales, p.Date)
		}
		if p.Orders < 0 {
			t.Errorf("orders %f on %s below zero", p.Orders, p.Date)
		}
	}
}

func TestDeriveForecast_SinglePoint(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	series := []database.DailySales{{Date: base, Sales: 500, Orders: 4}}

	points := deriveForecast(series, 2)

	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	// No slope information: projection holds the observed level.
	if points[1].Sales != 500 || points[2].Sales != 500 {
		t.Errorf("flat projection expected, got %f and %f", points[1].Sales, points[2].Sales)
	}
	if points[1].Orders != 4 {
		t.Errorf("projected orders = %f, want 4", points[1].Orders)
	}
}

func TestDeriveForecast_Empty(t *testing.T) {
	points := deriveForecast(nil, 7)
	if len(points) != 0 {
		t.Errorf("empty series must yield no points, got %d", len(points))
	}
}
