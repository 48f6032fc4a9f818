// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package analyzer

import (
	"context"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// Funnel reports totals and step conversion rates for the fixed stage
// sequence 浏览→加购→下单→支付.
func (a *Analyzer) Funnel(ctx context.Context) (*models.FunnelResult, error) {
	records, err := a.db.GetFunnel(ctx)
	if err != nil {
		return nil, err
	}
	return deriveFunnel(records), nil
}

// deriveFunnel computes conversion relative to the previous stage. The
// first stage converts at 1.0; an empty upstream stage converts at 0.
func deriveFunnel(records []models.FunnelRecord) *models.FunnelResult {
	result := &models.FunnelResult{Stages: make([]models.FunnelStageResult, 0, len(records))}
	for i, r := range records {
		rate := 1.0
		if i > 0 {
			prev := records[i-1].Count
			if prev > 0 {
				rate = float64(r.Count) / float64(prev)
			} else {
				rate = 0
			}
		}
		result.Stages = append(result.Stages, models.FunnelStageResult{
			Stage:          r.Stage,
			Count:          r.Count,
			ConversionRate: round4(rate),
		})
	}

	if len(records) > 0 && records[0].Count > 0 {
		last := records[len(records)-1].Count
		result.OverallRate = round4(float64(last) / float64(records[0].Count))
	}
	return result
}
