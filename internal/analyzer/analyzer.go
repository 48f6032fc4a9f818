// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package analyzer computes the business metrics served by the API:
// core KPIs, RFM customer segmentation, funnel conversion rates and a
// linear sales forecast. All results are derived from the store on
// each request; nothing here is authoritative state.
package analyzer

import (
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
)

// Analyzer derives metrics from the order store.
type Analyzer struct {
	db  *database.DB
	rfm config.RFMConfig
}

// New creates an Analyzer reading from db, segmenting users per the
// RFM configuration.
func New(db *database.DB, rfm config.RFMConfig) *Analyzer {
	return &Analyzer{db: db, rfm: rfm}
}
