// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package models defines the domain entities and API response types
// shared across the generator, store, analyzer, agent and API layers.
package models

import "time"

// Order status values. Statuses are set at creation and never
// transitioned.
const (
	StatusCompleted = "已完成"
	StatusRefunded  = "已退款"
	StatusPending   = "待发货"
	StatusCancelled = "已取消"
)

// Funnel stages in conversion order.
const (
	StageView  = "浏览"
	StageCart  = "加购"
	StageOrder = "下单"
	StagePay   = "支付"
)

// FunnelStages lists the stages in their conversion order
// (view -> cart -> order -> pay).
var FunnelStages = []string{StageView, StageCart, StageOrder, StagePay}

// User is a registered customer.
type User struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	RegisterDate time.Time `json:"register_date"`
	City         string    `json:"city"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	VIPLevel     int       `json:"vip_level"`
}

// Product is static reference data.
type Product struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating"`
}

// Order references an existing user and product. Amount and profit are
// derived at generation time:
//
//	amount = price * quantity * (1 - discount)
//	profit = (price - cost) * quantity * (1 - discount)
type Order struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	OrderDate time.Time `json:"order_date"`
	Status    string    `json:"status"`
	Channel   string    `json:"channel"`
	Discount  float64   `json:"discount"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Profit    float64   `json:"profit"`
	City      string    `json:"city"`
}

// FunnelRecord is an aggregated per-stage event count, not linked to
// individual orders.
type FunnelRecord struct {
	Stage string    `json:"stage"`
	Count int64     `json:"count"`
	Date  time.Time `json:"date"`
}
