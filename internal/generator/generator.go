// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package generator produces the synthetic retail dataset: users,
// products, orders and funnel stage counts. Generation is seeded so
// demo output is stable across runs. Referential integrity is
// guaranteed: every order references a generated user and product, and
// amount/profit are derived from the product's price and cost.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// Fixed seeds per entity type keep the dataset reproducible while
// decoupling the random streams from each other.
const (
	userSeed    = 42
	productSeed = 43
	orderSeed   = 44
	funnelSeed  = 45
)

// funnelSessions is the synthetic view count the funnel starts from.
const funnelSessions = 50000

// hourWeights models the intraday ordering pattern: quiet overnight,
// growing through the morning, a dip after lunch, evening peak.
var hourWeights = []float64{
	0.01, 0.005, 0.005, 0.005, 0.01, 0.015, // 0-5
	0.02, 0.03, 0.04, 0.05, 0.055, 0.05, // 6-11
	0.045, 0.05, 0.055, 0.06, 0.065, 0.07, // 12-17
	0.075, 0.08, 0.085, 0.075, 0.05, 0.025, // 18-23
}

// Generator builds synthetic datasets from the configured volumes.
type Generator struct {
	cfg config.DataConfig
	now time.Time
}

// New creates a Generator. The reference time anchors the generated
// date window: orders span [now - date_range_days, now].
func New(cfg config.DataConfig) *Generator {
	return &Generator{cfg: cfg, now: time.Now()}
}

// NewAt creates a Generator with a fixed reference time, used by tests
// that need a stable date window.
func NewAt(cfg config.DataConfig, now time.Time) *Generator {
	return &Generator{cfg: cfg, now: now}
}

// Dataset is a complete generated dataset with referential integrity
// across its tables.
type Dataset struct {
	Users    []models.User
	Products []models.Product
	Orders   []models.Order
	Funnel   []models.FunnelRecord
}

// Generate builds the full dataset.
func (g *Generator) Generate() *Dataset {
	users := g.Users(g.cfg.Users)
	products := g.Products(g.cfg.Products)
	return &Dataset{
		Users:    users,
		Products: products,
		Orders:   g.Orders(g.cfg.Orders, users, products),
		Funnel:   g.Funnel(),
	}
}

// Users generates n users with registration dates spread evenly over
// the window ending at the reference time.
func (g *Generator) Users(n int) []models.User {
	rnd := rand.New(rand.NewSource(userSeed))
	users := make([]models.User, n)

	step := 2 * time.Hour
	start := g.now.Add(-time.Duration(n-1) * step)

	for i := range users {
		gender := "女"
		if rnd.Float64() < 0.45 {
			gender = "男"
		}
		users[i] = models.User{
			UserID:       fmt.Sprintf("U%05d", i+1),
			Username:     fmt.Sprintf("user_%d", i+1),
			RegisterDate: start.Add(time.Duration(i) * step),
			City:         pick(rnd, g.cfg.Cities),
			Age:          18 + rnd.Intn(42),
			Gender:       gender,
			VIPLevel:     weightedInt(rnd, []float64{0.5, 0.3, 0.15, 0.05}),
		}
	}
	return users
}

// Products generates n products. Cost is 30-70% of price.
func (g *Generator) Products(n int) []models.Product {
	rnd := rand.New(rand.NewSource(productSeed))
	products := make([]models.Product, n)

	for i := range products {
		price := round2(10 + rnd.Float64()*1990)
		products[i] = models.Product{
			ProductID:   fmt.Sprintf("P%04d", i+1),
			ProductName: fmt.Sprintf("商品_%d", i+1),
			Category:    pick(rnd, g.cfg.Categories),
			Price:       price,
			Cost:        round2(price * (0.3 + rnd.Float64()*0.4)),
			Stock:       rnd.Intn(1000),
			Rating:      round1(3.5 + rnd.Float64()*1.5),
		}
	}
	return products
}

// Orders generates n orders against the given users and products.
// Every order references an existing user and product; amount and
// profit are derived from the product's price and cost. The configured
// refund rate is the expected fraction of refunded orders, applied as
// an independent draw per order.
func (g *Generator) Orders(n int, users []models.User, products []models.Product) []models.Order {
	rnd := rand.New(rand.NewSource(orderSeed))
	orders := make([]models.Order, n)

	start := g.now.AddDate(0, 0, -g.cfg.DateRangeDays)
	channelWeights := equalThenDecaying(len(g.cfg.Channels))

	for i := range orders {
		user := users[rnd.Intn(len(users))]
		product := products[rnd.Intn(len(products))]
		quantity := pickInt(rnd, []int{1, 1, 1, 2, 2, 3})
		discount := pickFloat(rnd, []float64{0, 0, 0, 0.1, 0.2, 0.3})

		date := start.AddDate(0, 0, rnd.Intn(g.cfg.DateRangeDays)).
			Truncate(24 * time.Hour).
			Add(time.Duration(weightedHour(rnd)) * time.Hour).
			Add(time.Duration(rnd.Intn(60)) * time.Minute)

		orders[i] = models.Order{
			OrderID:   fmt.Sprintf("ORD%08d", i+1),
			UserID:    user.UserID,
			ProductID: product.ProductID,
			Quantity:  quantity,
			OrderDate: date,
			Status:    g.status(rnd),
			Channel:   g.cfg.Channels[weightedInt(rnd, channelWeights)],
			Discount:  discount,
			Price:     product.Price,
			Cost:      product.Cost,
			Category:  product.Category,
			Amount:    round2(product.Price * float64(quantity) * (1 - discount)),
			Profit:    round2((product.Price - product.Cost) * float64(quantity) * (1 - discount)),
			City:      user.City,
		}
	}
	return orders
}

// status draws an order status. Refunds use the configured rate; the
// small pending/cancelled shares come out of the completed remainder.
func (g *Generator) status(rnd *rand.Rand) string {
	r := rnd.Float64()
	switch {
	case r < g.cfg.RefundRate:
		return models.StatusRefunded
	case r < g.cfg.RefundRate+0.04:
		return models.StatusPending
	case r < g.cfg.RefundRate+0.07:
		return models.StatusCancelled
	default:
		return models.StatusCompleted
	}
}

// Funnel generates stage counts with monotonically non-increasing
// volumes: view -> cart (25-35%), cart -> order (35-50%),
// order -> pay (70-85%).
func (g *Generator) Funnel() []models.FunnelRecord {
	rnd := rand.New(rand.NewSource(funnelSeed))

	view := int64(funnelSessions)
	cart := int64(float64(view) * (0.25 + rnd.Float64()*0.10))
	order := int64(float64(cart) * (0.35 + rnd.Float64()*0.15))
	pay := int64(float64(order) * (0.70 + rnd.Float64()*0.15))

	counts := []int64{view, cart, order, pay}
	records := make([]models.FunnelRecord, len(models.FunnelStages))
	for i, stage := range models.FunnelStages {
		records[i] = models.FunnelRecord{Stage: stage, Count: counts[i], Date: g.now}
	}
	return records
}

func pick(rnd *rand.Rand, values []string) string {
	return values[rnd.Intn(len(values))]
}

func pickInt(rnd *rand.Rand, values []int) int {
	return values[rnd.Intn(len(values))]
}

func pickFloat(rnd *rand.Rand, values []float64) float64 {
	return values[rnd.Intn(len(values))]
}

// weightedInt draws an index from the given weight distribution.
// Weights are normalized internally.
func weightedInt(rnd *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rnd.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func weightedHour(rnd *rand.Rand) int {
	return weightedInt(rnd, hourWeights)
}

// equalThenDecaying returns channel weights matching the historical
// 30/25/20/15/10 split for five channels, degrading gracefully to a
// uniform split for other counts.
func equalThenDecaying(n int) []float64 {
	if n == 5 {
		return []float64{0.30, 0.25, 0.20, 0.15, 0.10}
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
