// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package database

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/generator"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/metrics"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

func testDataConfig() config.DataConfig {
	return config.DataConfig{
		Orders:        500,
		Users:         50,
		Products:      30,
		DateRangeDays: 60,
		RefundRate:    0.15,
		Categories:    []string{"电子产品", "服装", "家居"},
		Channels:      []string{"直播", "搜索", "推荐", "活动", "复购"},
		Cities:        []string{"北京", "上海", "广州"},
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory: "512MB",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// seedTestData generates a dataset, writes CSVs and loads them,
// returning the dataset and the CSV directory.
func seedTestData(t *testing.T, db *DB) (*generator.Dataset, string) {
	t.Helper()
	dir := t.TempDir()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ds := generator.NewAt(testDataConfig(), now).Generate()
	if err := generator.WriteCSVs(ds, dir); err != nil {
		t.Fatalf("failed to write CSVs: %v", err)
	}
	count, err := db.Reload(context.Background(), dir)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if count != int64(len(ds.Orders)) {
		t.Fatalf("loaded %d orders, want %d", count, len(ds.Orders))
	}
	return ds, dir
}

func TestReload_LoadsAllTables(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	ctx := context.Background()
	for table, want := range map[string]int{
		"users":    len(ds.Users),
		"products": len(ds.Products),
		"orders":   len(ds.Orders),
		"funnel":   len(ds.Funnel),
	} {
		got, err := db.countRows(ctx, table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != int64(want) {
			t.Errorf("table %s has %d rows, want %d", table, got, want)
		}
	}
}

func TestReload_MissingFileLeavesDataIntact(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	_, err := db.Reload(context.Background(), t.TempDir())
	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("expected ImportError, got %v", err)
	}

	count, err := db.CountOrders(context.Background())
	if err != nil {
		t.Fatalf("CountOrders: %v", err)
	}
	if count != int64(len(ds.Orders)) {
		t.Errorf("prior data lost: %d orders, want %d", count, len(ds.Orders))
	}
}

func TestLoadCSV_SkipsWhenLoaded(t *testing.T) {
	db := newTestDB(t)
	ds, dir := seedTestData(t, db)

	count, err := db.LoadCSV(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if count != int64(len(ds.Orders)) {
		t.Errorf("LoadCSV returned %d, want %d", count, len(ds.Orders))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	path := filepath.Join(t.TempDir(), "orders_export.csv")
	exported, err := db.ExportCSV(context.Background(), "orders", path)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if exported != int64(len(ds.Orders)) {
		t.Fatalf("exported %d rows, want %d", exported, len(ds.Orders))
	}

	// Import into a fresh database and compare row counts.
	db2 := newTestDB(t)
	imported, err := db2.ImportCSV(context.Background(), "orders", path)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if imported != exported {
		t.Errorf("imported %d rows, want %d", imported, exported)
	}
}

func TestImportCSV_UnknownTable(t *testing.T) {
	db := newTestDB(t)

	_, err := db.ImportCSV(context.Background(), "secrets", "/tmp/x.csv")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestQuery_RawPassthrough(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	result, err := db.Query(context.Background(), "SELECT COUNT(*) AS n FROM orders")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
	n, ok := result.Rows[0]["n"].(int64)
	if !ok || n != int64(len(ds.Orders)) {
		t.Errorf("n = %v, want %d", result.Rows[0]["n"], len(ds.Orders))
	}
}

func TestQuery_MalformedSQL(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Query(context.Background(), "SELEKT broken FROM nowhere")
	var qErr *QueryError
	if !errors.As(err, &qErr) {
		t.Fatalf("expected QueryError, got %v", err)
	}
}

func TestQuery_RecordsMetrics(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)

	errsBefore := testutil.ToFloat64(metrics.DBQueryErrors.WithLabelValues("raw"))

	if _, err := db.Query(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := testutil.ToFloat64(metrics.DBQueryErrors.WithLabelValues("raw")); got != errsBefore {
		t.Errorf("error counter moved on success: %f -> %f", errsBefore, got)
	}

	if _, err := db.Query(context.Background(), "SELEKT nope"); err == nil {
		t.Fatal("expected error for malformed SQL")
	}
	if got := testutil.ToFloat64(metrics.DBQueryErrors.WithLabelValues("raw")); got != errsBefore+1 {
		t.Errorf("error counter = %f, want %f", got, errsBefore+1)
	}

	if _, err := db.GetFunnel(context.Background()); err != nil {
		t.Fatalf("GetFunnel: %v", err)
	}
	if series := testutil.CollectAndCount(metrics.DBQueryDuration); series == 0 {
		t.Error("expected query duration observations")
	}
}

func TestGetOrders_Filters(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	ctx := context.Background()

	t.Run("status filter", func(t *testing.T) {
		orders, err := db.GetOrders(ctx, OrderFilter{Status: models.StatusRefunded})
		if err != nil {
			t.Fatalf("GetOrders: %v", err)
		}
		want := 0
		for _, o := range ds.Orders {
			if o.Status == models.StatusRefunded {
				want++
			}
		}
		if len(orders) != want {
			t.Errorf("got %d refunded orders, want %d", len(orders), want)
		}
		for _, o := range orders {
			if o.Status != models.StatusRefunded {
				t.Fatalf("order %s has status %s", o.OrderID, o.Status)
			}
		}
	})

	t.Run("limit and ordering", func(t *testing.T) {
		orders, err := db.GetOrders(ctx, OrderFilter{Limit: 10})
		if err != nil {
			t.Fatalf("GetOrders: %v", err)
		}
		if len(orders) != 10 {
			t.Fatalf("got %d orders, want 10", len(orders))
		}
		for i := 1; i < len(orders); i++ {
			if orders[i].OrderDate.After(orders[i-1].OrderDate) {
				t.Errorf("orders not in descending date order at %d", i)
			}
		}
	})

	t.Run("negative limit rejected", func(t *testing.T) {
		_, err := db.GetOrders(ctx, OrderFilter{Limit: -1})
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("inverted date range rejected", func(t *testing.T) {
		start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, -10)
		_, err := db.GetOrders(ctx, OrderFilter{StartDate: &start, EndDate: &end})
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestOrderAggregates_ReconcilesWithDataset(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	agg, err := db.OrderAggregates(context.Background())
	if err != nil {
		t.Fatalf("OrderAggregates: %v", err)
	}

	var wantGMV float64
	var wantPaid, wantRefunded int64
	for _, o := range ds.Orders {
		switch o.Status {
		case models.StatusCompleted:
			wantGMV += o.Amount
			wantPaid++
		case models.StatusRefunded:
			wantRefunded++
		}
	}

	if agg.TotalOrders != int64(len(ds.Orders)) {
		t.Errorf("TotalOrders = %d, want %d", agg.TotalOrders, len(ds.Orders))
	}
	if agg.PaidOrders != wantPaid {
		t.Errorf("PaidOrders = %d, want %d", agg.PaidOrders, wantPaid)
	}
	if agg.RefundedOrders != wantRefunded {
		t.Errorf("RefundedOrders = %d, want %d", agg.RefundedOrders, wantRefunded)
	}
	if math.Abs(agg.GMV-wantGMV) > 0.5 {
		t.Errorf("GMV = %f, want %f", agg.GMV, wantGMV)
	}
	if agg.RepeatUsers > agg.PurchasingUsers {
		t.Errorf("RepeatUsers %d exceeds PurchasingUsers %d", agg.RepeatUsers, agg.PurchasingUsers)
	}
}

func TestRFMFeatures(t *testing.T) {
	db := newTestDB(t)
	ds, _ := seedTestData(t, db)

	features, err := db.RFMFeatures(context.Background())
	if err != nil {
		t.Fatalf("RFMFeatures: %v", err)
	}

	purchasers := make(map[string]bool)
	for _, o := range ds.Orders {
		if o.Status == models.StatusCompleted {
			purchasers[o.UserID] = true
		}
	}
	if len(features) != len(purchasers) {
		t.Errorf("got %d RFM rows, want %d purchasing users", len(features), len(purchasers))
	}
	for _, f := range features {
		if f.Recency < 1 {
			t.Errorf("user %s recency %d, want >= 1", f.UserID, f.Recency)
		}
		if f.Frequency < 1 || f.Monetary <= 0 {
			t.Errorf("user %s has degenerate features: %+v", f.UserID, f)
		}
	}
}

func TestGetFunnel_OrderedBySequence(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)

	funnel, err := db.GetFunnel(context.Background())
	if err != nil {
		t.Fatalf("GetFunnel: %v", err)
	}
	if len(funnel) != len(models.FunnelStages) {
		t.Fatalf("got %d stages, want %d", len(funnel), len(models.FunnelStages))
	}
	for i, stage := range models.FunnelStages {
		if funnel[i].Stage != stage {
			t.Errorf("stage %d = %s, want %s", i, funnel[i].Stage, stage)
		}
	}
}

func TestGetDailyStats_Validation(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)

	if _, err := db.GetDailyStats(context.Background(), 0); err == nil {
		t.Error("expected validation error for days=0")
	}

	stats, err := db.GetDailyStats(context.Background(), 30)
	if err != nil {
		t.Fatalf("GetDailyStats: %v", err)
	}
	if len(stats) == 0 {
		t.Fatal("expected daily stats for seeded data")
	}
	for _, s := range stats {
		if s.RefundRate < 0 || s.RefundRate > 1 {
			t.Errorf("refund rate %f out of [0,1]", s.RefundRate)
		}
	}
}

func TestGetTopUsers(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)

	users, err := db.GetTopUsers(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetTopUsers: %v", err)
	}
	if len(users) != 5 {
		t.Fatalf("got %d users, want 5", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i].TotalSpend > users[i-1].TotalSpend {
			t.Errorf("top users not sorted by spend at %d", i)
		}
	}

	if _, err := db.GetTopUsers(context.Background(), 0); err == nil {
		t.Error("expected validation error for limit=0")
	}
}
