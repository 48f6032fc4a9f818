// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package generator

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/logging"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// timestampLayout is the CSV timestamp format, chosen so DuckDB's
// read_csv parses it as TIMESTAMP without a format hint.
const timestampLayout = "2006-01-02 15:04:05"

// CSV file names within the data directory, one per table.
const (
	UsersFile    = "users.csv"
	ProductsFile = "products.csv"
	OrdersFile   = "orders.csv"
	FunnelFile   = "funnel.csv"
)

// WriteCSVs writes the dataset to the data directory, one CSV per
// table, creating the directory if needed. Existing files are
// replaced.
func WriteCSVs(ds *Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	if err := writeCSV(filepath.Join(dir, UsersFile), userHeader, len(ds.Users), func(i int) []string {
		return userRow(ds.Users[i])
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, ProductsFile), productHeader, len(ds.Products), func(i int) []string {
		return productRow(ds.Products[i])
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, OrdersFile), orderHeader, len(ds.Orders), func(i int) []string {
		return orderRow(ds.Orders[i])
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, FunnelFile), funnelHeader, len(ds.Funnel), func(i int) []string {
		return funnelRow(ds.Funnel[i])
	}); err != nil {
		return err
	}

	logging.Info().
		Str("dir", dir).
		Int("users", len(ds.Users)).
		Int("products", len(ds.Products)).
		Int("orders", len(ds.Orders)).
		Msg("synthetic dataset written")

	return nil
}

// CSVsExist reports whether the orders CSV is present in dir. The
// orders file is the load-bearing one; the entry point regenerates the
// whole dataset when it is missing.
func CSVsExist(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, OrdersFile))
	return err == nil
}

var (
	userHeader    = []string{"user_id", "username", "register_date", "city", "age", "gender", "vip_level"}
	productHeader = []string{"product_id", "product_name", "category", "price", "cost", "stock", "rating"}
	orderHeader   = []string{
		"order_id", "user_id", "product_id", "quantity", "order_date", "status",
		"channel", "discount", "price", "cost", "category", "amount", "profit", "city",
	}
	funnelHeader = []string{"stage", "count", "date"}
)

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("failed to close CSV file")
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write row %d to %s: %w", i, path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func userRow(u models.User) []string {
	return []string{
		u.UserID,
		u.Username,
		u.RegisterDate.Format(timestampLayout),
		u.City,
		strconv.Itoa(u.Age),
		u.Gender,
		strconv.Itoa(u.VIPLevel),
	}
}

func productRow(p models.Product) []string {
	return []string{
		p.ProductID,
		p.ProductName,
		p.Category,
		formatFloat(p.Price),
		formatFloat(p.Cost),
		strconv.Itoa(p.Stock),
		formatFloat(p.Rating),
	}
}

func orderRow(o models.Order) []string {
	return []string{
		o.OrderID,
		o.UserID,
		o.ProductID,
		strconv.Itoa(o.Quantity),
		o.OrderDate.Format(timestampLayout),
		o.Status,
		o.Channel,
		formatFloat(o.Discount),
		formatFloat(o.Price),
		formatFloat(o.Cost),
		o.Category,
		formatFloat(o.Amount),
		formatFloat(o.Profit),
		o.City,
	}
}

func funnelRow(f models.FunnelRecord) []string {
	return []string{
		f.Stage,
		strconv.FormatInt(f.Count, 10),
		f.Date.Format(timestampLayout),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
