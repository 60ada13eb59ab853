// Package testutil provides the shared in-memory database harness used by
// package tests across the service layer.
package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorhub/ledger-backend/pkg/logger"
)

const commissionTransactionsDDL = `
CREATE TABLE IF NOT EXISTS commission_transactions (
  id TEXT PRIMARY KEY,
  transaction_code TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  lot_number INTEGER NOT NULL DEFAULT 0,
  product_name TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  variation_id TEXT,
  variation_details TEXT,
  gross_amount NUMERIC NOT NULL,
  commission_rate NUMERIC NOT NULL,
  commission_type TEXT NOT NULL,
  commission_amount NUMERIC NOT NULL,
  vendor_earnings NUMERIC NOT NULL,
  platform_earnings NUMERIC NOT NULL,
  fees TEXT,
  total_fees NUMERIC NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending',
  status_history TEXT NOT NULL DEFAULT '[]',
  clearance_days INTEGER NOT NULL DEFAULT 0,
  clearance_date DATETIME NOT NULL,
  cleared_at DATETIME,
  withdrawal_id TEXT,
  withdrawn_at DATETIME,
  category TEXT NOT NULL DEFAULT 'sale',
  original_transaction_id TEXT,
  refunded_transaction_id TEXT,
  is_refunded INTEGER NOT NULL DEFAULT 0,
  refunded_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

// Reversal entries share the identity tuple of their source, so the unique
// constraint only covers sale rows. Mirrors the postgres migration.
const saleIdentityIndexDDL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_commission_tx_sale_identity
  ON commission_transactions (order_id, vendor_id, product_id, lot_number)
  WHERE category = 'sale';`

const dailySequencesDDL = `
CREATE TABLE IF NOT EXISTS daily_sequences (
  day TEXT PRIMARY KEY,
  value INTEGER NOT NULL
);`

// SetupDB opens an in-memory sqlite database seeded with the ledger schema.
// Each test gets its own database, keyed by the test name.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	for _, ddl := range []string{commissionTransactionsDDL, saleIdentityIndexDDL, dailySequencesDDL} {
		if err := conn.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

// TxRunner adapts a raw GORM connection to the transaction runner the
// services expect, standing in for db.Client.
type TxRunner struct {
	DB *gorm.DB
}

func (r TxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

// SilentLogger returns a structured logger that writes nowhere.
func SilentLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}
