package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendorhub/ledger-backend/pkg/enums"
)

// Summary is a vendor's balance sheet derived from their ledger entries.
// Refund reversals carry negative amounts, so the sums net them out without
// special-casing.
type Summary struct {
	VendorID          uuid.UUID       `json:"vendor_id"`
	PendingEarnings   decimal.Decimal `json:"pending_earnings"`
	AvailableEarnings decimal.Decimal `json:"available_earnings"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	ReservedBalance   decimal.Decimal `json:"reserved_balance"`
	DisputedBalance   decimal.Decimal `json:"disputed_balance"`
	TotalRefunded     decimal.Decimal `json:"total_refunded"`
	TransactionCount  int64           `json:"transaction_count"`
}

// StatusBucket is one status group inside a monthly summary.
type StatusBucket struct {
	Status          enums.TransactionStatus `json:"status"`
	GrossAmount     decimal.Decimal         `json:"gross_amount"`
	CommissionTotal decimal.Decimal         `json:"commission_total"`
	Earnings        decimal.Decimal         `json:"earnings"`
	EntryCount      int64                   `json:"entry_count"`
}

// MonthlySummary groups one calendar month's entries by status, with a
// totals row across all of them.
type MonthlySummary struct {
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`
	ByStatus []StatusBucket `json:"by_status"`
	Totals   StatusBucket   `json:"totals"`
}

// Repository aggregates ledger entries into vendor balances.
type Repository interface {
	Summarize(ctx context.Context, vendorID uuid.UUID) (*Summary, error)
	SummarizeMonth(ctx context.Context, vendorID uuid.UUID, year int, month time.Month) (*MonthlySummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an earnings repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

// Available intentionally excludes entries already swept into a withdrawal:
// released entries carry status 'released', so the status filter is enough.
const summarizeQuery = `
SELECT
  COALESCE(SUM(CASE WHEN status = 'pending' THEN vendor_earnings ELSE 0 END), 0)  AS pending_earnings,
  COALESCE(SUM(CASE WHEN status = 'cleared' THEN vendor_earnings ELSE 0 END), 0)  AS available_earnings,
  COALESCE(SUM(CASE WHEN status IN ('cleared', 'released') AND category = 'sale' THEN vendor_earnings ELSE 0 END), 0) AS total_earnings,
  COALESCE(SUM(CASE WHEN status = 'reserved' THEN vendor_earnings ELSE 0 END), 0) AS reserved_balance,
  COALESCE(SUM(CASE WHEN status = 'disputed' THEN vendor_earnings ELSE 0 END), 0) AS disputed_balance,
  COALESCE(SUM(CASE WHEN category = 'sale' THEN refunded_amount ELSE 0 END), 0)   AS total_refunded,
  COUNT(*) AS transaction_count
FROM commission_transactions
WHERE vendor_id = ?`

func (r *repository) Summarize(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	var summary Summary
	if err := r.db.WithContext(ctx).Raw(summarizeQuery, vendorID).Scan(&summary).Error; err != nil {
		return nil, fmt.Errorf("summarize vendor earnings: %w", err)
	}
	summary.VendorID = vendorID
	return &summary, nil
}

const monthlyQuery = `
SELECT
  status,
  COALESCE(SUM(gross_amount), 0)      AS gross_amount,
  COALESCE(SUM(commission_amount), 0) AS commission_total,
  COALESCE(SUM(vendor_earnings), 0)   AS earnings,
  COUNT(*)                            AS entry_count
FROM commission_transactions
WHERE vendor_id = ? AND created_at >= ? AND created_at < ?
GROUP BY status
ORDER BY status`

func (r *repository) SummarizeMonth(ctx context.Context, vendorID uuid.UUID, year int, month time.Month) (*MonthlySummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var buckets []StatusBucket
	if err := r.db.WithContext(ctx).Raw(monthlyQuery, vendorID, start, end).Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("summarize monthly earnings: %w", err)
	}

	summary := &MonthlySummary{
		Year:     year,
		Month:    month,
		ByStatus: buckets,
	}
	for _, bucket := range buckets {
		summary.Totals.GrossAmount = summary.Totals.GrossAmount.Add(bucket.GrossAmount)
		summary.Totals.CommissionTotal = summary.Totals.CommissionTotal.Add(bucket.CommissionTotal)
		summary.Totals.Earnings = summary.Totals.Earnings.Add(bucket.Earnings)
		summary.Totals.EntryCount += bucket.EntryCount
	}
	return summary, nil
}
