package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendorhub/ledger-backend/pkg/db"
	"github.com/vendorhub/ledger-backend/pkg/db/models"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
)

// Repository manages persistence for commission transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.CommissionTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CommissionTransaction, error)
	FindBySaleIdentity(ctx context.Context, orderID, vendorID, productID uuid.UUID, lotNumber int) (*models.CommissionTransaction, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.CommissionTransaction, error)
	FindDuePending(ctx context.Context, now time.Time, limit int) ([]models.CommissionTransaction, error)
	UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.TransactionStatus, updates map[string]any) error
	UpdateRefundGuarded(ctx context.Context, id uuid.UUID, expectedStatus enums.TransactionStatus, expectedRefunded decimal.Decimal, updates map[string]any) error
	NextDailySequence(ctx context.Context, day string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.CommissionTransaction) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeDuplicateEntry, err, "ledger entry already exists for this sale")
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CommissionTransaction, error) {
	var entry models.CommissionTransaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ledger entry not found")
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindBySaleIdentity(ctx context.Context, orderID, vendorID, productID uuid.UUID, lotNumber int) (*models.CommissionTransaction, error) {
	var entry models.CommissionTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND vendor_id = ? AND product_id = ? AND lot_number = ? AND category = ?",
			orderID, vendorID, productID, lotNumber, enums.TransactionCategorySale).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ledger entry not found")
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.CommissionTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var entries []models.CommissionTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindDuePending(ctx context.Context, now time.Time, limit int) ([]models.CommissionTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND clearance_date <= ?", enums.TransactionStatusPending, now).
		Order("clearance_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.CommissionTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateGuarded applies updates only while the row still holds the expected
// status. Zero rows affected means a concurrent caller won the race (or the
// row is gone); the caller gets a conflict rather than a silent overwrite.
func (r *repository) UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.TransactionStatus, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionTransaction{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		requested := expected
		if raw, ok := updates["status"].(enums.TransactionStatus); ok {
			requested = raw
		}
		return stateConflictError(current.Status, requested)
	}
	return nil
}

// UpdateRefundGuarded applies refund bookkeeping only while the row still
// holds both the expected status and the expected cumulative refunded amount.
// A partial refund leaves status untouched, so the status guard alone cannot
// fence off two refunds racing against the same snapshot; the money column
// must be part of the condition.
func (r *repository) UpdateRefundGuarded(ctx context.Context, id uuid.UUID, expectedStatus enums.TransactionStatus, expectedRefunded decimal.Decimal, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.CommissionTransaction{}).
		Where("id = ? AND status = ? AND refunded_amount = ?", id, expectedStatus, expectedRefunded).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != expectedStatus {
			return stateConflictError(current.Status, enums.TransactionStatusRefunded)
		}
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			"entry was refunded concurrently; retry against the current state",
		).WithDetails(map[string]any{
			"refunded_amount": current.RefundedAmount.StringFixed(2),
		})
	}
	return nil
}

// NextDailySequence atomically advances and returns the per-day counter that
// backs transaction codes.
func (r *repository) NextDailySequence(ctx context.Context, day string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
INSERT INTO daily_sequences (day, value)
VALUES (?, 1)
ON CONFLICT (day) DO UPDATE SET value = daily_sequences.value + 1
RETURNING value`, day).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
