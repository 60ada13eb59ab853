package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorhub/ledger-backend/pkg/enums"
	"github.com/vendorhub/ledger-backend/pkg/types"
)

// CommissionTransaction is one durable ledger entry recording a single product
// sale's financial breakdown for a vendor, or the linked reversal of one.
// The order/product columns are an immutable snapshot taken at sale time, not
// live references.
type CommissionTransaction struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionCode string    `gorm:"column:transaction_code;not null;unique"`

	// The sale identity tuple (order, vendor, product, lot) is covered by a
	// partial unique index over category='sale' rows; see the migrations.
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	OrderNumber string    `gorm:"column:order_number;not null"`
	VendorID    uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	LotNumber   int       `gorm:"column:lot_number;not null;default:0"`

	ProductName      string         `gorm:"column:product_name;not null"`
	ProductSKU       string         `gorm:"column:product_sku;not null"`
	Quantity         int            `gorm:"column:quantity;not null"`
	VariationID      *uuid.UUID     `gorm:"column:variation_id;type:uuid"`
	VariationDetails *types.JSONMap `gorm:"column:variation_details;type:jsonb"`

	GrossAmount      decimal.Decimal      `gorm:"column:gross_amount;type:numeric(12,2);not null"`
	CommissionRate   decimal.Decimal      `gorm:"column:commission_rate;type:numeric(8,4);not null"`
	CommissionType   enums.CommissionType `gorm:"column:commission_type;type:commission_type;not null"`
	CommissionAmount decimal.Decimal      `gorm:"column:commission_amount;type:numeric(12,2);not null"`
	VendorEarnings   decimal.Decimal      `gorm:"column:vendor_earnings;type:numeric(12,2);not null"`
	PlatformEarnings decimal.Decimal      `gorm:"column:platform_earnings;type:numeric(12,2);not null"`
	Fees             types.FeeBreakdown   `gorm:"column:fees;type:jsonb"`
	TotalFees        decimal.Decimal      `gorm:"column:total_fees;type:numeric(12,2);not null"`
	Currency         enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`

	Status        enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	StatusHistory types.StatusHistory     `gorm:"column:status_history;type:jsonb;not null"`
	ClearanceDays int                     `gorm:"column:clearance_days;not null"`
	ClearanceDate time.Time               `gorm:"column:clearance_date;not null"`
	ClearedAt     *time.Time              `gorm:"column:cleared_at"`
	WithdrawalID  *uuid.UUID              `gorm:"column:withdrawal_id;type:uuid"`
	WithdrawnAt   *time.Time              `gorm:"column:withdrawn_at"`

	Category              enums.TransactionCategory `gorm:"column:category;type:transaction_category;not null;default:'sale'"`
	OriginalTransactionID *uuid.UUID                `gorm:"column:original_transaction_id;type:uuid"`
	RefundedTransactionID *uuid.UUID                `gorm:"column:refunded_transaction_id;type:uuid"`
	IsRefunded            bool                      `gorm:"column:is_refunded;not null;default:false"`
	RefundedAmount        decimal.Decimal           `gorm:"column:refunded_amount;type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name GORM uses.
func (CommissionTransaction) TableName() string {
	return "commission_transactions"
}

// RemainingRefundable is the amount still eligible for refund on this entry.
func (t *CommissionTransaction) RemainingRefundable() decimal.Decimal {
	return t.GrossAmount.Sub(t.RefundedAmount)
}
