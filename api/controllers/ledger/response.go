package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorhub/ledger-backend/pkg/db/models"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	"github.com/vendorhub/ledger-backend/pkg/types"
)

type transactionResponse struct {
	ID              uuid.UUID `json:"id"`
	TransactionCode string    `json:"transaction_code"`

	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	VendorID    uuid.UUID `json:"vendor_id"`
	ProductID   uuid.UUID `json:"product_id"`
	LotNumber   int       `json:"lot_number"`

	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
	Quantity    int    `json:"quantity"`

	GrossAmount      decimal.Decimal      `json:"gross_amount"`
	CommissionRate   decimal.Decimal      `json:"commission_rate"`
	CommissionType   enums.CommissionType `json:"commission_type"`
	CommissionAmount decimal.Decimal      `json:"commission_amount"`
	VendorEarnings   decimal.Decimal      `json:"vendor_earnings"`
	PlatformEarnings decimal.Decimal      `json:"platform_earnings"`
	Fees             types.FeeBreakdown   `json:"fees"`
	TotalFees        decimal.Decimal      `json:"total_fees"`
	Currency         enums.Currency       `json:"currency"`

	Status        enums.TransactionStatus `json:"status"`
	StatusHistory types.StatusHistory     `json:"status_history"`
	ClearanceDays int                     `json:"clearance_days"`
	ClearanceDate time.Time               `json:"clearance_date"`
	ClearedAt     *time.Time              `json:"cleared_at,omitempty"`
	WithdrawalID  *uuid.UUID              `json:"withdrawal_id,omitempty"`
	WithdrawnAt   *time.Time              `json:"withdrawn_at,omitempty"`

	Category              enums.TransactionCategory `json:"category"`
	OriginalTransactionID *uuid.UUID                `json:"original_transaction_id,omitempty"`
	RefundedTransactionID *uuid.UUID                `json:"refunded_transaction_id,omitempty"`
	IsRefunded            bool                      `json:"is_refunded"`
	RefundedAmount        decimal.Decimal           `json:"refunded_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTransactionResponse(entry *models.CommissionTransaction) transactionResponse {
	return transactionResponse{
		ID:              entry.ID,
		TransactionCode: entry.TransactionCode,

		OrderID:     entry.OrderID,
		OrderNumber: entry.OrderNumber,
		VendorID:    entry.VendorID,
		ProductID:   entry.ProductID,
		LotNumber:   entry.LotNumber,

		ProductName: entry.ProductName,
		ProductSKU:  entry.ProductSKU,
		Quantity:    entry.Quantity,

		GrossAmount:      entry.GrossAmount,
		CommissionRate:   entry.CommissionRate,
		CommissionType:   entry.CommissionType,
		CommissionAmount: entry.CommissionAmount,
		VendorEarnings:   entry.VendorEarnings,
		PlatformEarnings: entry.PlatformEarnings,
		Fees:             entry.Fees,
		TotalFees:        entry.TotalFees,
		Currency:         entry.Currency,

		Status:        entry.Status,
		StatusHistory: entry.StatusHistory,
		ClearanceDays: entry.ClearanceDays,
		ClearanceDate: entry.ClearanceDate,
		ClearedAt:     entry.ClearedAt,
		WithdrawalID:  entry.WithdrawalID,
		WithdrawnAt:   entry.WithdrawnAt,

		Category:              entry.Category,
		OriginalTransactionID: entry.OriginalTransactionID,
		RefundedTransactionID: entry.RefundedTransactionID,
		IsRefunded:            entry.IsRefunded,
		RefundedAmount:        entry.RefundedAmount,

		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

func toTransactionList(entries []models.CommissionTransaction) []transactionResponse {
	list := make([]transactionResponse, 0, len(entries))
	for i := range entries {
		list = append(list, toTransactionResponse(&entries[i]))
	}
	return list
}

type refundResponse struct {
	Source   transactionResponse `json:"source"`
	Reversal transactionResponse `json:"reversal"`
}

type sweepResponse struct {
	EntriesCleared int       `json:"entries_cleared"`
	SweptAt        time.Time `json:"swept_at"`
}
