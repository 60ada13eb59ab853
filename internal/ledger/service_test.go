package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vendorhub/ledger-backend/internal/commission"
	"github.com/vendorhub/ledger-backend/internal/testutil"
	"github.com/vendorhub/ledger-backend/pkg/db/models"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
)

var testClock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := testutil.SetupDB(t)
	svc, err := NewService(ServiceParams{
		Logger: testutil.SilentLogger(),
		DB:     testutil.TxRunner{DB: conn},
		Repo:   NewRepository(conn),
	})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return testClock }
	return svc, conn
}

func testSaleInput() CreateFromSaleInput {
	rate := decimal.NewFromInt(12)
	return CreateFromSaleInput{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-1042",
		VendorID:    uuid.New(),
		ProductID:   uuid.New(),
		ProductName: "Walnut Desk Organizer",
		ProductSKU:  "SKU-DESK-01",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(50),
		Currency:    enums.CurrencyUSD,
		Vendor: commission.VendorProfile{
			VendorID:         uuid.New(),
			CommissionRate:   &rate,
			CommissionType:   enums.CommissionTypePercentage,
			SubscriptionTier: enums.SubscriptionTierGold,
		},
		ActorID: "checkout-service",
	}
}

func countEntries(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.CommissionTransaction{}).Count(&count).Error)
	return count
}

func TestCreateFromSale_PercentageCommission(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)

	assert.Equal(t, "100.00", entry.GrossAmount.StringFixed(2))
	assert.Equal(t, "12.00", entry.CommissionAmount.StringFixed(2))
	assert.Equal(t, "88.00", entry.VendorEarnings.StringFixed(2))
	assert.Equal(t, "12.00", entry.PlatformEarnings.StringFixed(2))
	assert.Equal(t, enums.TransactionStatusPending, entry.Status)
	assert.Equal(t, enums.TransactionCategorySale, entry.Category)
	assert.Equal(t, "COM-20250310-000001", entry.TransactionCode)

	// Gold tier holds funds for five days.
	assert.Equal(t, 5, entry.ClearanceDays)
	assert.Equal(t, testClock.Add(5*24*time.Hour), entry.ClearanceDate.UTC())

	require.Len(t, entry.StatusHistory, 1)
	assert.Equal(t, enums.TransactionStatusPending, entry.StatusHistory[0].Status)
	assert.Equal(t, "checkout-service", entry.StatusHistory[0].ActorID)
}

func TestCreateFromSale_FixedCommission(t *testing.T) {
	svc, _ := newTestService(t)

	input := testSaleInput()
	rate := decimal.RequireFromString("2.50")
	input.Quantity = 3
	input.UnitPrice = decimal.NewFromInt(20)
	input.Vendor.CommissionRate = &rate
	input.Vendor.CommissionType = enums.CommissionTypeFixed

	entry, err := svc.CreateFromSale(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "60.00", entry.GrossAmount.StringFixed(2))
	assert.Equal(t, "7.50", entry.CommissionAmount.StringFixed(2))
	assert.Equal(t, "52.50", entry.VendorEarnings.StringFixed(2))
	assert.Equal(t, enums.CommissionTypeFixed, entry.CommissionType)
}

func TestCreateFromSale_DefaultRule(t *testing.T) {
	svc, _ := newTestService(t)

	input := testSaleInput()
	input.Vendor.CommissionRate = nil
	input.Vendor.SubscriptionTier = enums.SubscriptionTierStandard

	entry, err := svc.CreateFromSale(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "12.00", entry.CommissionAmount.StringFixed(2))
	assert.Equal(t, 7, entry.ClearanceDays)
}

func TestCreateFromSale_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*CreateFromSaleInput)
	}{
		{"missing order id", func(in *CreateFromSaleInput) { in.OrderID = uuid.Nil }},
		{"missing vendor id", func(in *CreateFromSaleInput) { in.VendorID = uuid.Nil }},
		{"missing product id", func(in *CreateFromSaleInput) { in.ProductID = uuid.Nil }},
		{"missing order number", func(in *CreateFromSaleInput) { in.OrderNumber = "" }},
		{"zero quantity", func(in *CreateFromSaleInput) { in.Quantity = 0 }},
		{"negative price", func(in *CreateFromSaleInput) { in.UnitPrice = decimal.NewFromInt(-1) }},
		{"unknown currency", func(in *CreateFromSaleInput) { in.Currency = "XYZ" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := testSaleInput()
			tc.mutate(&input)
			_, err := svc.CreateFromSale(context.Background(), input)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCreateFromSale_DuplicateReturnsExisting(t *testing.T) {
	svc, conn := newTestService(t)

	input := testSaleInput()
	first, err := svc.CreateFromSale(context.Background(), input)
	require.NoError(t, err)

	second, err := svc.CreateFromSale(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TransactionCode, second.TransactionCode)
	assert.EqualValues(t, 1, countEntries(t, conn))
}

func TestCreateFromSale_SequentialCodes(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	second, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)

	assert.Equal(t, "COM-20250310-000001", first.TransactionCode)
	assert.Equal(t, "COM-20250310-000002", second.TransactionCode)
}

func TestMarkCleared(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)

	cleared, err := svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	assert.Equal(t, enums.TransactionStatusCleared, cleared.Status)
	require.NotNil(t, cleared.ClearedAt)
	require.Len(t, cleared.StatusHistory, 2)
	assert.Equal(t, "ops-admin", cleared.StatusHistory[1].ActorID)
}

func TestMarkCleared_AlreadyCleared(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	// The losing call must not append a second cleared event.
	reloaded, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.StatusHistory, 2)
}

func TestTerminalStatusRejectsTransitions(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), entry.ID, "ops-admin", "buyer cancelled")
	require.NoError(t, err)

	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	_, err = svc.OpenDispute(context.Background(), entry.ID, "ops-admin", "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestMarkReleased(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	withdrawalID := uuid.New()
	released, err := svc.MarkReleased(context.Background(), entry.ID, withdrawalID, "payout-worker")
	require.NoError(t, err)

	assert.Equal(t, enums.TransactionStatusReleased, released.Status)
	require.NotNil(t, released.WithdrawalID)
	assert.Equal(t, withdrawalID, *released.WithdrawalID)
	assert.NotNil(t, released.WithdrawnAt)
}

func TestProcessRefund_Partial(t *testing.T) {
	svc, conn := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	result, err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID,
		Amount:        decimal.NewFromInt(30),
		ActorID:       "support-agent",
	})
	require.NoError(t, err)

	reversal := result.Reversal
	assert.Equal(t, enums.TransactionCategoryRefund, reversal.Category)
	assert.Equal(t, enums.TransactionStatusCleared, reversal.Status)
	assert.Equal(t, "-30.00", reversal.GrossAmount.StringFixed(2))
	assert.Equal(t, "-3.60", reversal.CommissionAmount.StringFixed(2))
	assert.Equal(t, "-26.40", reversal.VendorEarnings.StringFixed(2))
	require.NotNil(t, reversal.OriginalTransactionID)
	assert.Equal(t, entry.ID, *reversal.OriginalTransactionID)

	source := result.Source
	assert.Equal(t, enums.TransactionStatusCleared, source.Status)
	assert.True(t, source.IsRefunded)
	assert.Equal(t, "30.00", source.RefundedAmount.StringFixed(2))
	require.NotNil(t, source.RefundedTransactionID)
	assert.Equal(t, reversal.ID, *source.RefundedTransactionID)

	assert.EqualValues(t, 2, countEntries(t, conn))
}

func TestProcessRefund_FullFlipsStatus(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	result, err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID,
		Amount:        decimal.NewFromInt(100),
		ActorID:       "support-agent",
	})
	require.NoError(t, err)

	assert.Equal(t, enums.TransactionStatusRefunded, result.Source.Status)
	assert.Equal(t, "-88.00", result.Reversal.VendorEarnings.StringFixed(2))
	assert.Equal(t, "-12.00", result.Reversal.CommissionAmount.StringFixed(2))
}

func TestProcessRefund_CumulativeFlip(t *testing.T) {
	svc, conn := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	half := decimal.NewFromInt(50)
	first, err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: half, ActorID: "support-agent",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCleared, first.Source.Status)

	second, err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: half, ActorID: "support-agent",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusRefunded, second.Source.Status)
	assert.Equal(t, "100.00", second.Source.RefundedAmount.StringFixed(2))

	// Source plus two reversal entries.
	assert.EqualValues(t, 3, countEntries(t, conn))
}

func TestProcessRefund_OverRefund(t *testing.T) {
	svc, conn := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	_, err = svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: decimal.NewFromInt(30), ActorID: "support-agent",
	})
	require.NoError(t, err)

	_, err = svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: decimal.NewFromInt(80), ActorID: "support-agent",
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeOverRefund), "got %v", err)

	// Rejected refund leaves the ledger untouched.
	reloaded, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", reloaded.RefundedAmount.StringFixed(2))
	assert.Equal(t, enums.TransactionStatusCleared, reloaded.Status)
	assert.EqualValues(t, 2, countEntries(t, conn))
}

func TestProcessRefund_RejectedStates(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), entry.ID, "ops-admin", "")
	require.NoError(t, err)

	_, err = svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: decimal.NewFromInt(10), ActorID: "support-agent",
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestProcessRefund_ReservedEntryRejected(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.Reserve(context.Background(), entry.ID, "ops-admin", "payout hold")
	require.NoError(t, err)

	// No reserved->refunded edge: the hold has to be released first.
	_, err = svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: decimal.NewFromInt(10), ActorID: "support-agent",
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestProcessRefund_StaleSnapshotConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	repo := NewRepository(conn)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	// Two writers snapshot the source before either refund commits. The
	// partial refund leaves status at cleared, so only the refunded_amount
	// guard can fence the second writer off.
	first, err := repo.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)

	err = repo.UpdateRefundGuarded(context.Background(), entry.ID, first.Status, first.RefundedAmount, map[string]any{
		"is_refunded":     true,
		"refunded_amount": decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	err = repo.UpdateRefundGuarded(context.Background(), entry.ID, second.Status, second.RefundedAmount, map[string]any{
		"is_refunded":     true,
		"refunded_amount": decimal.NewFromInt(60),
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	reloaded, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", reloaded.RefundedAmount.StringFixed(2))
	assert.Equal(t, enums.TransactionStatusCleared, reloaded.Status)
}

func TestProcessRefund_ReversalNotRefundable(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	_, err = svc.MarkCleared(context.Background(), entry.ID, "ops-admin")
	require.NoError(t, err)

	result, err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: entry.ID, Amount: decimal.NewFromInt(30), ActorID: "support-agent",
	})
	require.NoError(t, err)

	_, err = svc.ProcessRefund(context.Background(), ProcessRefundInput{
		TransactionID: result.Reversal.ID, Amount: decimal.NewFromInt(10), ActorID: "support-agent",
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestResolveDispute(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("in vendor's favor", func(t *testing.T) {
		entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
		require.NoError(t, err)
		_, err = svc.OpenDispute(context.Background(), entry.ID, "support-agent", "buyer claims non-delivery")
		require.NoError(t, err)

		resolved, err := svc.ResolveDispute(context.Background(), entry.ID, "support-agent", true)
		require.NoError(t, err)
		assert.Equal(t, enums.TransactionStatusCleared, resolved.Status)
	})

	t.Run("against vendor", func(t *testing.T) {
		entry, err := svc.CreateFromSale(context.Background(), testSaleInput())
		require.NoError(t, err)
		_, err = svc.OpenDispute(context.Background(), entry.ID, "support-agent", "buyer claims non-delivery")
		require.NoError(t, err)

		resolved, err := svc.ResolveDispute(context.Background(), entry.ID, "support-agent", false)
		require.NoError(t, err)
		assert.Equal(t, enums.TransactionStatusRefunded, resolved.Status)
		assert.Equal(t, "100.00", resolved.RefundedAmount.StringFixed(2))
	})
}

func TestClearDuePending(t *testing.T) {
	svc, conn := newTestService(t)

	due1, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	due2, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)
	notDue, err := svc.CreateFromSale(context.Background(), testSaleInput())
	require.NoError(t, err)

	past := testClock.Add(-time.Hour)
	require.NoError(t, conn.Model(&models.CommissionTransaction{}).
		Where("id IN ?", []uuid.UUID{due1.ID, due2.ID}).
		Update("clearance_date", past).Error)

	cleared, err := svc.ClearDuePending(context.Background(), testClock, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	reloaded, err := svc.Get(context.Background(), notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusPending, reloaded.Status)

	// Second sweep finds nothing left to promote.
	cleared, err = svc.ClearDuePending(context.Background(), testClock, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared)
}
