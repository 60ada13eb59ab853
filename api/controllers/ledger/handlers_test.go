package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalledger "github.com/vendorhub/ledger-backend/internal/ledger"
	"github.com/vendorhub/ledger-backend/pkg/db/models"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
	"github.com/vendorhub/ledger-backend/pkg/logger"
	"github.com/vendorhub/ledger-backend/pkg/types"
)

type testLedgerService struct {
	createFn func(ctx context.Context, input internalledger.CreateFromSaleInput) (*models.CommissionTransaction, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.CommissionTransaction, error)
	clearFn  func(ctx context.Context, id uuid.UUID, actorID string) (*models.CommissionTransaction, error)
	refundFn func(ctx context.Context, input internalledger.ProcessRefundInput) (*internalledger.RefundResult, error)
	sweepFn  func(ctx context.Context, now time.Time, batchSize int) (int, error)
}

func (s *testLedgerService) CreateFromSale(ctx context.Context, input internalledger.CreateFromSaleInput) (*models.CommissionTransaction, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s *testLedgerService) Get(ctx context.Context, id uuid.UUID) (*models.CommissionTransaction, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, nil
}

func (s *testLedgerService) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) MarkCleared(ctx context.Context, id uuid.UUID, actorID string) (*models.CommissionTransaction, error) {
	if s.clearFn != nil {
		return s.clearFn(ctx, id, actorID)
	}
	return nil, nil
}

func (s *testLedgerService) ProcessRefund(ctx context.Context, input internalledger.ProcessRefundInput) (*internalledger.RefundResult, error) {
	if s.refundFn != nil {
		return s.refundFn(ctx, input)
	}
	return nil, nil
}

func (s *testLedgerService) OpenDispute(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) ResolveDispute(ctx context.Context, id uuid.UUID, actorID string, favorVendor bool) (*models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) Cancel(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) Reserve(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) MarkPaymentSettled(ctx context.Context, id uuid.UUID, actorID string, directClear bool) (*models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) MarkReleased(ctx context.Context, id, withdrawalID uuid.UUID, actorID string) (*models.CommissionTransaction, error) {
	return nil, nil
}

func (s *testLedgerService) ClearDuePending(ctx context.Context, now time.Time, batchSize int) (int, error) {
	if s.sweepFn != nil {
		return s.sweepFn(ctx, now, batchSize)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withTransactionParam(req *http.Request, id uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("transactionId", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func sampleEntry() *models.CommissionTransaction {
	return &models.CommissionTransaction{
		ID:              uuid.New(),
		TransactionCode: "COM-20250310-000001",
		OrderID:         uuid.New(),
		OrderNumber:     "ORD-1042",
		VendorID:        uuid.New(),
		ProductID:       uuid.New(),
		ProductName:     "Walnut Desk Organizer",
		ProductSKU:      "SKU-DESK-01",
		Quantity:        2,
		GrossAmount:     decimal.NewFromInt(100),
		CommissionRate:  decimal.NewFromInt(12),
		CommissionType:  enums.CommissionTypePercentage,
		CommissionAmount: decimal.NewFromInt(12),
		VendorEarnings:   decimal.NewFromInt(88),
		PlatformEarnings: decimal.NewFromInt(12),
		Currency:         enums.CurrencyUSD,
		Status:           enums.TransactionStatusPending,
		Category:         enums.TransactionCategorySale,
	}
}

func TestCreateTransactionSuccess(t *testing.T) {
	var captured internalledger.CreateFromSaleInput
	svc := &testLedgerService{
		createFn: func(ctx context.Context, input internalledger.CreateFromSaleInput) (*models.CommissionTransaction, error) {
			captured = input
			return sampleEntry(), nil
		},
	}

	body := `{
		"order_id": "` + uuid.NewString() + `",
		"order_number": "ORD-1042",
		"vendor_id": "` + uuid.NewString() + `",
		"product_id": "` + uuid.NewString() + `",
		"product_name": "Walnut Desk Organizer",
		"product_sku": "SKU-DESK-01",
		"quantity": 2,
		"unit_price": "50",
		"currency": "USD",
		"vendor": {"commission_rate": "12", "commission_type": "percentage", "subscription_tier": "gold"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions", strings.NewReader(body))
	resp := httptest.NewRecorder()

	CreateTransaction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Quantity != 2 {
		t.Fatalf("unexpected quantity %d", captured.Quantity)
	}
	if !captured.UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected unit price %s", captured.UnitPrice)
	}
	if captured.Vendor.SubscriptionTier != enums.SubscriptionTierGold {
		t.Fatalf("unexpected tier %s", captured.Vendor.SubscriptionTier)
	}

	var envelope struct {
		Data transactionResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.TransactionCode != "COM-20250310-000001" {
		t.Fatalf("unexpected code %s", envelope.Data.TransactionCode)
	}
}

func TestCreateTransactionRejectsBadBody(t *testing.T) {
	svc := &testLedgerService{
		createFn: func(ctx context.Context, input internalledger.CreateFromSaleInput) (*models.CommissionTransaction, error) {
			t.Fatal("service must not be called for invalid payloads")
			return nil, nil
		},
	}

	body := `{"order_id": "not-a-uuid", "order_number": "ORD-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions", strings.NewReader(body))
	resp := httptest.NewRecorder()

	CreateTransaction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestRefundTransactionOverRefund(t *testing.T) {
	entryID := uuid.New()
	svc := &testLedgerService{
		refundFn: func(ctx context.Context, input internalledger.ProcessRefundInput) (*internalledger.RefundResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeOverRefund, "refund exceeds remaining refundable amount of 70.00 USD")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions/"+entryID.String()+"/refund", strings.NewReader(`{"amount": "80"}`))
	req = withTransactionParam(req, entryID)
	resp := httptest.NewRecorder()

	RefundTransaction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeOverRefund) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestRefundTransactionPassesAmount(t *testing.T) {
	entryID := uuid.New()
	var captured internalledger.ProcessRefundInput
	svc := &testLedgerService{
		refundFn: func(ctx context.Context, input internalledger.ProcessRefundInput) (*internalledger.RefundResult, error) {
			captured = input
			source := sampleEntry()
			reversal := sampleEntry()
			return &internalledger.RefundResult{Source: source, Reversal: reversal}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions/"+entryID.String()+"/refund", strings.NewReader(`{"amount": "30", "note": "buyer return"}`))
	req = withTransactionParam(req, entryID)
	resp := httptest.NewRecorder()

	RefundTransaction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.TransactionID != entryID {
		t.Fatalf("unexpected transaction id %s", captured.TransactionID)
	}
	if !captured.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected amount %s", captured.Amount)
	}
	if captured.Note != "buyer return" {
		t.Fatalf("unexpected note %q", captured.Note)
	}
}

func TestClearTransactionStateConflict(t *testing.T) {
	entryID := uuid.New()
	svc := &testLedgerService{
		clearFn: func(ctx context.Context, id uuid.UUID, actorID string) (*models.CommissionTransaction, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "entry not in expected state: current=released requested=cleared")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions/"+entryID.String()+"/clear", nil)
	req = withTransactionParam(req, entryID)
	resp := httptest.NewRecorder()

	ClearTransaction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestGetTransactionRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/transactions/nope", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("transactionId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	resp := httptest.NewRecorder()

	GetTransaction(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestSweepClearances(t *testing.T) {
	svc := &testLedgerService{
		sweepFn: func(ctx context.Context, now time.Time, batchSize int) (int, error) {
			if batchSize != 500 {
				t.Fatalf("unexpected batch size %d", batchSize)
			}
			return 12, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/sweep", nil)
	resp := httptest.NewRecorder()

	SweepClearances(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data sweepResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.EntriesCleared != 12 {
		t.Fatalf("unexpected cleared count %d", envelope.Data.EntriesCleared)
	}
}
