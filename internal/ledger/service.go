package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vendorhub/ledger-backend/internal/commission"
	"github.com/vendorhub/ledger-backend/pkg/db/models"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
	"github.com/vendorhub/ledger-backend/pkg/logger"
	"github.com/vendorhub/ledger-backend/pkg/types"
)

const transactionCodeFormat = "COM-%s-%06d"

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the operations that move money records through the ledger.
type Service interface {
	CreateFromSale(ctx context.Context, input CreateFromSaleInput) (*models.CommissionTransaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CommissionTransaction, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.CommissionTransaction, error)
	MarkCleared(ctx context.Context, id uuid.UUID, actorID string) (*models.CommissionTransaction, error)
	ProcessRefund(ctx context.Context, input ProcessRefundInput) (*RefundResult, error)
	OpenDispute(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error)
	ResolveDispute(ctx context.Context, id uuid.UUID, actorID string, favorVendor bool) (*models.CommissionTransaction, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error)
	Reserve(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error)
	MarkPaymentSettled(ctx context.Context, id uuid.UUID, actorID string, directClear bool) (*models.CommissionTransaction, error)
	MarkReleased(ctx context.Context, id, withdrawalID uuid.UUID, actorID string) (*models.CommissionTransaction, error)
	ClearDuePending(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// CreateFromSaleInput is the immutable order-line snapshot a sale entry is
// derived from, plus the vendor profile the commission rule is resolved against.
type CreateFromSaleInput struct {
	OrderID          uuid.UUID
	OrderNumber      string
	VendorID         uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductSKU       string
	Quantity         int
	UnitPrice        decimal.Decimal
	Currency         enums.Currency
	LotNumber        int
	VariationID      *uuid.UUID
	VariationDetails *types.JSONMap
	Fees             types.FeeBreakdown
	Vendor           commission.VendorProfile
	ActorID          string
}

// ProcessRefundInput describes a full or partial refund against a sale entry.
type ProcessRefundInput struct {
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	ActorID       string
	Note          string
}

// RefundResult carries both sides of a processed refund.
type RefundResult struct {
	Source   *models.CommissionTransaction
	Reversal *models.CommissionTransaction
}

// ServiceParams configure the ledger service.
type ServiceParams struct {
	Logger *logger.Logger
	DB     txRunner
	Repo   Repository
}

type service struct {
	logg *logger.Logger
	db   txRunner
	repo Repository
	now  func() time.Time
}

// NewService wires a ledger service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repo,
		now:  time.Now,
	}, nil
}

func (s *service) CreateFromSale(ctx context.Context, input CreateFromSaleInput) (*models.CommissionTransaction, error) {
	if err := validateCreateFromSale(input); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}

	rule := commission.Resolve(input.Vendor)

	gross := input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2)
	commissionAmount := commissionFor(gross, rule, input.Quantity)
	vendorEarnings := gross.Sub(commissionAmount)

	var created *models.CommissionTransaction
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := s.now().UTC()
		code, err := s.nextTransactionCode(ctx, repo, now)
		if err != nil {
			return err
		}

		entry := &models.CommissionTransaction{
			ID:              uuid.New(),
			TransactionCode: code,

			OrderID:     input.OrderID,
			OrderNumber: input.OrderNumber,
			VendorID:    input.VendorID,
			ProductID:   input.ProductID,
			LotNumber:   input.LotNumber,

			ProductName:      input.ProductName,
			ProductSKU:       input.ProductSKU,
			Quantity:         input.Quantity,
			VariationID:      input.VariationID,
			VariationDetails: input.VariationDetails,

			GrossAmount:      gross,
			CommissionRate:   rule.Rate,
			CommissionType:   rule.Type,
			CommissionAmount: commissionAmount,
			VendorEarnings:   vendorEarnings,
			PlatformEarnings: commissionAmount,
			Fees:             input.Fees,
			TotalFees:        input.Fees.Total(),
			Currency:         currency,

			Status: enums.TransactionStatusPending,
			StatusHistory: types.StatusHistory{}.Append(types.StatusChange{
				Status:  enums.TransactionStatusPending,
				Note:    "sale recorded",
				ActorID: input.ActorID,
				At:      now,
			}),
			ClearanceDays:  rule.ClearanceDays,
			ClearanceDate:  now.Add(time.Duration(rule.ClearanceDays) * 24 * time.Hour),
			Category:       enums.TransactionCategorySale,
			RefundedAmount: decimal.Zero,
		}

		if err := repo.Create(ctx, entry); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		// Duplicate creation is an idempotent no-op: hand back the entry the
		// winning request persisted.
		if pkgerrors.HasCode(err, pkgerrors.CodeDuplicateEntry) {
			existing, findErr := s.repo.FindBySaleIdentity(ctx, input.OrderID, input.VendorID, input.ProductID, input.LotNumber)
			if findErr != nil {
				return nil, err
			}
			logCtx := s.logg.WithTransactionCode(ctx, existing.TransactionCode)
			s.logg.Info(logCtx, "duplicate sale entry request resolved to existing entry")
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CommissionTransaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.CommissionTransaction, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	return s.repo.ListByVendor(ctx, vendorID, limit, offset)
}

func (s *service) MarkCleared(ctx context.Context, id uuid.UUID, actorID string) (*models.CommissionTransaction, error) {
	return s.transition(ctx, id, enums.TransactionStatusCleared, actorID, "funds cleared for withdrawal",
		func(entry *models.CommissionTransaction, updates map[string]any) {
			if entry.ClearedAt == nil {
				updates["cleared_at"] = s.now().UTC()
			}
		})
}

func (s *service) OpenDispute(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error) {
	if note == "" {
		note = "dispute opened"
	}
	return s.transition(ctx, id, enums.TransactionStatusDisputed, actorID, note, nil)
}

func (s *service) ResolveDispute(ctx context.Context, id uuid.UUID, actorID string, favorVendor bool) (*models.CommissionTransaction, error) {
	if favorVendor {
		return s.transition(ctx, id, enums.TransactionStatusCleared, actorID, "dispute resolved in vendor's favor",
			func(entry *models.CommissionTransaction, updates map[string]any) {
				if entry.ClearedAt == nil {
					updates["cleared_at"] = s.now().UTC()
				}
			})
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.ProcessRefund(ctx, ProcessRefundInput{
		TransactionID: id,
		Amount:        entry.RemainingRefundable(),
		ActorID:       actorID,
		Note:          "dispute resolved against vendor",
	})
	if err != nil {
		return nil, err
	}
	return result.Source, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error) {
	if note == "" {
		note = "order cancelled before fulfillment"
	}
	return s.transition(ctx, id, enums.TransactionStatusCancelled, actorID, note, nil)
}

func (s *service) Reserve(ctx context.Context, id uuid.UUID, actorID, note string) (*models.CommissionTransaction, error) {
	if note == "" {
		note = "funds placed on hold"
	}
	return s.transition(ctx, id, enums.TransactionStatusReserved, actorID, note, nil)
}

func (s *service) MarkPaymentSettled(ctx context.Context, id uuid.UUID, actorID string, directClear bool) (*models.CommissionTransaction, error) {
	if directClear {
		return s.MarkCleared(ctx, id, actorID)
	}
	return s.transition(ctx, id, enums.TransactionStatusPending, actorID, "payment settled, clearance hold started", nil)
}

func (s *service) MarkReleased(ctx context.Context, id, withdrawalID uuid.UUID, actorID string) (*models.CommissionTransaction, error) {
	if withdrawalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id is required")
	}
	return s.transition(ctx, id, enums.TransactionStatusReleased, actorID, "swept into withdrawal batch",
		func(entry *models.CommissionTransaction, updates map[string]any) {
			updates["withdrawal_id"] = withdrawalID
			updates["withdrawn_at"] = s.now().UTC()
		})
}

func (s *service) ProcessRefund(ctx context.Context, input ProcessRefundInput) (*RefundResult, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	var result *RefundResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.FindByID(ctx, input.TransactionID)
		if err != nil {
			return err
		}
		if entry.Category != enums.TransactionCategorySale {
			return pkgerrors.New(pkgerrors.CodeValidation, "only sale entries can be refunded")
		}
		if !TransitionAllowed(entry.Status, enums.TransactionStatusRefunded) {
			return stateConflictError(entry.Status, enums.TransactionStatusRefunded)
		}

		remaining := entry.RemainingRefundable()
		if input.Amount.GreaterThan(remaining) {
			return pkgerrors.New(
				pkgerrors.CodeOverRefund,
				fmt.Sprintf("refund exceeds remaining refundable amount of %s %s", remaining.StringFixed(2), entry.Currency),
			).WithDetails(map[string]any{
				"remaining_refundable": remaining.StringFixed(2),
				"requested":            input.Amount.StringFixed(2),
			})
		}

		now := s.now().UTC()
		ratio := input.Amount.Div(entry.GrossAmount)
		reversal, err := s.buildReversal(ctx, repo, entry, input, ratio, now)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, reversal); err != nil {
			return err
		}

		newRefunded := entry.RefundedAmount.Add(input.Amount)
		targetStatus := entry.Status
		history := entry.StatusHistory
		if newRefunded.GreaterThanOrEqual(entry.GrossAmount) {
			targetStatus = enums.TransactionStatusRefunded
			note := input.Note
			if note == "" {
				note = "fully refunded"
			}
			history = history.Append(types.StatusChange{
				Status:  targetStatus,
				Note:    note,
				ActorID: input.ActorID,
				At:      now,
			})
		}

		updates := map[string]any{
			"status":                  targetStatus,
			"status_history":          history,
			"is_refunded":             true,
			"refunded_amount":         newRefunded,
			"refunded_transaction_id": reversal.ID,
		}
		// Guarded on the pre-refund status and cumulative refunded amount: a
		// concurrent transition or refund rolls the whole refund back,
		// reversal included.
		if err := repo.UpdateRefundGuarded(ctx, entry.ID, entry.Status, entry.RefundedAmount, updates); err != nil {
			return err
		}

		source, err := repo.FindByID(ctx, entry.ID)
		if err != nil {
			return err
		}
		result = &RefundResult{Source: source, Reversal: reversal}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_code": result.Source.TransactionCode,
		"reversal_code":    result.Reversal.TransactionCode,
		"amount":           input.Amount.StringFixed(2),
	})
	s.logg.Info(logCtx, "refund processed")
	return result, nil
}

func (s *service) buildReversal(ctx context.Context, repo Repository, source *models.CommissionTransaction, input ProcessRefundInput, ratio decimal.Decimal, now time.Time) (*models.CommissionTransaction, error) {
	code, err := s.nextTransactionCode(ctx, repo, now)
	if err != nil {
		return nil, err
	}

	note := input.Note
	if note == "" {
		note = fmt.Sprintf("refund against %s", source.TransactionCode)
	}

	return &models.CommissionTransaction{
		ID:              uuid.New(),
		TransactionCode: code,

		OrderID:     source.OrderID,
		OrderNumber: source.OrderNumber,
		VendorID:    source.VendorID,
		ProductID:   source.ProductID,
		LotNumber:   source.LotNumber,

		ProductName:      source.ProductName,
		ProductSKU:       source.ProductSKU,
		Quantity:         source.Quantity,
		VariationID:      source.VariationID,
		VariationDetails: source.VariationDetails,

		GrossAmount:      input.Amount.Neg(),
		CommissionRate:   source.CommissionRate,
		CommissionType:   source.CommissionType,
		CommissionAmount: source.CommissionAmount.Mul(ratio).Round(2).Neg(),
		VendorEarnings:   source.VendorEarnings.Mul(ratio).Round(2).Neg(),
		PlatformEarnings: source.PlatformEarnings.Mul(ratio).Round(2).Neg(),
		Currency:         source.Currency,

		Status: enums.TransactionStatusCleared,
		StatusHistory: types.StatusHistory{}.Append(types.StatusChange{
			Status:  enums.TransactionStatusCleared,
			Note:    note,
			ActorID: input.ActorID,
			At:      now,
		}),
		ClearanceDate: now,
		ClearedAt:     &now,

		Category:              enums.TransactionCategoryRefund,
		OriginalTransactionID: &source.ID,
		RefundedAmount:        decimal.Zero,
	}, nil
}

// ClearDuePending promotes every pending entry whose clearance date has passed.
// Entries that lose a concurrent race are skipped, not retried: the winner
// already moved them.
func (s *service) ClearDuePending(ctx context.Context, now time.Time, batchSize int) (int, error) {
	due, err := s.repo.FindDuePending(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("query due pending entries: %w", err)
	}

	cleared := 0
	var failures error
	for _, entry := range due {
		if _, err := s.MarkCleared(ctx, entry.ID, "clearance-scheduler"); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) || pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				logCtx := s.logg.WithTransactionCode(ctx, entry.TransactionCode)
				s.logg.Warn(logCtx, "skipping entry already transitioned by a concurrent run")
				continue
			}
			failures = multierr.Append(failures, fmt.Errorf("clear entry %s: %w", entry.TransactionCode, err))
			continue
		}
		cleared++
	}
	return cleared, failures
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.TransactionStatus, actorID, note string, mutate func(entry *models.CommissionTransaction, updates map[string]any)) (*models.CommissionTransaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	var updated *models.CommissionTransaction
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !TransitionAllowed(entry.Status, target) {
			return stateConflictError(entry.Status, target)
		}

		history := entry.StatusHistory.Append(types.StatusChange{
			Status:  target,
			Note:    note,
			ActorID: actorID,
			At:      s.now().UTC(),
		})
		updates := map[string]any{
			"status":         target,
			"status_history": history,
		}
		if mutate != nil {
			mutate(entry, updates)
		}

		if err := repo.UpdateGuarded(ctx, entry.ID, entry.Status, updates); err != nil {
			return err
		}

		updated, err = repo.FindByID(ctx, entry.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) nextTransactionCode(ctx context.Context, repo Repository, now time.Time) (string, error) {
	day := now.Format("20060102")
	seq, err := repo.NextDailySequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("advance daily sequence: %w", err)
	}
	return fmt.Sprintf(transactionCodeFormat, day, seq), nil
}

func commissionFor(gross decimal.Decimal, rule commission.Rule, quantity int) decimal.Decimal {
	if rule.Type == enums.CommissionTypeFixed {
		return rule.Rate.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	}
	return gross.Mul(rule.Rate).Div(oneHundred).Round(2)
}

func validateCreateFromSale(input CreateFromSaleInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.VendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.OrderNumber == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	if input.ProductName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.Currency != "" && !input.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}
	return nil
}
