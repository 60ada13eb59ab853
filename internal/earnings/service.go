package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
	"github.com/vendorhub/ledger-backend/pkg/logger"
)

const earliestSummaryYear = 2020

// Service exposes vendor-facing earnings reporting.
type Service interface {
	Summary(ctx context.Context, vendorID uuid.UUID) (*Summary, error)
	Monthly(ctx context.Context, vendorID uuid.UUID, year int, month time.Month) (*MonthlySummary, error)
}

// ServiceParams configure the earnings service.
type ServiceParams struct {
	Logger *logger.Logger
	Repo   Repository
}

type service struct {
	logg *logger.Logger
	repo Repository
	now  func() time.Time
}

// NewService wires an earnings service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("earnings repository required")
	}
	return &service{logg: params.Logger, repo: params.Repo, now: time.Now}, nil
}

func (s *service) Summary(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	return s.repo.Summarize(ctx, vendorID)
}

func (s *service) Monthly(ctx context.Context, vendorID uuid.UUID, year int, month time.Month) (*MonthlySummary, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if month < time.January || month > time.December {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}
	if year < earliestSummaryYear || year > s.now().UTC().Year() {
		return nil, pkgerrors.New(
			pkgerrors.CodeValidation,
			fmt.Sprintf("year must be between %d and %d", earliestSummaryYear, s.now().UTC().Year()),
		)
	}
	return s.repo.SummarizeMonth(ctx, vendorID, year, month)
}
