package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendorhub/ledger-backend/api/responses"
	"github.com/vendorhub/ledger-backend/api/validators"
	"github.com/vendorhub/ledger-backend/internal/earnings"
	"github.com/vendorhub/ledger-backend/pkg/logger"
)

// EarningsSummary returns a vendor's balance breakdown.
func EarningsSummary(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(chi.URLParam(r, "vendorId"), "vendor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// EarningsMonthly returns one calendar month of vendor activity grouped by
// entry status. Defaults to the current month when year/month are omitted.
func EarningsMonthly(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(chi.URLParam(r, "vendorId"), "vendor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currentYear, currentMonth, _ := time.Now().UTC().Date()
		year, err := validators.ParseQueryInt(r, "year", currentYear, 2020, currentYear)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.ParseQueryInt(r, "month", int(currentMonth), 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Monthly(r.Context(), vendorID, year, time.Month(month))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
