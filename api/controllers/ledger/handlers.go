package ledger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendorhub/ledger-backend/api/middleware"
	"github.com/vendorhub/ledger-backend/api/responses"
	"github.com/vendorhub/ledger-backend/api/validators"
	internalledger "github.com/vendorhub/ledger-backend/internal/ledger"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
	"github.com/vendorhub/ledger-backend/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CreateTransaction records a sale in the ledger. Replays of the same sale line
// return the original entry.
func CreateTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTransactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput(middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateFromSale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toTransactionResponse(entry))
	}
}

// GetTransaction fetches a single ledger entry by id.
func GetTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// ListVendorTransactions pages through a vendor's ledger entries, newest first.
func ListVendorTransactions(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(chi.URLParam(r, "vendorId"), "vendor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListByVendor(r.Context(), vendorID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionList(entries))
	}
}

// ClearTransaction promotes a pending entry to cleared ahead of its hold.
func ClearTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.MarkCleared(r.Context(), id, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// RefundTransaction applies a full or partial refund against a sale entry.
func RefundTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessRefund(r.Context(), internalledger.ProcessRefundInput{
			TransactionID: id,
			Amount:        req.Amount,
			ActorID:       middleware.ActorFromContext(r.Context()),
			Note:          req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, refundResponse{
			Source:   toTransactionResponse(result.Source),
			Reversal: toTransactionResponse(result.Reversal),
		})
	}
}

// DisputeTransaction opens a chargeback hold on an entry.
func DisputeTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req disputeRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		entry, err := svc.OpenDispute(r.Context(), id, middleware.ActorFromContext(r.Context()), req.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// ResolveDispute settles an open dispute for or against the vendor.
func ResolveDispute(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req resolveDisputeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.ResolveDispute(r.Context(), id, middleware.ActorFromContext(r.Context()), req.FavorVendor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// CancelTransaction voids a pending entry before fulfillment.
func CancelTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		entry, err := svc.Cancel(r.Context(), id, middleware.ActorFromContext(r.Context()), req.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// ReserveTransaction places an administrative hold on an entry.
func ReserveTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reserveRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		entry, err := svc.Reserve(r.Context(), id, middleware.ActorFromContext(r.Context()), req.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// ReleaseTransaction sweeps a cleared entry into a withdrawal batch.
func ReleaseTransaction(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req releaseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withdrawalID, err := validators.ParsePathUUID(req.WithdrawalID, "withdrawal id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.MarkReleased(r.Context(), id, withdrawalID, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransactionResponse(entry))
	}
}

// SweepClearances promotes all due pending entries, for external cron triggers.
func SweepClearances(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := sweepRequest{BatchSize: 500}
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if req.BatchSize <= 0 {
				req.BatchSize = 500
			}
		}

		now := time.Now().UTC()
		cleared, err := svc.ClearDuePending(r.Context(), now, req.BatchSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearance sweep"))
			return
		}
		responses.WriteSuccess(w, sweepResponse{EntriesCleared: cleared, SweptAt: now})
	}
}
