package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendorhub/ledger-backend/api/controllers"
	ledgercontrollers "github.com/vendorhub/ledger-backend/api/controllers/ledger"
	"github.com/vendorhub/ledger-backend/api/middleware"
	"github.com/vendorhub/ledger-backend/internal/earnings"
	internalledger "github.com/vendorhub/ledger-backend/internal/ledger"
	"github.com/vendorhub/ledger-backend/internal/shipping"
	"github.com/vendorhub/ledger-backend/pkg/config"
	"github.com/vendorhub/ledger-backend/pkg/db"
	"github.com/vendorhub/ledger-backend/pkg/logger"
	"github.com/vendorhub/ledger-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	ledgerService internalledger.Service,
	earningsService earnings.Service,
	shippingCalculator *shipping.Calculator,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))

		r.Route("/ledger", func(r chi.Router) {
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", ledgercontrollers.CreateTransaction(ledgerService, logg))
				r.Get("/{transactionId}", ledgercontrollers.GetTransaction(ledgerService, logg))
				r.Post("/{transactionId}/clear", ledgercontrollers.ClearTransaction(ledgerService, logg))
				r.Post("/{transactionId}/refund", ledgercontrollers.RefundTransaction(ledgerService, logg))
				r.Post("/{transactionId}/dispute", ledgercontrollers.DisputeTransaction(ledgerService, logg))
				r.Post("/{transactionId}/dispute/resolve", ledgercontrollers.ResolveDispute(ledgerService, logg))
				r.Post("/{transactionId}/cancel", ledgercontrollers.CancelTransaction(ledgerService, logg))
				r.Post("/{transactionId}/reserve", ledgercontrollers.ReserveTransaction(ledgerService, logg))
				r.Post("/{transactionId}/release", ledgercontrollers.ReleaseTransaction(ledgerService, logg))
			})
			r.Get("/vendors/{vendorId}/transactions", ledgercontrollers.ListVendorTransactions(ledgerService, logg))
			r.Post("/sweep", ledgercontrollers.SweepClearances(ledgerService, logg))
		})

		r.Route("/earnings", func(r chi.Router) {
			r.Get("/{vendorId}", controllers.EarningsSummary(earningsService, logg))
			r.Get("/{vendorId}/monthly", controllers.EarningsMonthly(earningsService, logg))
		})

		r.Post("/shipping/quote", controllers.ShippingQuote(shippingCalculator, logg))
	})

	return r
}
