package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendorhub/ledger-backend/api/responses"
	"github.com/vendorhub/ledger-backend/api/validators"
	"github.com/vendorhub/ledger-backend/internal/shipping"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	"github.com/vendorhub/ledger-backend/pkg/logger"
)

type shippingLineItemPayload struct {
	WeightKg float64 `json:"weight_kg" validate:"min=0"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
}

type shippingQuoteRequest struct {
	Items       []shippingLineItemPayload `json:"items" validate:"required,min=1,dive"`
	Destination struct {
		Country string `json:"country"`
		Region  string `json:"region"`
		City    string `json:"city"`
	} `json:"destination"`
}

type shippingOptionResponse struct {
	Price            decimal.Decimal `json:"price"`
	Currency         enums.Currency  `json:"currency"`
	MinDays          int             `json:"min_days"`
	MaxDays          int             `json:"max_days"`
	EarliestDelivery time.Time       `json:"earliest_delivery"`
	LatestDelivery   time.Time       `json:"latest_delivery"`
}

type shippingQuoteResponse struct {
	Zone     enums.ShippingZone     `json:"zone"`
	Standard shippingOptionResponse `json:"standard"`
	Express  shippingOptionResponse `json:"express"`
}

// ShippingQuote prices standard and express delivery for a cart.
func ShippingQuote(calc *shipping.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shippingQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]shipping.LineItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, shipping.LineItem{
				WeightKg: item.WeightKg,
				Category: item.Category,
				Quantity: item.Quantity,
			})
		}

		quote, err := calc.Quote(r.Context(), shipping.QuoteInput{
			Items: items,
			Destination: shipping.Destination{
				Country: req.Destination.Country,
				Region:  req.Destination.Region,
				City:    req.Destination.City,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shippingQuoteResponse{
			Zone:     quote.Zone,
			Standard: toShippingOption(quote.Standard),
			Express:  toShippingOption(quote.Express),
		})
	}
}

func toShippingOption(opt shipping.Option) shippingOptionResponse {
	return shippingOptionResponse{
		Price:            opt.Price,
		Currency:         opt.Currency,
		MinDays:          opt.MinDays,
		MaxDays:          opt.MaxDays,
		EarliestDelivery: opt.EarliestDelivery,
		LatestDelivery:   opt.LatestDelivery,
	}
}
