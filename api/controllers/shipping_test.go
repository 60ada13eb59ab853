package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vendorhub/ledger-backend/internal/shipping"
	"github.com/vendorhub/ledger-backend/pkg/logger"
)

func TestShippingQuoteOntarioCart(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := ShippingQuote(shipping.NewCalculator(logg), logg)

	body := `{
		"items": [
			{"weight_kg": 0.25, "category": "clothing", "quantity": 2},
			{"weight_kg": 0.4, "category": "electronics", "quantity": 1}
		],
		"destination": {"country": "CA", "region": "ON", "city": "Toronto"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/quote", strings.NewReader(body))
	resp := httptest.NewRecorder()

	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data shippingQuoteResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Zone != "local" {
		t.Fatalf("unexpected zone %s", envelope.Data.Zone)
	}
	if got := envelope.Data.Standard.Price.StringFixed(2); got != "25.20" {
		t.Fatalf("unexpected standard price %s", got)
	}
	if got := envelope.Data.Express.Price.StringFixed(2); got != "37.80" {
		t.Fatalf("unexpected express price %s", got)
	}
}

func TestShippingQuoteRejectsEmptyCart(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := ShippingQuote(shipping.NewCalculator(logg), logg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/quote", strings.NewReader(`{"items": [], "destination": {"country": "CA"}}`))
	resp := httptest.NewRecorder()

	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
