package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FeeBreakdown itemizes the fees attached to a commission transaction.
// Totals are always derived from the components, never stored separately.
type FeeBreakdown struct {
	Transaction    decimal.Decimal `json:"transaction"`
	PaymentGateway decimal.Decimal `json:"payment_gateway"`
	Shipping       decimal.Decimal `json:"shipping"`
	Tax            decimal.Decimal `json:"tax"`
	Other          decimal.Decimal `json:"other"`
}

// Total sums the fee components.
func (f FeeBreakdown) Total() decimal.Decimal {
	return f.Transaction.
		Add(f.PaymentGateway).
		Add(f.Shipping).
		Add(f.Tax).
		Add(f.Other)
}

// Negated returns the breakdown with every component negated.
func (f FeeBreakdown) Negated() FeeBreakdown {
	return FeeBreakdown{
		Transaction:    f.Transaction.Neg(),
		PaymentGateway: f.PaymentGateway.Neg(),
		Shipping:       f.Shipping.Neg(),
		Tax:            f.Tax.Neg(),
		Other:          f.Other.Neg(),
	}
}

// Value serializes the breakdown to JSON.
func (f FeeBreakdown) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan decodes JSONB into the breakdown struct.
func (f *FeeBreakdown) Scan(value interface{}) error {
	if value == nil {
		*f = FeeBreakdown{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, f)
}
