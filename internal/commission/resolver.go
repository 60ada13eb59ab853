package commission

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorhub/ledger-backend/pkg/enums"
)

// Default applied when a vendor has no negotiated commission configuration.
var defaultRate = decimal.NewFromInt(12)

const (
	clearanceDaysPlatinum = 3
	clearanceDaysGold     = 5
	clearanceDaysDefault  = 7
)

// VendorProfile carries the vendor attributes the resolver reads. Vendor
// persistence lives upstream; callers pass a snapshot.
type VendorProfile struct {
	VendorID         uuid.UUID
	CommissionRate   *decimal.Decimal
	CommissionType   enums.CommissionType
	SubscriptionTier enums.SubscriptionTier
}

// Rule is the commission configuration applied to a single sale.
type Rule struct {
	Rate          decimal.Decimal
	Type          enums.CommissionType
	ClearanceDays int
}

// Resolve returns the commission rule for the vendor. Pure lookup, no side
// effects: unset rate falls back to 12% and the clearance hold follows the
// subscription tier.
func Resolve(vendor VendorProfile) Rule {
	rule := Rule{
		Rate:          defaultRate,
		Type:          enums.CommissionTypePercentage,
		ClearanceDays: clearanceDaysDefault,
	}

	if vendor.CommissionRate != nil && vendor.CommissionRate.IsPositive() {
		rule.Rate = *vendor.CommissionRate
		if vendor.CommissionType.IsValid() {
			rule.Type = vendor.CommissionType
		}
	}

	switch vendor.SubscriptionTier {
	case enums.SubscriptionTierPlatinum:
		rule.ClearanceDays = clearanceDaysPlatinum
	case enums.SubscriptionTierGold:
		rule.ClearanceDays = clearanceDaysGold
	}

	return rule
}
