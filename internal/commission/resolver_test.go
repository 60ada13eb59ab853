package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vendorhub/ledger-backend/pkg/enums"
)

func TestResolve_Defaults(t *testing.T) {
	rule := Resolve(VendorProfile{})

	assert.True(t, rule.Rate.Equal(decimal.NewFromInt(12)), "rate %s", rule.Rate)
	assert.Equal(t, enums.CommissionTypePercentage, rule.Type)
	assert.Equal(t, 7, rule.ClearanceDays)
}

func TestResolve_VendorConfiguration(t *testing.T) {
	rate := decimal.NewFromFloat(2.5)
	rule := Resolve(VendorProfile{
		CommissionRate: &rate,
		CommissionType: enums.CommissionTypeFixed,
	})

	assert.True(t, rule.Rate.Equal(rate))
	assert.Equal(t, enums.CommissionTypeFixed, rule.Type)
}

func TestResolve_NonPositiveRateFallsBack(t *testing.T) {
	rate := decimal.Zero
	rule := Resolve(VendorProfile{
		CommissionRate: &rate,
		CommissionType: enums.CommissionTypeFixed,
	})

	assert.True(t, rule.Rate.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, enums.CommissionTypePercentage, rule.Type)
}

func TestResolve_ClearanceDaysByTier(t *testing.T) {
	tests := []struct {
		tier enums.SubscriptionTier
		want int
	}{
		{enums.SubscriptionTierPlatinum, 3},
		{enums.SubscriptionTierGold, 5},
		{enums.SubscriptionTierStandard, 7},
		{enums.SubscriptionTier("unknown"), 7},
	}

	for _, tc := range tests {
		t.Run(string(tc.tier), func(t *testing.T) {
			rule := Resolve(VendorProfile{SubscriptionTier: tc.tier})
			assert.Equal(t, tc.want, rule.ClearanceDays)
		})
	}
}
