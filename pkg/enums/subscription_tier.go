package enums

import "fmt"

// SubscriptionTier is the vendor's plan level; it controls the clearance hold.
type SubscriptionTier string

const (
	SubscriptionTierStandard SubscriptionTier = "standard"
	SubscriptionTierGold     SubscriptionTier = "gold"
	SubscriptionTierPlatinum SubscriptionTier = "platinum"
)

var validSubscriptionTiers = []SubscriptionTier{
	SubscriptionTierStandard,
	SubscriptionTierGold,
	SubscriptionTierPlatinum,
}

// String implements fmt.Stringer.
func (t SubscriptionTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SubscriptionTier.
func (t SubscriptionTier) IsValid() bool {
	for _, candidate := range validSubscriptionTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSubscriptionTier converts raw input into a SubscriptionTier.
func ParseSubscriptionTier(value string) (SubscriptionTier, error) {
	for _, candidate := range validSubscriptionTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription tier %q", value)
}
