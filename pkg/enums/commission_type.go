package enums

import "fmt"

// CommissionType selects how a vendor's commission is computed.
type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"
)

var validCommissionTypes = []CommissionType{
	CommissionTypePercentage,
	CommissionTypeFixed,
}

// String implements fmt.Stringer.
func (t CommissionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CommissionType.
func (t CommissionType) IsValid() bool {
	for _, candidate := range validCommissionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCommissionType converts raw input into a CommissionType.
func ParseCommissionType(value string) (CommissionType, error) {
	for _, candidate := range validCommissionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid commission type %q", value)
}
