package enums

import "fmt"

// ShippingZone is the distance classification used to price delivery.
type ShippingZone string

const (
	ShippingZoneLocal         ShippingZone = "local"
	ShippingZoneWestern       ShippingZone = "western"
	ShippingZoneUSA           ShippingZone = "usa"
	ShippingZoneInternational ShippingZone = "international"
)

var validShippingZones = []ShippingZone{
	ShippingZoneLocal,
	ShippingZoneWestern,
	ShippingZoneUSA,
	ShippingZoneInternational,
}

// String implements fmt.Stringer.
func (z ShippingZone) String() string {
	return string(z)
}

// IsValid reports whether the value is a known ShippingZone.
func (z ShippingZone) IsValid() bool {
	for _, candidate := range validShippingZones {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseShippingZone converts raw input into a ShippingZone.
func ParseShippingZone(value string) (ShippingZone, error) {
	for _, candidate := range validShippingZones {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping zone %q", value)
}
