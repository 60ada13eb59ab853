package shipping

import "github.com/vendorhub/ledger-backend/pkg/enums"

// DeliveryEstimate is the static business-day window per zone and speed.
type DeliveryEstimate struct {
	StandardMinDays int
	StandardMaxDays int
	ExpressMinDays  int
	ExpressMaxDays  int
}

var deliveryEstimates = map[enums.ShippingZone]DeliveryEstimate{
	enums.ShippingZoneLocal:         {StandardMinDays: 5, StandardMaxDays: 8, ExpressMinDays: 3, ExpressMaxDays: 5},
	enums.ShippingZoneWestern:       {StandardMinDays: 7, StandardMaxDays: 10, ExpressMinDays: 4, ExpressMaxDays: 6},
	enums.ShippingZoneUSA:           {StandardMinDays: 7, StandardMaxDays: 12, ExpressMinDays: 4, ExpressMaxDays: 7},
	enums.ShippingZoneInternational: {StandardMinDays: 14, StandardMaxDays: 21, ExpressMinDays: 5, ExpressMaxDays: 12},
}

func estimateFor(zone enums.ShippingZone) DeliveryEstimate {
	if estimate, ok := deliveryEstimates[zone]; ok {
		return estimate
	}
	return deliveryEstimates[enums.ShippingZoneInternational]
}
