package shipping

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
	"github.com/vendorhub/ledger-backend/pkg/logger"
)

var (
	baseFirstUnit     = decimal.NewFromInt(10)
	basePerExtraUnit  = decimal.NewFromInt(3)
	expressMultiplier = decimal.NewFromFloat(1.5)
)

var zoneSurcharges = map[enums.ShippingZone]decimal.Decimal{
	enums.ShippingZoneLocal:         decimal.Zero,
	enums.ShippingZoneWestern:       decimal.NewFromInt(5),
	enums.ShippingZoneUSA:           decimal.NewFromInt(8),
	enums.ShippingZoneInternational: decimal.NewFromInt(15),
}

type weightBracket struct {
	maxKg     float64
	surcharge decimal.Decimal
}

var weightBrackets = []weightBracket{
	{0.5, decimal.Zero},
	{1.0, decimal.NewFromInt(2)},
	{2.0, decimal.NewFromInt(4)},
	{5.0, decimal.NewFromInt(6)},
	{10.0, decimal.NewFromInt(10)},
}

var overweightSurcharge = decimal.NewFromInt(15)

var categoryMultipliers = map[string]decimal.Decimal{
	"clothing": decimal.NewFromInt(1), "apparel": decimal.NewFromInt(1), "fashion": decimal.NewFromInt(1),
	"art": decimal.NewFromFloat(1.3), "print": decimal.NewFromFloat(1.3), "poster": decimal.NewFromFloat(1.3), "painting": decimal.NewFromFloat(1.3),
	"electronics": decimal.NewFromFloat(1.4), "tech": decimal.NewFromFloat(1.4), "device": decimal.NewFromFloat(1.4),
}

// LineItem is one cart line the quote covers.
type LineItem struct {
	WeightKg float64
	Category string
	Quantity int
}

// Destination is the shipping address the quote targets.
type Destination struct {
	Country string
	Region  string
	City    string
}

// QuoteInput bundles the cart and destination.
type QuoteInput struct {
	Items       []LineItem
	Destination Destination
}

// Option is a priced delivery choice with its business-day window.
type Option struct {
	Price            decimal.Decimal
	Currency         enums.Currency
	MinDays          int
	MaxDays          int
	EarliestDelivery time.Time
	LatestDelivery   time.Time
}

// Quote is the full shipping estimate for a cart.
type Quote struct {
	Zone     enums.ShippingZone
	Standard Option
	Express  Option
}

// Calculator prices shipping. Deterministic, no I/O.
type Calculator struct {
	logg *logger.Logger
	now  func() time.Time
}

// NewCalculator builds a shipping calculator.
func NewCalculator(logg *logger.Logger) *Calculator {
	return &Calculator{logg: logg, now: time.Now}
}

// Quote computes standard and express shipping for the cart.
func (c *Calculator) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart required")
	}

	totalUnits := 0
	totalWeightKg := 0.0
	multiplier := decimal.NewFromInt(1)
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
		}
		if item.WeightKg < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item weight cannot be negative")
		}
		totalUnits += item.Quantity
		totalWeightKg += item.WeightKg * float64(item.Quantity)
		if m := categoryMultiplier(item.Category); m.GreaterThan(multiplier) {
			multiplier = m
		}
	}

	base := baseFirstUnit.Add(basePerExtraUnit.Mul(decimal.NewFromInt(int64(totalUnits - 1))))
	zone := c.classifyZone(ctx, input.Destination)

	subtotal := base.
		Add(zoneSurcharges[zone]).
		Add(weightSurcharge(totalWeightKg))

	standardPrice := subtotal.Mul(multiplier).Round(2)
	expressPrice := standardPrice.Mul(expressMultiplier).Round(2)

	estimate := estimateFor(zone)
	now := c.now().UTC()

	return &Quote{
		Zone: zone,
		Standard: Option{
			Price:            standardPrice,
			Currency:         enums.CurrencyUSD,
			MinDays:          estimate.StandardMinDays,
			MaxDays:          estimate.StandardMaxDays,
			EarliestDelivery: addBusinessDays(now, estimate.StandardMinDays),
			LatestDelivery:   addBusinessDays(now, estimate.StandardMaxDays),
		},
		Express: Option{
			Price:            expressPrice,
			Currency:         enums.CurrencyUSD,
			MinDays:          estimate.ExpressMinDays,
			MaxDays:          estimate.ExpressMaxDays,
			EarliestDelivery: addBusinessDays(now, estimate.ExpressMinDays),
			LatestDelivery:   addBusinessDays(now, estimate.ExpressMaxDays),
		},
	}, nil
}

// classifyZone maps the destination onto a shipping zone. Precedence matters:
// Ontario/Quebec beat the rest of Canada, Canada beats the US, everything else
// ships international.
func (c *Calculator) classifyZone(ctx context.Context, dest Destination) enums.ShippingZone {
	country := strings.ToUpper(strings.TrimSpace(dest.Country))
	region := strings.ToUpper(strings.TrimSpace(dest.Region))

	switch country {
	case "CA":
		if region == "ON" || region == "QC" {
			return enums.ShippingZoneLocal
		}
		return enums.ShippingZoneWestern
	case "US":
		return enums.ShippingZoneUSA
	case "":
		if c.logg != nil {
			c.logg.Warn(ctx, "shipping destination has no country, defaulting to international zone")
		}
		return enums.ShippingZoneInternational
	default:
		if c.logg != nil {
			logCtx := c.logg.WithField(ctx, "country", country)
			c.logg.Warn(logCtx, "unrecognized shipping country, defaulting to international zone")
		}
		return enums.ShippingZoneInternational
	}
}

func categoryMultiplier(category string) decimal.Decimal {
	if m, ok := categoryMultipliers[strings.ToLower(strings.TrimSpace(category))]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

func weightSurcharge(totalKg float64) decimal.Decimal {
	for _, bracket := range weightBrackets {
		if totalKg <= bracket.maxKg {
			return bracket.surcharge
		}
	}
	return overweightSurcharge
}

// addBusinessDays projects a calendar date the given number of business days
// out, skipping weekends.
func addBusinessDays(from time.Time, days int) time.Time {
	date := from
	for remaining := days; remaining > 0; {
		date = date.AddDate(0, 0, 1)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		remaining--
	}
	return date
}
