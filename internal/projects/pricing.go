package projects

import (
	"github.com/studiofief/lune/internal/catalog"
	"github.com/studiofief/lune/internal/money"
)

// PriceSource records which fallback produced the unit price of a line.
type PriceSource string

const (
	SourceOverride PriceSource = "OVERRIDE"
	SourceCatalog  PriceSource = "CATALOG"
	SourceDayRate  PriceSource = "DAY_RATE"
	SourceNone     PriceSource = "NONE"
)

// PricedLine is the resolved, quote-eligible representation of a service
// line after fallback price resolution and discount application.
type PricedLine struct {
	LineID           int64       `json:"lineId"`
	CatalogServiceID int64       `json:"catalogServiceId"`
	Label            string      `json:"label"`
	Description      string      `json:"description,omitempty"`
	Quantity         int64       `json:"quantity"`
	UnitPriceCents   int64       `json:"unitPriceCents"`
	FinalUnitCents   int64       `json:"finalUnitCents"`
	TotalCents       int64       `json:"totalCents"`
	BillingUnit      BillingUnit `json:"billingUnit"`
	UnitLabel        string      `json:"unitLabel,omitempty"`
	MissingPrice     bool        `json:"missingPrice"`
	Source           PriceSource `json:"source"`
}

// ResolveLine computes the effective pricing of one line. Resolution order:
// explicit per-project override, catalog price, catalog day rate, missing.
// A missing price zeroes the total and flags the line; it blocks quote
// creation until resolved.
func ResolveLine(line ServiceLine, svc *catalog.Service) PricedLine {
	priced := PricedLine{
		LineID:           line.ID,
		CatalogServiceID: line.CatalogServiceID,
		Quantity:         normalizeQuantity(line.Quantity),
		Description:      line.Description,
		BillingUnit:      line.BillingUnit,
		UnitLabel:        line.UnitLabel,
		Source:           SourceNone,
	}
	if priced.BillingUnit == "" {
		priced.BillingUnit = BillingOneOff
	}
	if priced.BillingUnit == BillingMonthly && priced.UnitLabel == "" {
		priced.UnitLabel = DefaultMonthlyUnitLabel
	}

	priced.Label = line.TitleOverride
	if priced.Label == "" && svc != nil {
		priced.Label = svc.Name
	}
	if priced.Description == "" && svc != nil {
		priced.Description = svc.Description
	}

	switch {
	case line.PriceCents != nil:
		priced.UnitPriceCents = *line.PriceCents
		priced.Source = SourceOverride
	case svc != nil && svc.PriceCents != nil:
		priced.UnitPriceCents = *svc.PriceCents
		priced.Source = SourceCatalog
	case svc != nil && svc.DayRateCents != nil:
		priced.UnitPriceCents = *svc.DayRateCents
		priced.Source = SourceDayRate
	default:
		priced.MissingPrice = true
		return priced
	}

	priced.FinalUnitCents = applyDiscount(priced.UnitPriceCents, line.DiscountType, line.DiscountValue)
	priced.TotalCents = priced.FinalUnitCents * priced.Quantity
	return priced
}

// ResolveLines resolves every line, ordered as given.
func ResolveLines(lines []ServiceLine, services map[int64]catalog.Service) []PricedLine {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		var svc *catalog.Service
		if s, ok := services[line.CatalogServiceID]; ok {
			svc = &s
		}
		priced = append(priced, ResolveLine(line, svc))
	}
	return priced
}

// PricingTotal sums quote-eligible totals and reports whether any line is
// missing a price.
func PricingTotal(lines []PricedLine) (total int64, missing bool) {
	for _, line := range lines {
		if line.MissingPrice {
			missing = true
			continue
		}
		total += line.TotalCents
	}
	return total, missing
}

func applyDiscount(unit int64, kind DiscountType, value float64) int64 {
	switch kind {
	case DiscountPercent:
		pct := money.ClampPercent(value)
		return money.RoundHalfUp(float64(unit) * (100 - pct) / 100)
	case DiscountAmount:
		amount := money.RoundHalfUp(value)
		if amount < 0 {
			amount = 0
		}
		if amount >= unit {
			return 0
		}
		return unit - amount
	default:
		return unit
	}
}

func normalizeQuantity(q int64) int64 {
	if q < 1 {
		return 1
	}
	return q
}
