package projects

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/catalog"
)

func ptr(v int64) *int64 { return &v }

func TestResolveLineFallbackOrder(t *testing.T) {
	svc := &catalog.Service{ID: 7, Name: "Site vitrine", PriceCents: ptr(80000), DayRateCents: ptr(45000)}

	override := ResolveLine(ServiceLine{CatalogServiceID: 7, Quantity: 1, PriceCents: ptr(90000)}, svc)
	require.Equal(t, SourceOverride, override.Source)
	require.Equal(t, int64(90000), override.UnitPriceCents)

	fromCatalog := ResolveLine(ServiceLine{CatalogServiceID: 7, Quantity: 1}, svc)
	require.Equal(t, SourceCatalog, fromCatalog.Source)
	require.Equal(t, int64(80000), fromCatalog.UnitPriceCents)

	dayRateOnly := &catalog.Service{ID: 8, Name: "Conseil", DayRateCents: ptr(45000)}
	fromRate := ResolveLine(ServiceLine{CatalogServiceID: 8, Quantity: 1}, dayRateOnly)
	require.Equal(t, SourceDayRate, fromRate.Source)
	require.Equal(t, int64(45000), fromRate.UnitPriceCents)
}

func TestResolveLineMissingPrice(t *testing.T) {
	unpriced := &catalog.Service{ID: 9, Name: "Atelier"}
	priced := ResolveLine(ServiceLine{CatalogServiceID: 9, Quantity: 3}, unpriced)
	require.True(t, priced.MissingPrice)
	require.Equal(t, SourceNone, priced.Source)
	require.Zero(t, priced.TotalCents)

	orphan := ResolveLine(ServiceLine{CatalogServiceID: 404, Quantity: 1}, nil)
	require.True(t, orphan.MissingPrice)
}

func TestResolveLineQuantityCoercion(t *testing.T) {
	svc := &catalog.Service{ID: 1, Name: "Maintenance", PriceCents: ptr(10000)}
	priced := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 0}, svc)
	require.Equal(t, int64(1), priced.Quantity)
	require.Equal(t, int64(10000), priced.TotalCents)
}

func TestResolveLineDiscounts(t *testing.T) {
	svc := &catalog.Service{ID: 1, Name: "Dev", PriceCents: ptr(10000)}

	pct := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountPercent, DiscountValue: 25}, svc)
	require.Equal(t, int64(7500), pct.FinalUnitCents)

	// values outside [0,100] clamp instead of failing
	over := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountPercent, DiscountValue: 150}, svc)
	require.Equal(t, int64(0), over.FinalUnitCents)

	full := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountPercent, DiscountValue: 100}, svc)
	require.Equal(t, int64(0), full.FinalUnitCents)

	noop := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountPercent, DiscountValue: 0}, svc)
	require.Equal(t, int64(10000), noop.FinalUnitCents)

	// 10000 * (100 - 33.33) / 100 = 6667 after half-up rounding
	rounded := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountPercent, DiscountValue: 33.33}, svc)
	require.Equal(t, int64(6667), rounded.FinalUnitCents)

	amount := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountAmount, DiscountValue: 2500}, svc)
	require.Equal(t, int64(7500), amount.FinalUnitCents)

	floor := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountAmount, DiscountValue: 999999}, svc)
	require.Equal(t, int64(0), floor.FinalUnitCents)
}

func TestResolveLineMonthlyLabel(t *testing.T) {
	svc := &catalog.Service{ID: 1, Name: "Hébergement", PriceCents: ptr(2900)}
	priced := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, BillingUnit: BillingMonthly}, svc)
	require.Equal(t, DefaultMonthlyUnitLabel, priced.UnitLabel)

	custom := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, BillingUnit: BillingMonthly, UnitLabel: "/an"}, svc)
	require.Equal(t, "/an", custom.UnitLabel)
}

func TestPricingTotal(t *testing.T) {
	svc := map[int64]catalog.Service{
		1: {ID: 1, Name: "Design", PriceCents: ptr(10000)},
		2: {ID: 2, Name: "Atelier"},
	}

	lines := []ServiceLine{
		{CatalogServiceID: 1, Quantity: 2},
		{CatalogServiceID: 1, Quantity: 1, DiscountType: DiscountPercent, DiscountValue: 50},
	}
	priced := ResolveLines(lines, svc)
	total, missing := PricingTotal(priced)
	require.False(t, missing)
	require.Equal(t, int64(25000), total)

	lines = append(lines, ServiceLine{CatalogServiceID: 2, Quantity: 1})
	total, missing = PricingTotal(ResolveLines(lines, svc))
	require.True(t, missing)
	require.Equal(t, int64(25000), total)
}

func TestResolveLineLabelOverride(t *testing.T) {
	svc := &catalog.Service{ID: 1, Name: "Développement", Description: "Base", PriceCents: ptr(5000)}

	plain := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1}, svc)
	require.Equal(t, "Développement", plain.Label)
	require.Equal(t, "Base", plain.Description)

	custom := ResolveLine(ServiceLine{CatalogServiceID: 1, Quantity: 1, TitleOverride: "Sprint 1", Description: "Cadrage"}, svc)
	require.Equal(t, "Sprint 1", custom.Label)
	require.Equal(t, "Cadrage", custom.Description)
}
