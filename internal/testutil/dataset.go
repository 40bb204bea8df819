// Package testutil provides dataset fixtures for engine, store, and harness
// tests.
package testutil

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"

	"github.com/latticedata/lattice/internal/dataset"
)

// Dec parses a decimal literal, failing the test on error.
func Dec(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

// Builder assembles a valid dataset incrementally. Dimension rows referenced
// by facts are registered automatically, so tests only state what matters.
type Builder struct {
	t  *testing.T
	ds *dataset.Dataset
}

// NewBuilder creates a dataset builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, ds: dataset.NewDataset()}
}

// Store registers a store dimension row.
func (b *Builder) Store(id, region string) *Builder {
	b.ds.Stores[id] = dataset.StoreInfo{StoreID: id, Region: region}
	return b
}

// Day registers a date dimension row.
func (b *Builder) Day(date, season string, epidemic bool) *Builder {
	d, err := dataset.ParseDate(date)
	require.NoError(b.t, err)
	b.ds.Dates[d] = dataset.DateInfo{Date: d, Seasonality: season, Epidemic: epidemic}
	return b
}

// Promotion registers a promotion dimension row.
func (b *Builder) Promotion(id, name string) *Builder {
	b.ds.Promotions[id] = dataset.PromotionInfo{PromotionID: id, Name: name}
	return b
}

// FactSpec is the part of a fact row tests care about. Zero-value fields get
// safe defaults: weather Sunny, price 1, discount 0.
type FactSpec struct {
	Date            string
	Store           string
	Product         string
	Category        string
	Inventory       int64
	Units           int64
	Ordered         int64
	Price           string
	Discount        string
	Weather         string
	Promotion       string
	Demand          int64
	CompetitorPrice string
}

// Fact appends a fact row, auto-registering any missing dimension rows with
// neutral attributes (region "North", season by month, no epidemic).
func (b *Builder) Fact(spec FactSpec) *Builder {
	b.t.Helper()

	d, err := dataset.ParseDate(spec.Date)
	require.NoError(b.t, err)
	if _, ok := b.ds.Dates[d]; !ok {
		b.Day(spec.Date, seasonOf(d.Month), false)
	}
	if _, ok := b.ds.Stores[spec.Store]; !ok {
		b.Store(spec.Store, "North")
	}
	if spec.Promotion != "" {
		if _, ok := b.ds.Promotions[spec.Promotion]; !ok {
			b.Promotion(spec.Promotion, spec.Promotion)
		}
	}

	if spec.Price == "" {
		spec.Price = "1"
	}
	if spec.Discount == "" {
		spec.Discount = "0"
	}
	if spec.Weather == "" {
		spec.Weather = "Sunny"
	}

	f := dataset.Fact{
		SaleDate:       d,
		StoreID:        spec.Store,
		ProductID:      spec.Product,
		Category:       spec.Category,
		InventoryLevel: spec.Inventory,
		UnitsSold:      spec.Units,
		UnitsOrdered:   spec.Ordered,
		Price:          Dec(b.t, spec.Price),
		Discount:       Dec(b.t, spec.Discount),
		Weather:        spec.Weather,
		Promotion:      spec.Promotion,
		Demand:         spec.Demand,
	}
	if spec.CompetitorPrice != "" {
		f.CompetitorPrice = Dec(b.t, spec.CompetitorPrice)
	}
	b.ds.Facts = append(b.ds.Facts, f)
	return b
}

// Build validates and returns the dataset.
func (b *Builder) Build() *dataset.Dataset {
	b.t.Helper()
	require.NoError(b.t, b.ds.Validate())
	return b.ds
}

func seasonOf(month int) string {
	switch {
	case month >= 3 && month <= 5:
		return "Spring"
	case month >= 6 && month <= 8:
		return "Summer"
	case month >= 9 && month <= 11:
		return "Autumn"
	default:
		return "Winter"
	}
}
