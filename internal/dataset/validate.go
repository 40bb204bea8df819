package dataset

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

var (
	decZero    = apd.New(0, 0)
	decHundred = apd.New(100, 0)
)

// Validate enforces every load-time invariant from the data model:
// non-negativity, discount bounds, known weather, and referential integrity
// of the store, date, and promotion foreign keys. Returns the first
// violation; a valid dataset returns nil.
//
// An unresolved foreign key is a referential-integrity error, never a
// silently dropped row.
func (ds *Dataset) Validate() error {
	for i := range ds.Facts {
		if err := ds.validateFact(&ds.Facts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (ds *Dataset) validateFact(f *Fact) error {
	fail := func(code ValidationErrorCode, msg string) *ValidationError {
		return &ValidationError{
			Code:      code,
			Message:   msg,
			StoreID:   f.StoreID,
			SaleDate:  f.SaleDate.String(),
			ProductID: f.ProductID,
		}
	}

	for _, c := range []struct {
		name string
		v    int64
	}{
		{"inventory_level", f.InventoryLevel},
		{"units_sold", f.UnitsSold},
		{"units_ordered", f.UnitsOrdered},
		{"demand", f.Demand},
	} {
		if c.v < 0 {
			return fail(ErrCodeNegativeField, fmt.Sprintf("%s is negative: %d", c.name, c.v))
		}
	}

	if f.Price == nil || f.Price.Cmp(decZero) < 0 {
		return fail(ErrCodeNegativeField, "price must be a non-negative decimal")
	}
	if f.CompetitorPrice != nil && f.CompetitorPrice.Cmp(decZero) < 0 {
		return fail(ErrCodeNegativeField, "competitor_price must be non-negative when present")
	}
	if f.Discount == nil || f.Discount.Cmp(decZero) < 0 || f.Discount.Cmp(decHundred) > 0 {
		return fail(ErrCodeDiscountRange, "discount must be in [0, 100]")
	}

	if !Weathers[f.Weather] {
		return fail(ErrCodeUnknownWeather, fmt.Sprintf("weather %q is not in the known-weather set", f.Weather))
	}

	if _, ok := ds.Stores[f.StoreID]; !ok {
		return fail(ErrCodeUnknownStore, fmt.Sprintf("store_id %q does not resolve in the store lookup", f.StoreID))
	}
	if _, ok := ds.Dates[f.SaleDate]; !ok {
		return fail(ErrCodeUnknownDate, fmt.Sprintf("sale_date %s does not resolve in the date lookup", f.SaleDate))
	}
	if f.HasPromotion() {
		if _, ok := ds.Promotions[f.Promotion]; !ok {
			return fail(ErrCodeUnknownPromotion, fmt.Sprintf("promotion %q does not resolve in the promotion lookup", f.Promotion))
		}
	}

	return nil
}
