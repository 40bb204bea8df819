package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// LoadOptions controls dimension deduplication behavior.
//
// Source exports repeat dimension rows freely (one per fact). The loader
// keeps the first-seen mapping for each natural key and re-validates every
// subsequent duplicate against it. By default a mismatch is a
// ValidationError; AllowInconsistentDims downgrades that to first-wins.
type LoadOptions struct {
	AllowInconsistentDims bool
}

// Expected CSV headers, in order. Extra or reordered columns are resolved by
// name, but a missing required header aborts the load.
var (
	factHeaders = []string{
		"sale_date", "store_id", "product_id", "category", "inventory_level",
		"units_sold", "units_ordered", "price", "discount", "weather",
		"promotion", "demand", "competitor_price",
	}
	storeHeaders     = []string{"store_id", "region"}
	dateHeaders      = []string{"date", "seasonality", "epidemic"}
	promotionHeaders = []string{"promotion_id", "promotion_name"}
)

// LoadFiles reads the four CSV exports, builds the dataset, and validates
// every invariant. This is the batch entry point used by the CLI.
func LoadFiles(factsPath, storesPath, datesPath, promotionsPath string, opts LoadOptions) (*Dataset, error) {
	ds := NewDataset()

	load := func(path string, fn func(io.Reader) error) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		if err := fn(f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}

	// Dimensions first: fact validation needs the lookups populated.
	if err := load(storesPath, func(r io.Reader) error { return ds.ReadStoresCSV(r, opts) }); err != nil {
		return nil, err
	}
	if err := load(datesPath, func(r io.Reader) error { return ds.ReadDatesCSV(r, opts) }); err != nil {
		return nil, err
	}
	if err := load(promotionsPath, func(r io.Reader) error { return ds.ReadPromotionsCSV(r, opts) }); err != nil {
		return nil, err
	}
	if err := load(factsPath, ds.ReadFactsCSV); err != nil {
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// ReadStoresCSV loads the store dimension, deduplicating by store_id.
func (ds *Dataset) ReadStoresCSV(r io.Reader, opts LoadOptions) error {
	return readCSV(r, storeHeaders, func(line int, get func(string) string) error {
		info := StoreInfo{StoreID: get("store_id"), Region: get("region")}
		if prev, seen := ds.Stores[info.StoreID]; seen {
			if prev != info && !opts.AllowInconsistentDims {
				return &ValidationError{
					Code:    ErrCodeDimensionConflict,
					Message: fmt.Sprintf("store %q maps to region %q but was first seen with %q", info.StoreID, info.Region, prev.Region),
					Line:    line,
					StoreID: info.StoreID,
				}
			}
			return nil // first-seen mapping wins
		}
		ds.Stores[info.StoreID] = info
		return nil
	})
}

// ReadDatesCSV loads the date dimension, deduplicating by date.
func (ds *Dataset) ReadDatesCSV(r io.Reader, opts LoadOptions) error {
	return readCSV(r, dateHeaders, func(line int, get func(string) string) error {
		d, err := ParseDate(get("date"))
		if err != nil {
			return &ValidationError{
				Code:    ErrCodeMalformedField,
				Message: fmt.Sprintf("date: %v", err),
				Line:    line,
			}
		}
		season := get("seasonality")
		if !Seasons[season] {
			return &ValidationError{
				Code:     ErrCodeMalformedField,
				Message:  fmt.Sprintf("seasonality %q is not a known season label", season),
				Line:     line,
				SaleDate: d.String(),
			}
		}
		epidemic, err := strconv.ParseBool(strings.ToLower(get("epidemic")))
		if err != nil {
			return &ValidationError{
				Code:     ErrCodeMalformedField,
				Message:  fmt.Sprintf("epidemic: %v", err),
				Line:     line,
				SaleDate: d.String(),
			}
		}
		info := DateInfo{Date: d, Seasonality: season, Epidemic: epidemic}
		if prev, seen := ds.Dates[d]; seen {
			if prev != info && !opts.AllowInconsistentDims {
				return &ValidationError{
					Code:     ErrCodeDimensionConflict,
					Message:  fmt.Sprintf("date %s repeated with different attributes", d),
					Line:     line,
					SaleDate: d.String(),
				}
			}
			return nil
		}
		ds.Dates[d] = info
		return nil
	})
}

// ReadPromotionsCSV loads the promotion dimension, deduplicating by id.
func (ds *Dataset) ReadPromotionsCSV(r io.Reader, opts LoadOptions) error {
	return readCSV(r, promotionHeaders, func(line int, get func(string) string) error {
		info := PromotionInfo{PromotionID: get("promotion_id"), Name: get("promotion_name")}
		if info.PromotionID == "" {
			return &ValidationError{
				Code:    ErrCodeMalformedField,
				Message: "promotion_id is empty",
				Line:    line,
			}
		}
		if prev, seen := ds.Promotions[info.PromotionID]; seen {
			if prev != info && !opts.AllowInconsistentDims {
				return &ValidationError{
					Code:    ErrCodeDimensionConflict,
					Message: fmt.Sprintf("promotion %q repeated with different name", info.PromotionID),
					Line:    line,
				}
			}
			return nil
		}
		ds.Promotions[info.PromotionID] = info
		return nil
	})
}

// ReadFactsCSV appends fact rows in file order. Parsing errors abort with a
// positioned ValidationError; invariant checks run afterwards in Validate.
func (ds *Dataset) ReadFactsCSV(r io.Reader) error {
	return readCSV(r, factHeaders, func(line int, get func(string) string) error {
		fail := func(field string, err error) error {
			return &ValidationError{
				Code:      ErrCodeMalformedField,
				Message:   fmt.Sprintf("%s: %v", field, err),
				Line:      line,
				StoreID:   get("store_id"),
				SaleDate:  get("sale_date"),
				ProductID: get("product_id"),
			}
		}

		d, err := ParseDate(get("sale_date"))
		if err != nil {
			return fail("sale_date", err)
		}

		f := Fact{
			SaleDate:  d,
			StoreID:   get("store_id"),
			ProductID: get("product_id"),
			Category:  get("category"),
			Weather:   get("weather"),
			Promotion: get("promotion"),
		}

		for _, c := range []struct {
			name string
			dst  *int64
		}{
			{"inventory_level", &f.InventoryLevel},
			{"units_sold", &f.UnitsSold},
			{"units_ordered", &f.UnitsOrdered},
			{"demand", &f.Demand},
		} {
			n, err := strconv.ParseInt(get(c.name), 10, 64)
			if err != nil {
				return fail(c.name, err)
			}
			*c.dst = n
		}

		if f.Price, err = parseDec(get("price")); err != nil {
			return fail("price", err)
		}
		if f.Discount, err = parseDec(get("discount")); err != nil {
			return fail("discount", err)
		}
		if cp := get("competitor_price"); cp != "" {
			if f.CompetitorPrice, err = parseDec(cp); err != nil {
				return fail("competitor_price", err)
			}
		}

		ds.Facts = append(ds.Facts, f)
		return nil
	})
}

// readCSV drives a header-resolved row callback. The callback receives a
// getter keyed by header name; values arrive trimmed. Line numbers are
// 1-based and count the header.
func readCSV(r io.Reader, required []string, row func(line int, get func(string) string) error) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return fmt.Errorf("missing required column %q", col)
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		get := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if err := row(line, get); err != nil {
			return err
		}
	}
}

func parseDec(s string) (*apd.Decimal, error) {
	d, cond, err := apd.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if cond.Any() || d.Form != apd.Finite {
		return nil, fmt.Errorf("not a finite decimal: %q", s)
	}
	return d, nil
}
