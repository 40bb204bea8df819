package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/latticedata/lattice/internal/dataset"
)

// ReadDataset reconstructs the full dataset from the store: every dimension
// row and every fact row across all load batches. Facts come back in load
// order (id ASC), so a write/read round trip preserves row order.
//
// The reconstructed dataset is re-validated before returning; a database
// edited outside this package surfaces as a ValidationError, not as garbage
// report output.
func (s *Store) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	ds := dataset.NewDataset()

	if err := s.readStores(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.readDates(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.readPromotions(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.readFacts(ctx, ds); err != nil {
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("read dataset: stored data invalid: %w", err)
	}

	return ds, nil
}

func (s *Store) readStores(ctx context.Context, ds *dataset.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `SELECT store_id, region FROM stores`)
	if err != nil {
		return fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var info dataset.StoreInfo
		if err := rows.Scan(&info.StoreID, &info.Region); err != nil {
			return fmt.Errorf("scan store: %w", err)
		}
		ds.Stores[info.StoreID] = info
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate stores: %w", err)
	}
	return nil
}

func (s *Store) readDates(ctx context.Context, ds *dataset.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `SELECT date, seasonality, epidemic FROM dates`)
	if err != nil {
		return fmt.Errorf("query dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dateStr string
		var info dataset.DateInfo
		if err := rows.Scan(&dateStr, &info.Seasonality, &info.Epidemic); err != nil {
			return fmt.Errorf("scan date: %w", err)
		}
		d, err := dataset.ParseDate(dateStr)
		if err != nil {
			return fmt.Errorf("stored date %q: %w", dateStr, err)
		}
		info.Date = d
		ds.Dates[d] = info
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate dates: %w", err)
	}
	return nil
}

func (s *Store) readPromotions(ctx context.Context, ds *dataset.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `SELECT promotion_id, promotion_name FROM promotions`)
	if err != nil {
		return fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var info dataset.PromotionInfo
		if err := rows.Scan(&info.PromotionID, &info.Name); err != nil {
			return fmt.Errorf("scan promotion: %w", err)
		}
		ds.Promotions[info.PromotionID] = info
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate promotions: %w", err)
	}
	return nil
}

func (s *Store) readFacts(ctx context.Context, ds *dataset.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_date, store_id, product_id, category, inventory_level,
		       units_sold, units_ordered, price, discount, weather,
		       promotion_id, demand, competitor_price
		FROM facts
		ORDER BY id ASC
	`)
	if err != nil {
		return fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return err
		}
		ds.Facts = append(ds.Facts, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate facts: %w", err)
	}
	return nil
}

func scanFact(rows *sql.Rows) (dataset.Fact, error) {
	var f dataset.Fact
	var dateStr, priceStr, discountStr string
	var promotion, competitor sql.NullString

	if err := rows.Scan(
		&dateStr, &f.StoreID, &f.ProductID, &f.Category, &f.InventoryLevel,
		&f.UnitsSold, &f.UnitsOrdered, &priceStr, &discountStr, &f.Weather,
		&promotion, &f.Demand, &competitor,
	); err != nil {
		return dataset.Fact{}, fmt.Errorf("scan fact: %w", err)
	}

	d, err := dataset.ParseDate(dateStr)
	if err != nil {
		return dataset.Fact{}, fmt.Errorf("stored sale_date %q: %w", dateStr, err)
	}
	f.SaleDate = d

	if f.Price, err = parseStoredDecimal("price", priceStr); err != nil {
		return dataset.Fact{}, err
	}
	if f.Discount, err = parseStoredDecimal("discount", discountStr); err != nil {
		return dataset.Fact{}, err
	}
	if promotion.Valid {
		f.Promotion = promotion.String
	}
	if competitor.Valid {
		if f.CompetitorPrice, err = parseStoredDecimal("competitor_price", competitor.String); err != nil {
			return dataset.Fact{}, err
		}
	}

	return f, nil
}

func parseStoredDecimal(column, text string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("stored %s %q: %w", column, text, err)
	}
	return d, nil
}

// BatchInfo describes one load batch.
type BatchInfo struct {
	ID        string
	LoadedAt  time.Time
	FactCount int
}

// Batches lists all load batches, oldest first.
func (s *Store) Batches(ctx context.Context) ([]BatchInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loaded_at, fact_count
		FROM load_batches
		ORDER BY loaded_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchInfo
	for rows.Next() {
		var b BatchInfo
		var loadedAt string
		if err := rows.Scan(&b.ID, &loadedAt, &b.FactCount); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if b.LoadedAt, err = time.Parse(time.RFC3339, loadedAt); err != nil {
			return nil, fmt.Errorf("stored loaded_at %q: %w", loadedAt, err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}

	if batches == nil {
		batches = []BatchInfo{}
	}
	return batches, nil
}
