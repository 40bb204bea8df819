package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/latticedata/lattice/internal/dataset"
)

// WriteDataset persists a validated dataset as one load batch and returns the
// batch ID. The batch row, all dimension rows, and all fact rows commit in a
// single transaction; a failed load leaves no partial batch behind.
//
// Dimension rows use ON CONFLICT DO NOTHING: re-loading a dataset whose
// dimensions overlap an earlier batch keeps the earlier rows. Fact rows are
// always appended, preserving dataset order via the autoincrement id.
func (s *Store) WriteDataset(ctx context.Context, ds *dataset.Dataset) (string, error) {
	batchID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write dataset: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO load_batches (id, loaded_at, fact_count)
		VALUES (?, ?, ?)
	`, batchID, time.Now().UTC().Format(time.RFC3339), len(ds.Facts))
	if err != nil {
		return "", fmt.Errorf("write dataset: insert batch: %w", err)
	}

	if err := writeDimensions(ctx, tx, ds); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO facts
		(batch_id, sale_date, store_id, product_id, category, inventory_level,
		 units_sold, units_ordered, price, discount, weather, promotion_id,
		 demand, competitor_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("write dataset: prepare fact insert: %w", err)
	}
	defer stmt.Close()

	for i := range ds.Facts {
		f := &ds.Facts[i]
		_, err := stmt.ExecContext(ctx,
			batchID,
			f.SaleDate.String(),
			f.StoreID,
			f.ProductID,
			f.Category,
			f.InventoryLevel,
			f.UnitsSold,
			f.UnitsOrdered,
			f.Price.Text('f'),
			f.Discount.Text('f'),
			f.Weather,
			nullString(f.Promotion),
			f.Demand,
			nullDecimal(f.CompetitorPrice),
		)
		if err != nil {
			return "", fmt.Errorf("write dataset: insert fact %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write dataset: commit: %w", err)
	}

	return batchID, nil
}

func writeDimensions(ctx context.Context, tx *sql.Tx, ds *dataset.Dataset) error {
	for id, info := range ds.Stores {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stores (store_id, region) VALUES (?, ?)
			ON CONFLICT(store_id) DO NOTHING
		`, id, info.Region)
		if err != nil {
			return fmt.Errorf("write dataset: insert store %s: %w", id, err)
		}
	}

	for date, info := range ds.Dates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dates (date, seasonality, epidemic) VALUES (?, ?, ?)
			ON CONFLICT(date) DO NOTHING
		`, date.String(), info.Seasonality, info.Epidemic)
		if err != nil {
			return fmt.Errorf("write dataset: insert date %s: %w", date, err)
		}
	}

	for id, info := range ds.Promotions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO promotions (promotion_id, promotion_name) VALUES (?, ?)
			ON CONFLICT(promotion_id) DO NOTHING
		`, id, info.Name)
		if err != nil {
			return fmt.Errorf("write dataset: insert promotion %s: %w", id, err)
		}
	}

	return nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullDecimal maps a nil decimal to SQL NULL, otherwise exact text.
func nullDecimal(d *apd.Decimal) any {
	if d == nil {
		return nil
	}
	return d.Text('f')
}
