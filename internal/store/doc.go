// Package store persists loaded datasets in SQLite.
//
// Each call to WriteDataset records one load batch: a batch row, the
// dimension rows (stores, dates, promotions), and the fact rows, committed
// atomically. ReadDataset reconstructs the dataset across all batches in
// load order and re-validates it, so the engine never sees rows the loader
// would have rejected.
//
// Decimal columns (price, discount, competitor_price) are stored as exact
// text. The store performs no arithmetic and no rounding.
package store
