package table

import (
	"fmt"
	"sort"
)

// Row is a single result row: values addressed by column name.
// Rows are fresh, independent copies - they never alias fact storage.
type Row map[string]Value

// Get returns the value for a column, or Null if the column is absent.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Null{}
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered collection of rows with a declared column order.
// Column order is presentation metadata; row order is semantic (reports
// specify their sort).
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. The row must only use declared columns; undeclared
// columns are a programming error surfaced immediately.
func (t *Table) Append(r Row) {
	for col := range r {
		if !t.HasColumn(col) {
			panic(fmt.Sprintf("table: row uses undeclared column %q", col))
		}
	}
	t.Rows = append(t.Rows, r)
}

// HasColumn reports whether the table declares a column.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// AddColumn declares an additional column (used by window and classifier
// stages, which extend aggregated tables).
func (t *Table) AddColumn(col string) {
	if t.HasColumn(col) {
		return
	}
	t.Columns = append(t.Columns, col)
}

// Clone returns a deep copy: mutating the clone's rows never affects the
// original. Window stages clone before annotating so aggregator output stays
// reusable.
func (t *Table) Clone() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// SortKey is one component of a sort specification.
type SortKey struct {
	Column string
	Desc   bool
}

// Sort orders rows by the given keys. The sort is stable: ties keep their
// original insertion order, which makes report output deterministic even when
// keys collide.
func (t *Table) Sort(keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		for _, k := range keys {
			c := Compare(t.Rows[i].Get(k.Column), t.Rows[j].Get(k.Column))
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// RoundColumns quantizes the named decimal columns to 2 places in place.
// Non-decimal and null cells are left untouched.
func (t *Table) RoundColumns(cols ...string) {
	for _, r := range t.Rows {
		for _, col := range cols {
			if d, ok := r[col].(Decimal); ok {
				r[col] = d.Round2()
			}
		}
	}
}
