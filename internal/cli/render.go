package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/latticedata/lattice/internal/table"
)

// printer formats row counts and other integers with digit grouping for
// human-readable output ("12,480 rows").
var printer = message.NewPrinter(language.English)

// TableJSON is the wire form of a report table: column order preserved, rows
// as column-keyed maps. Decimal cells are rendered as exact strings so
// consumers never re-round them.
type TableJSON struct {
	Title   string           `json:"title,omitempty"`
	Name    string           `json:"name"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// NewTableJSON converts a report table for JSON output.
func NewTableJSON(name, title string, t *table.Table) TableJSON {
	out := TableJSON{
		Name:    name,
		Title:   title,
		Columns: t.Columns,
		Rows:    make([]map[string]any, 0, t.Len()),
	}
	for _, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for _, col := range t.Columns {
			m[col] = cellJSON(row.Get(col))
		}
		out.Rows = append(out.Rows, m)
	}
	return out
}

func cellJSON(v table.Value) any {
	switch v := v.(type) {
	case table.Null:
		return nil
	case table.String:
		return string(v)
	case table.Int:
		return int64(v)
	case table.Bool:
		return bool(v)
	default:
		// Decimals travel as strings; float64 would destroy the exact value.
		return table.Format(v)
	}
}

// renderTable writes a report table as aligned text. Tables keyed by year and
// month get a derived month label ("Jan-23") prepended for readability; the
// underlying columns still print.
func renderTable(w io.Writer, title string, t *table.Table) {
	if title != "" {
		fmt.Fprintf(w, "%s\n", title)
	}
	if t.Len() == 0 {
		fmt.Fprintln(w, "  (no rows)")
		return
	}

	cols := t.Columns
	addLabel := t.HasColumn("year") && t.HasColumn("month")
	if addLabel {
		cols = append([]string{"month_label"}, cols...)
	}

	cells := make([][]string, 0, t.Len()+1)
	cells = append(cells, cols)
	for _, row := range t.Rows {
		line := make([]string, 0, len(cols))
		if addLabel {
			line = append(line, monthLabel(row.Get("year"), row.Get("month")))
		}
		for _, col := range t.Columns {
			line = append(line, table.Format(row.Get(col)))
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, line := range cells {
		var b strings.Builder
		b.WriteString("  ")
		for j, cell := range line {
			if j > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(cell, widths[j]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		if i == 0 {
			fmt.Fprintf(w, "  %s\n", strings.Repeat("-", totalWidth(widths)))
		}
	}
	fmt.Fprintln(w, printer.Sprintf("  %d row(s)", t.Len()))
}

// monthLabel renders a (year, month) pair as "Jan-23". Non-integer cells
// (should not happen for catalog reports) fall back to empty.
func monthLabel(year, month table.Value) string {
	y, okY := year.(table.Int)
	m, okM := month.(table.Int)
	if !okY || !okM || m < 1 || m > 12 {
		return ""
	}
	return fmt.Sprintf("%s-%02d", time.Month(m).String()[:3], int64(y)%100)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func totalWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + 2*(len(widths)-1)
}
