package catalog

// Report is one entry in the declarative battery: grouping, measures,
// optional window, optional classifier, filter defaults, and sort order.
// The engine interprets these; nothing here executes.
type Report struct {
	// Name is the report identifier used by run_report callers.
	Name string `json:"name"`

	// Title is a human-readable heading for CLI output.
	Title string `json:"title"`

	// GroupBy lists grouping columns. Valid columns: store_id, category,
	// weather, season, region, year, month, promotion. Empty means one
	// global group.
	GroupBy []string `json:"group_by"`

	// Measures are the reductions computed per group.
	Measures []Measure `json:"measures"`

	// Window, if set, runs after aggregation.
	Window *Window `json:"window,omitempty"`

	// Classifier, if set, derives a label column from two numeric columns.
	Classifier *Classifier `json:"classifier,omitempty"`

	// Filter restricts the fact rows before aggregation. Callers may
	// override StoreIDs and BeforeYear at run time.
	Filter Filter `json:"filter,omitempty"`

	// Sort is the output order. Ties keep first-seen group order.
	Sort []SortKey `json:"sort,omitempty"`

	// Scalar marks reports that always produce exactly one row, even over
	// an empty fact set (the low-inventory count).
	Scalar bool `json:"scalar,omitempty"`
}

// Measure kinds.
const (
	MeasureSum        = "sum"         // sum(field)
	MeasureSumProduct = "sum_product" // sum(field * field2)
	MeasureCount      = "count"       // count()
	MeasureAvg        = "avg"         // avg(field), nulls skipped
)

// Measure maps an output column name to a reduction over fact fields.
type Measure struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Field2 string `json:"field2,omitempty"`
}

// Window kinds.
const (
	WindowTrailingAvg  = "trailing_avg"
	WindowPartitionAvg = "partition_avg"
)

// Window specifies one of the two window semantics.
//
// trailing_avg orders by (year, month) ascending and writes the mean of the
// current and up to Width-1 preceding rows to Output.
//
// partition_avg writes the partition-wide mean of Measure to AvgOutput and
// the row's deviation from it to DiffOutput, identically for every row in a
// partition.
type Window struct {
	Kind       string   `json:"kind"`
	Measure    string   `json:"measure"`
	Width      int      `json:"width,omitempty"`
	Output     string   `json:"output,omitempty"`
	Partition  []string `json:"partition,omitempty"`
	AvgOutput  string   `json:"avg_output,omitempty"`
	DiffOutput string   `json:"diff_output,omitempty"`
}

// Classifier derives Output from a three-way comparison of the Left and
// Right columns. Comparisons involving null fall through to Equal.
type Classifier struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Higher string `json:"higher"`
	Lower  string `json:"lower"`
	Equal  string `json:"equal"`
	Output string `json:"output"`
}

// Filter restricts fact rows before aggregation.
type Filter struct {
	// StoreIDs, when non-empty, keeps only rows from these stores.
	StoreIDs []string `json:"store_ids,omitempty"`

	// BeforeYear, when non-zero, keeps only rows with sale year < BeforeYear.
	BeforeYear int `json:"before_year,omitempty"`

	// Predicate names a row predicate. The only defined predicate is
	// "demand_exceeds_inventory" (strictly greater-than).
	Predicate string `json:"predicate,omitempty"`
}

// SortKey is one component of a report's output order.
type SortKey struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

// GroupColumns is the set of valid grouping columns and the dimension they
// resolve through.
var GroupColumns = map[string]bool{
	"store_id":  true,
	"category":  true,
	"weather":   true,
	"season":    true, // via date lookup
	"region":    true, // via store lookup
	"year":      true,
	"month":     true,
	"promotion": true, // nullable; null is a distinct group
}

// MeasureFields is the set of fact fields measures may reference.
var MeasureFields = map[string]bool{
	"units_sold":       true,
	"units_ordered":    true,
	"inventory_level":  true,
	"demand":           true,
	"price":            true,
	"discount":         true,
	"competitor_price": true, // nullable
}

// Predicates is the set of valid row predicates.
var Predicates = map[string]bool{
	"demand_exceeds_inventory": true,
}
