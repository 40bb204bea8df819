package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: an inline dataset plus a list
// of reports to evaluate against it, each with optional expectations.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the inline star-schema dataset the reports run over.
	Dataset DatasetSpec `yaml:"dataset"`

	// Reports lists the reports to evaluate, in order.
	Reports []ReportCheck `yaml:"reports"`
}

// DatasetSpec declares the scenario's dataset. Dimension rows referenced by
// facts but not declared are registered automatically with neutral defaults
// (region "North", season derived from the month, no epidemic).
type DatasetSpec struct {
	Stores     []StoreRow `yaml:"stores,omitempty"`
	Dates      []DateRow  `yaml:"dates,omitempty"`
	Promotions []PromoRow `yaml:"promotions,omitempty"`
	Facts      []FactRow  `yaml:"facts"`
}

// StoreRow declares one store dimension row.
type StoreRow struct {
	ID     string `yaml:"id"`
	Region string `yaml:"region"`
}

// DateRow declares one date dimension row.
type DateRow struct {
	Date     string `yaml:"date"`
	Season   string `yaml:"season"`
	Epidemic bool   `yaml:"epidemic,omitempty"`
}

// PromoRow declares one promotion dimension row.
type PromoRow struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// FactRow declares one fact row. Zero-value fields get safe defaults:
// weather Sunny, price 1, discount 0. Decimal fields are strings so YAML
// never routes them through float64.
type FactRow struct {
	Date            string `yaml:"date"`
	Store           string `yaml:"store"`
	Product         string `yaml:"product"`
	Category        string `yaml:"category"`
	Inventory       int64  `yaml:"inventory,omitempty"`
	Units           int64  `yaml:"units,omitempty"`
	Ordered         int64  `yaml:"ordered,omitempty"`
	Price           string `yaml:"price,omitempty"`
	Discount        string `yaml:"discount,omitempty"`
	Weather         string `yaml:"weather,omitempty"`
	Promotion       string `yaml:"promotion,omitempty"`
	Demand          int64  `yaml:"demand,omitempty"`
	CompetitorPrice string `yaml:"competitor_price,omitempty"`
}

// ReportCheck names a report to evaluate, with optional filter overrides and
// expectations.
type ReportCheck struct {
	// Name is the catalog report name.
	Name string `yaml:"name"`

	// Stores overrides the report's store filter.
	Stores []string `yaml:"stores,omitempty"`

	// BeforeYear overrides the report's year cutoff.
	BeforeYear int `yaml:"before_year,omitempty"`

	// Expect holds inline expectations; the golden file is compared either
	// way.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation validates the report output.
type Expectation struct {
	// RowCount asserts the exact number of output rows.
	RowCount *int `yaml:"row_count,omitempty"`

	// Rows asserts output rows by position. Each entry is a subset match:
	// only listed columns are checked. When present, the row count must
	// match too.
	Rows []map[string]any `yaml:"rows,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "report:" vs "reports:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Reports) == 0 {
		return fmt.Errorf("reports list is required and must be non-empty")
	}

	for i, f := range s.Dataset.Facts {
		for _, req := range []struct{ name, val string }{
			{"date", f.Date}, {"store", f.Store}, {"product", f.Product}, {"category", f.Category},
		} {
			if req.val == "" {
				return fmt.Errorf("dataset.facts[%d]: %s is required", i, req.name)
			}
		}
	}

	for i, chk := range s.Reports {
		if chk.Name == "" {
			return fmt.Errorf("reports[%d]: name is required", i)
		}
		if chk.Expect != nil && chk.Expect.RowCount != nil && *chk.Expect.RowCount < 0 {
			return fmt.Errorf("reports[%d].expect: row_count must be non-negative", i)
		}
	}

	return nil
}
