package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCSVFixtures writes a small but complete four-file dataset and returns
// the load arguments for it.
func writeCSVFixtures(t *testing.T, dir string) []string {
	t.Helper()

	files := map[string]string{
		"stores.csv": "store_id,region\nS001,North\nS002,South\n",
		"dates.csv":  "date,seasonality,epidemic\n2023-01-10,Winter,false\n2023-01-15,Winter,false\n",
		"promotions.csv": "promotion_id,promotion_name\nP1,New Year\n",
		"facts.csv": "sale_date,store_id,product_id,category,inventory_level,units_sold,units_ordered,price,discount,weather,promotion,demand,competitor_price\n" +
			"2023-01-10,S001,A1,Toys,10,2,5,5,0,Sunny,P1,4,6\n" +
			"2023-01-15,S002,B1,Food,8,3,0,10,0,Rainy,,8,\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	return []string{
		"--facts", filepath.Join(dir, "facts.csv"),
		"--stores", filepath.Join(dir, "stores.csv"),
		"--dates", filepath.Join(dir, "dates.csv"),
		"--promotions", filepath.Join(dir, "promotions.csv"),
	}
}

// execute runs the CLI with the given args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func loadFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "lattice.db")

	args := append([]string{"load", "--db", db}, writeCSVFixtures(t, dir)...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	require.Contains(t, out, "Loaded 2 fact(s)")
	return db
}

func TestLoadAndRunReport(t *testing.T) {
	db := loadFixtures(t)

	out, err := execute(t, "run", "store_revenue", "--db", db)
	require.NoError(t, err)

	// S002 revenue 30.00 sorts above S001 revenue 10.00.
	assert.Contains(t, out, "Revenue by store")
	assert.Less(t, strings.Index(out, "S002"), strings.Index(out, "S001"))
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "10.00")
}

func TestRunAllJSON(t *testing.T) {
	db := loadFixtures(t)

	out, err := execute(t, "run", "--all", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []TableJSON `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, 11)
	assert.Equal(t, "store_revenue", resp.Data[0].Name)
}

func TestRunSingleReportJSON(t *testing.T) {
	db := loadFixtures(t)

	out, err := execute(t, "run", "low_inventory_count", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   TableJSON `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Rows, 1)
	// One row has demand 8 vs inventory 8; strict comparison excludes it.
	assert.Equal(t, float64(0), resp.Data.Rows[0]["low_inventory_rows"])
}

func TestRunUnknownReport(t *testing.T) {
	db := loadFixtures(t)

	out, err := execute(t, "run", "quarterly_forecast", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "UNKNOWN_REPORT")
}

func TestRunRequiresReportOrAll(t *testing.T) {
	db := loadFixtures(t)

	_, err := execute(t, "run", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "run", "store_revenue", "--all", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunStoreFilterOverride(t *testing.T) {
	db := loadFixtures(t)

	out, err := execute(t, "run", "store_revenue", "--db", db, "--stores", "S002")
	require.NoError(t, err)
	assert.Contains(t, out, "S002")
	assert.NotContains(t, out, "S001")
}

func TestLoadValidationFailure(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "lattice.db")
	args := writeCSVFixtures(t, dir)

	// Corrupt the facts file with a negative quantity.
	factsPath := filepath.Join(dir, "facts.csv")
	require.NoError(t, os.WriteFile(factsPath, []byte(
		"sale_date,store_id,product_id,category,inventory_level,units_sold,units_ordered,price,discount,weather,promotion,demand,competitor_price\n"+
			"2023-01-10,S001,A1,Toys,10,-2,5,5,0,Sunny,,4,\n"), 0o644))

	out, err := execute(t, append([]string{"load", "--db", db}, args...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "VALIDATION")

	// A failed load writes nothing.
	batchOut, err := execute(t, "batches", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, batchOut, "No load batches.")
}

func TestReportsListing(t *testing.T) {
	out, err := execute(t, "reports")
	require.NoError(t, err)
	assert.Contains(t, out, "store_revenue")
	assert.Contains(t, out, "season_weather_pre2024_revenue")
}

func TestBatchesListing(t *testing.T) {
	db := loadFixtures(t)

	out, err := execute(t, "batches", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 fact(s)")
}
