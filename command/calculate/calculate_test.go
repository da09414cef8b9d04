package calculate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/domain/bills"
)

func snapshotRows() bills.Table {
	return bills.Table{
		{"Date": "2025-08-04", "Duration": "5", "Diary Number": "1", "Faculty Name - Email": "Dr. X - x@mail.com"},
		{"Date": "2025-08-05", "Duration": "2", "Topics Covered": "Lab work", "Faculty Name - Email": "Dr. X - x@mail.com"},
		{"Date": "not a date", "Duration": "1"},
	}
}

func TestCalculate(t *testing.T) {
	res := Calculate(bills.NewAggregator(nil), snapshotRows())
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, []string{"Dr. X"}, res.Faculty)
	require.Len(t, res.Months["August 2025"], 1)
	assert.Equal(t, 7.0, res.Months["August 2025"][0].TotalActual)
	assert.Equal(t, 6.5, res.Months["August 2025"][0].TotalClaiming)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yml"))
	in := filepath.Join(dir, ccsv.RowsFile)
	require.NoError(t, ccsv.WriteRows(in, snapshotRows()))

	out := filepath.Join(dir, "out")
	require.NoError(t, Run([]string{"-in", in, "-data", out}))

	weeks, err := ccsv.ReadCSV(filepath.Join(out, ccsv.WeeksFile))
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, "7.00", weeks[0]["week_total_actual"])

	entries, err := ccsv.ReadCSV(filepath.Join(out, ccsv.EntriesFile))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRun_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yml"))
	assert.Error(t, Run([]string{"-in", filepath.Join(dir, "nope.csv"), "-data", dir}))
	assert.Error(t, Run([]string{"extra"}))
}
