package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/domain/bills"
)

func setup(t *testing.T) (dir, in string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yml"))
	in = filepath.Join(dir, ccsv.RowsFile)
	require.NoError(t, ccsv.WriteRows(in, bills.Table{
		{"Date": "2025-08-04", "Duration": "5", "Faculty Name - Email": "Dr. X - x@mail.com"},
		{"Date": "2025-08-11", "Duration": "2", "Faculty Name - Email": "Dr. Y - y@mail.com"},
	}))
	return dir, in
}

func TestRun_WritesWorkbook(t *testing.T) {
	dir, in := setup(t)
	out := filepath.Join(dir, "claim.xlsx")

	require.NoError(t, Run([]string{"-month", "August 2025", "-faculty", "Dr. X", "-in", in, "-out", out}))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Claim")
	require.NoError(t, err)
	found := false
	for _, r := range rows {
		if len(r) > 3 && r[3] == "Guest Faculty: Dr. X" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRun_Errors(t *testing.T) {
	dir, in := setup(t)
	out := filepath.Join(dir, "claim.xlsx")

	assert.Error(t, Run([]string{"-in", in}))
	assert.ErrorIs(t, Run([]string{"-month", "July 2025", "-in", in, "-out", out}), bills.ErrUnknownMonth)
	assert.ErrorIs(t, Run([]string{"-month", "August 2025", "-faculty", "Dr. Z", "-in", in, "-out", out}), bills.ErrNoEntries)

	_, err := os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
