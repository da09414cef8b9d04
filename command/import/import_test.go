package cmdimport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	ccsv "faculty-bills/connectors/csv"
)

func TestRun_FromWorkbook(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yml"))

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Duration", "Faculty Name - Email"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]any{"2025-08-04", 5, "Dr. X - x@mail.com"}))
	src := filepath.Join(dir, "log.xlsx")
	require.NoError(t, wb.SaveAs(src))
	require.NoError(t, wb.Close())

	out := filepath.Join(dir, "data", ccsv.RowsFile)
	require.NoError(t, Run([]string{"-xlsx", src, "-out", out}))

	rows, err := ccsv.ReadRows(out)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-08-04", rows[0]["Date"])
	assert.Equal(t, "5", rows[0]["Duration"])
}

func TestRun_NoSources(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yml"))
	t.Setenv("BILLS_SOURCE_URLS", "")
	assert.Error(t, Run([]string{"-out", filepath.Join(dir, ccsv.RowsFile)}))
}
