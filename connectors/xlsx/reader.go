package xlsx

import (
	"fmt"
	"io"
	"strings"

	lo "github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"faculty-bills/domain/bills"
)

// ReadRows loads a downloaded teaching log workbook. The first row of sheet
// (the first sheet when empty) holds the column labels; blank cells are left
// out of the row so they read as missing.
func ReadRows(r io.Reader, sheet string) (bills.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return bills.Table{}, nil
		}
		sheet = sheets[0]
	} else if !lo.Contains(f.GetSheetList(), sheet) {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(grid) == 0 {
		return bills.Table{}, nil
	}

	header := lo.Map(grid[0], func(h string, _ int) string { return strings.TrimSpace(h) })
	rows := make(bills.Table, 0, len(grid)-1)
	for _, line := range grid[1:] {
		row := bills.Row{}
		for i, v := range line {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(v) == "" {
				continue
			}
			row[header[i]] = v
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
