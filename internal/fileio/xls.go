// Legacy .xls parser: we fix the table width ourselves and read every cell up
// to it instead of trusting Row.LastCol().
package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// computeMaxCols probes a bounded number of columns across all rows to find
// the real table width; merged header cells routinely confuse the library's
// own per-row width.
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 512
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := 0; j < probeMax; j++ {
			if strings.TrimSpace(row.Col(j)) != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func readXLS(r io.Reader) ([]Sheet, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// district .xls exports vary in charset; try the usual suspects
	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range []string{"utf-8", "windows-1251"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	var out []Sheet
	for s := 0; s < wb.NumSheets(); s++ {
		sheet := wb.GetSheet(s)
		if sheet == nil {
			continue
		}
		maxCols := computeMaxCols(sheet)
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			cols := make([]string, maxCols)
			if row != nil {
				for j := 0; j < maxCols; j++ {
					cols[j] = row.Col(j)
				}
			}
			rows = append(rows, cols)
		}
		rows = dropTrailingEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}
		out = append(out, Sheet{Name: sheet.Name, Rows: rows})
	}
	return out, nil
}
