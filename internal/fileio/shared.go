package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sheet is one logical table: the raw cell grid as read, no header
// interpretation. Rows are never mutated downstream.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadSheets picks a parser by extension and returns every sheet of the
// workbook as a raw grid. CSV yields a single pseudo-sheet named after the
// file stem.
func ReadSheets(r io.Reader, filename string) ([]Sheet, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		return readCSV(r, Stem(filename))
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// Stem returns the file name without directory and extension, the label the
// district alias table is keyed by ("Adoni.xlsx" -> "Adoni").
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// dropTrailingEmptyRows trims the blank tail most sheets carry after the
// last data row.
func dropTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 {
		empty := true
		for _, c := range rows[end-1] {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		end--
	}
	return rows[:end]
}
