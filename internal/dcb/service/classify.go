package service

import (
	"strings"

	"dcb-service/internal/dcb/model"
)

// Residual header labels that keep reappearing inside the data region when a
// sheet repeats its header band per page.
var identitySentinels = map[string]struct{}{
	"ap no":         {},
	"ap gazette no": {},
	"gazette":       {},
	"sl no":         {},
	"s.no":          {},
	"serial no":     {},
	"sno":           {},
	"serial number": {},
}

var nameSentinels = map[string]struct{}{
	"institution name":    {},
	"name of institution": {},
	"name":                {},
	"waqf name":           {},
}

// Classify decides whether a raw row is usable data. It runs before any
// normalization so that all "should this row exist" policy lives here and the
// normalizer stays total. Returns SkipNone for rows that proceed.
func Classify(row []string, mapping model.ColumnMapping) model.SkipReason {
	if isEmptyRow(row) {
		return model.SkipEmptyRow
	}

	ap := cellText(row, mapping.Col(model.FieldApNo))
	if ap == nil {
		return model.SkipMissingIdentity
	}
	apLower := strings.ToLower(*ap)
	if _, ok := identitySentinels[apLower]; ok {
		return model.SkipHeaderRemnant
	}
	// a short all-digit identity is a stray column-index marker row
	// ("1 2 3 4 ...") left behind by a multi-row header
	if len(*ap) <= 3 && isDigits(*ap) {
		return model.SkipInvalidIdentifierShape
	}

	name := cellText(row, mapping.Col(model.FieldInstitutionName))
	if name == nil {
		return model.SkipMissingIdentity
	}
	if _, ok := nameSentinels[strings.ToLower(*name)]; ok {
		return model.SkipHeaderRemnant
	}

	return model.SkipNone
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// cellText reads and cleans the cell at idx, nil when unmapped or out of
// range.
func cellText(row []string, idx int) *string {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return CleanText(row[idx])
}
