package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cleaning is total: every function here returns a typed value or nil and
// never an error. Malformed cells are routine in district sheets and must
// not abort the row.

// sentinel values that mean "no data" regardless of field kind
var sentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"-":    {},
	"n/a":  {},
	"na":   {},
}

// CleanText trims, collapses internal whitespace runs and filters sentinel
// values. Returns nil for absent.
func CleanText(raw string) *string {
	s := strings.Join(strings.Fields(raw), " ")
	if _, ok := sentinels[strings.ToLower(s)]; ok {
		return nil
	}
	return &s
}

var nonNumeric = regexp.MustCompile(`[^0-9eE+.\-]`)

// CleanNumeric parses a financial or extent cell. Thousands separators,
// currency glyphs and stray whitespace (incl. NBSP) are stripped first;
// scientific notation goes through ParseFloat ("1E+06" -> 1000000).
// Absent, sentinel or malformed cells yield 0.
func CleanNumeric(raw string) float64 {
	s := CleanText(raw)
	if s == nil {
		return 0
	}
	v := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00A0', '\u2009', '\u202F':
			return -1
		}
		return r
	}, *s)
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, "₹", "")
	v = nonNumeric.ReplaceAllString(v, "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// Candidate date layouts, tried in order; first success wins. Two-digit
// years parse as 20YY via Go's "06" verb.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-2006",
	"02/Jan/2006",
	"02-01-06",
	"02/01/06",
}

// layouts whose year verb reads two digits; Go maps 69-99 to 19YY there
var twoDigitYearLayouts = map[string]struct{}{
	"02-01-06": {},
	"02/01/06": {},
}

// ParseDate parses a cell against the fixed layout ladder and returns the
// ISO-8601 date, or nil when nothing matches. Two-digit years always mean
// 20YY in these registers, so 19YY parses are shifted forward a century.
// Years outside [2000,2100] are rejected even when a layout superficially
// parses.
func ParseDate(raw string) *string {
	s := CleanText(raw)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, *s)
		if err != nil {
			continue
		}
		if _, twoDigit := twoDigitYearLayouts[layout]; twoDigit && t.Year() < 2000 {
			t = t.AddDate(100, 0, 0)
		}
		if t.Year() < 2000 || t.Year() > 2100 {
			return nil
		}
		iso := t.Format("2006-01-02")
		return &iso
	}
	return nil
}

var compositeSep = regexp.MustCompile(`[,/\s]+`)

// SplitComposite splits a combined "number + date" cell ("2614/53/05-06-2025",
// "123, 01-01-2024", "123 01-01-2024") into its document number and ISO date.
//
// The date token is found first and the number is everything else: receipt
// numbers themselves often contain slashes ("2614/53"), so any heuristic that
// carves on the last separator misreads them.
func SplitComposite(raw string) (*string, *string) {
	s := CleanText(raw)
	if s == nil {
		return nil, nil
	}

	var date *string
	var dateTok string
	for _, tok := range compositeSep.Split(*s, -1) {
		if tok == "" {
			continue
		}
		if d := ParseDate(tok); d != nil {
			date = d
			dateTok = tok
			break
		}
	}
	if date == nil {
		return s, nil
	}

	number := strings.Replace(*s, dateTok, "", 1)
	number = strings.Trim(number, "/, \t")
	if number == "" {
		return nil, date
	}
	return &number, date
}
