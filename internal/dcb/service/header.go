package service

import (
	"errors"
	"strings"

	"dcb-service/internal/dcb/model"
)

// ErrIdentityUnmapped means the sheet cannot be processed safely: without the
// gazette number and institution name columns there is no business key.
var ErrIdentityUnmapped = errors.New("identity columns unmapped")

// Rule table for column inference, one declarative place instead of the ad hoc
// search chains the district scripts grew. Order matters twice: rules for the
// same field act as fallbacks, and the first (lowest-index) matching column
// wins within a rule. Default is a positional fallback, -1 for none; only the
// identity fields get one (Sl No in column 0, AP No in 1, name in 2 is the
// dominant district layout).
var headerRules = []model.HeaderMatchRule{
	{Field: model.FieldApNo, Required: []string{"ap", "gazette"}, Excluded: []string{"sl no", "serial"}, Default: -1},
	{Field: model.FieldApNo, Required: []string{"gazette"}, Default: -1},
	{Field: model.FieldApNo, Required: []string{"ap", "no"}, Excluded: []string{"sl", "serial"}, Default: 1},

	{Field: model.FieldInstitutionName, Required: []string{"institution", "name"}, Excluded: []string{"mandal", "village", "of officer"}, Default: -1},
	{Field: model.FieldInstitutionName, Required: []string{"name"}, Excluded: []string{"mandal", "village", "district"}, Default: 2},

	// title rows ("... DISTRICT DCB FOR THE YEAR ...") flatten into column 0;
	// the exclusions keep them from claiming the district slot
	{Field: model.FieldDistrict, Required: []string{"district"}, Excluded: []string{"name of", "year", "dcb"}, Default: -1},
	{Field: model.FieldMandal, Required: []string{"mandal"}, Default: -1},
	{Field: model.FieldVillage, Required: []string{"village"}, Default: -1},

	{Field: model.FieldExtentDry, Required: []string{"extent", "dry"}, Excluded: []string{"total", "wet"}, Default: -1},
	{Field: model.FieldExtentDry, Required: []string{"dry"}, Excluded: []string{"total"}, Default: -1},
	{Field: model.FieldExtentWet, Required: []string{"extent", "wet"}, Excluded: []string{"total", "dry"}, Default: -1},
	{Field: model.FieldExtentWet, Required: []string{"wet"}, Excluded: []string{"total"}, Default: -1},

	{Field: model.FieldDemandArrears, Required: []string{"demand", "arrear"}, Excluded: []string{"total", "current"}, Default: -1},
	{Field: model.FieldDemandArrears, Required: []string{"arrear"}, Excluded: []string{"total", "current", "collection", "balance"}, Default: -1},
	{Field: model.FieldDemandCurrent, Required: []string{"demand", "current"}, Excluded: []string{"total", "arrear"}, Default: -1},
	{Field: model.FieldDemandCurrent, Required: []string{"current"}, Excluded: []string{"total", "arrear", "collection", "balance"}, Default: -1},

	{Field: model.FieldCollectionArrears, Required: []string{"collection", "arrear"}, Excluded: []string{"total", "current"}, Default: -1},
	{Field: model.FieldCollectionCurrent, Required: []string{"collection", "current"}, Excluded: []string{"total", "arrear"}, Default: -1},

	{Field: model.FieldReceiptCombined, Required: []string{"receipt"}, Excluded: []string{"challan"}, Default: -1},
	{Field: model.FieldChallanCombined, Required: []string{"challan"}, Excluded: []string{"receipt"}, Default: -1},

	{Field: model.FieldRemarks, Required: []string{"remark"}, Default: -1},
	{Field: model.FieldFinancialYear, Required: []string{"financial", "year"}, Default: -1},
}

// vocabulary that marks a leading row as part of the header band
var headerVocabulary = []string{
	"ap no", "gazette", "institution", "name", "district", "mandal", "village",
	"extent", "demand", "collection", "balance", "receipt", "challan",
	"remark", "sl no", "s.no", "serial", "dry", "wet", "arrear", "current",
}

// HeaderDepth finds how many leading rows belong to the header band (title
// plus one or two header levels, at most 4 rows). A row joins the band when
// any of its cells carries header vocabulary; the first row that does not
// starts the data region. Vocabulary alone is not enough: data cells carry
// header words too ("Foo Mandal" as a mandal value), so once the band so far
// resolves the identity columns, a row whose identity cells hold plausible
// values is data, vocabulary hit or not. Always at least 1 so a headerless
// dump still skips its first row into the classifier's hands.
func HeaderDepth(rows [][]string) int {
	depth := 0
	for i := 0; i < len(rows) && i < 4; i++ {
		if !looksLikeHeaderRow(rows[i]) {
			break
		}
		if depth > 0 {
			if mapping, err := ResolveColumns(HeaderTexts(rows, depth)); err == nil {
				if Classify(rows[i], mapping) == model.SkipNone {
					break
				}
			}
		}
		depth++
	}
	if depth == 0 {
		depth = 1
	}
	return depth
}

func looksLikeHeaderRow(row []string) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	joined = strings.Join(strings.Fields(joined), " ")
	for _, tok := range headerVocabulary {
		if strings.Contains(joined, tok) {
			return true
		}
	}
	return false
}

// HeaderTexts concatenates the header band per column, order-preserving and
// blank-skipping, mirroring how multi-level spreadsheet headers flatten
// ("Extent Ac0Cents" over "Dry" becomes "extent ac0cents dry").
func HeaderTexts(rows [][]string, depth int) []string {
	width := 0
	for i := 0; i < depth && i < len(rows); i++ {
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}
	out := make([]string, width)
	for c := 0; c < width; c++ {
		var parts []string
		for r := 0; r < depth && r < len(rows); r++ {
			if c >= len(rows[r]) {
				continue
			}
			if cell := CleanText(rows[r][c]); cell != nil {
				parts = append(parts, *cell)
			}
		}
		out[c] = strings.ToLower(strings.Join(parts, " "))
	}
	return out
}

// ResolveColumns builds the ColumnMapping for one sheet from its flattened
// header texts. Identity fields left unmapped after rules and positional
// defaults make the sheet unprocessable.
func ResolveColumns(headers []string) (model.ColumnMapping, error) {
	mapping := model.ColumnMapping{}
	for _, rule := range headerRules {
		if _, done := mapping[rule.Field]; done {
			continue
		}
		if idx := matchRule(headers, rule); idx >= 0 {
			mapping[rule.Field] = idx
			continue
		}
		if rule.Default >= 0 && rule.Default < len(headers) {
			mapping[rule.Field] = rule.Default
		}
	}
	if mapping.Col(model.FieldApNo) < 0 || mapping.Col(model.FieldInstitutionName) < 0 {
		return nil, ErrIdentityUnmapped
	}
	return mapping, nil
}

func matchRule(headers []string, rule model.HeaderMatchRule) int {
	for idx, h := range headers {
		if h == "" {
			continue
		}
		if containsAll(h, rule.Required) && containsNone(h, rule.Excluded) {
			return idx
		}
	}
	return -1
}

func containsAll(s string, toks []string) bool {
	for _, t := range toks {
		if !strings.Contains(s, strings.ToLower(t)) {
			return false
		}
	}
	return true
}

func containsNone(s string, toks []string) bool {
	for _, t := range toks {
		if strings.Contains(s, strings.ToLower(t)) {
			return false
		}
	}
	return true
}
