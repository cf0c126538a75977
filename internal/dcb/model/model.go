package model

// CanonicalField is a semantic slot a sheet column may supply. The set is
// closed: the header resolver maps physical columns onto these and nothing
// else.
type CanonicalField string

const (
	FieldApNo              CanonicalField = "ap_gazette_no"
	FieldInstitutionName   CanonicalField = "institution_name"
	FieldDistrict          CanonicalField = "district"
	FieldMandal            CanonicalField = "mandal"
	FieldVillage           CanonicalField = "village"
	FieldExtentDry         CanonicalField = "extent_dry"
	FieldExtentWet         CanonicalField = "extent_wet"
	FieldDemandArrears     CanonicalField = "demand_arrears"
	FieldDemandCurrent     CanonicalField = "demand_current"
	FieldCollectionArrears CanonicalField = "collection_arrears"
	FieldCollectionCurrent CanonicalField = "collection_current"
	FieldReceiptCombined   CanonicalField = "receipt"
	FieldChallanCombined   CanonicalField = "challan"
	FieldRemarks           CanonicalField = "remarks"
	FieldFinancialYear     CanonicalField = "financial_year"
)

// ColumnMapping resolves canonical fields to zero-based column indices for
// one sheet. Built once per sheet, read-only afterwards. A missing key means
// the field is unmapped (optional fields degrade to absent values).
type ColumnMapping map[CanonicalField]int

// Col returns the mapped index for f, or -1 when unmapped.
func (m ColumnMapping) Col(f CanonicalField) int {
	if idx, ok := m[f]; ok {
		return idx
	}
	return -1
}

// HeaderMatchRule matches one canonical field against a column's concatenated
// header text. Rules are tried in declared order; a column matches when its
// header text contains every required token and none of the excluded ones
// (case-insensitive substring). Default is a positional fallback index used
// when no rule fires, -1 for none.
type HeaderMatchRule struct {
	Field    CanonicalField
	Required []string
	Excluded []string
	Default  int
}

// SkipReason says why the classifier rejected a raw row.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipEmptyRow
	SkipMissingIdentity
	SkipHeaderRemnant
	SkipInvalidIdentifierShape
)

func (r SkipReason) String() string {
	switch r {
	case SkipEmptyRow:
		return "empty_row"
	case SkipMissingIdentity:
		return "missing_identity"
	case SkipHeaderRemnant:
		return "header_remnant"
	case SkipInvalidIdentifierShape:
		return "invalid_identifier_shape"
	default:
		return "none"
	}
}

// NormalizedRecord is the canonical per-row output. Text and date fields are
// nil when absent; money fields are never nil downstream (zero policy).
// Dates are ISO-8601 strings (YYYY-MM-DD).
type NormalizedRecord struct {
	ApGazetteNo       string
	InstitutionName   string
	DistrictID        *string
	InstitutionID     *string
	Mandal            *string
	Village           *string
	ExtentDry         *float64
	ExtentWet         *float64
	DemandArrears     float64
	DemandCurrent     float64
	CollectionArrears float64
	CollectionCurrent float64
	ReceiptNo         *string
	ReceiptDate       *string
	ChallanNo         *string
	ChallanDate       *string
	Remarks           *string
	FinancialYear     string
}

// Key is the idempotency key used for upsert conflict resolution: the
// institution ref when resolved, the gazette number otherwise, always
// paired with the financial year.
func (r *NormalizedRecord) Key() string {
	if r.InstitutionID != nil {
		return *r.InstitutionID + "|" + r.FinancialYear
	}
	return r.ApGazetteNo + "|" + r.FinancialYear
}

// Options is the configuration surface the engine consumes.
type Options struct {
	FinancialYear string
	BatchSize     int
	// MaxErrorSamples bounds the per-sheet list of retained error strings.
	MaxErrorSamples int
	// ComputeTotals emits demand/collection/extent totals and balances
	// locally. Leave false when the destination table derives them as
	// generated columns, so the two never drift apart.
	ComputeTotals bool
	// ResolveInstitutions looks up institution refs by gazette number and
	// keys records by (institution_id, financial_year). Records whose
	// institution is unknown are skipped.
	ResolveInstitutions bool
}

// Normalize fills unset options with their defaults.
func (o Options) Normalize() Options {
	if o.FinancialYear == "" {
		o.FinancialYear = "2025-26"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
	if o.MaxErrorSamples <= 0 {
		o.MaxErrorSamples = 5
	}
	return o
}

// SheetState tracks where per-sheet processing stopped.
type SheetState int

const (
	StateLoading SheetState = iota
	StateResolvingHeaders
	StateProcessingRows
	StateReconciling
	StateDone
	StateFatal
)

func (s SheetState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResolvingHeaders:
		return "resolving_headers"
	case StateProcessingRows:
		return "processing_rows"
	case StateReconciling:
		return "reconciling"
	case StateDone:
		return "done"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// BatchResult accumulates reconciler outcomes for one sheet.
type BatchResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  int      `json:"errors"`
	Samples []string `json:"errorSamples,omitempty"`
}

// Add folds another result into this one. Sample lists stay bounded by cap.
func (b *BatchResult) Add(o BatchResult, maxSamples int) {
	b.Created += o.Created
	b.Updated += o.Updated
	b.Skipped += o.Skipped
	b.Errors += o.Errors
	for _, s := range o.Samples {
		if len(b.Samples) >= maxSamples {
			break
		}
		b.Samples = append(b.Samples, s)
	}
}

// SheetReport is the per-sheet outcome shown in the run summary.
type SheetReport struct {
	Sheet    string     `json:"sheet"`
	District string     `json:"district,omitempty"`
	State    SheetState `json:"-"`
	Fatal    string     `json:"fatal,omitempty"`
	BatchResult
}

// Summary aggregates sheet reports across a run.
type Summary struct {
	Sheets []SheetReport `json:"sheets"`
	Totals BatchResult   `json:"totals"`
}

func (s *Summary) Append(r SheetReport, maxSamples int) {
	s.Sheets = append(s.Sheets, r)
	s.Totals.Add(r.BatchResult, maxSamples)
}
