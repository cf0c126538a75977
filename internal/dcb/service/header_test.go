package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcb-service/internal/dcb/model"
)

var districtHeaders = []string{
	"sl no",
	"ap gazette no",
	"name of the institution",
	"mandal",
	"village",
	"extent ac0cents dry",
	"extent ac0cents wet",
	"extent ac0cents total",
	"demand (in rs) arrears",
	"demand (in rs) current",
	"demand (in rs) total",
	"collection (in rs) arrears",
	"collection (in rs) current",
	"collection (in rs) receipt no & date",
	"collection (in rs) challan no & date",
	"remarks",
}

func TestResolveColumnsDistrictLayout(t *testing.T) {
	mapping, err := ResolveColumns(districtHeaders)
	require.NoError(t, err)

	want := map[model.CanonicalField]int{
		model.FieldApNo:              1,
		model.FieldInstitutionName:   2,
		model.FieldMandal:            3,
		model.FieldVillage:           4,
		model.FieldExtentDry:         5,
		model.FieldExtentWet:         6,
		model.FieldDemandArrears:     8,
		model.FieldDemandCurrent:     9,
		model.FieldCollectionArrears: 11,
		model.FieldCollectionCurrent: 12,
		model.FieldReceiptCombined:   13,
		model.FieldChallanCombined:   14,
		model.FieldRemarks:           15,
	}
	for f, idx := range want {
		assert.Equal(t, idx, mapping.Col(f), "field %s", f)
	}
	// sl no must never claim the identity slot
	assert.NotEqual(t, 0, mapping.Col(model.FieldApNo))
}

func TestResolveColumnsOrderIndependent(t *testing.T) {
	base, err := ResolveColumns(districtHeaders)
	require.NoError(t, err)

	// permute columns; the mapping must follow the translation
	perm := rand.New(rand.NewSource(7)).Perm(len(districtHeaders))
	shuffled := make([]string, len(districtHeaders))
	for newIdx, oldIdx := range perm {
		shuffled[newIdx] = districtHeaders[oldIdx]
	}
	translate := make(map[int]int, len(perm)) // old -> new
	for newIdx, oldIdx := range perm {
		translate[oldIdx] = newIdx
	}

	got, err := ResolveColumns(shuffled)
	require.NoError(t, err)
	for f, oldIdx := range base {
		assert.Equal(t, translate[oldIdx], got.Col(f), "field %s", f)
	}
}

func TestResolveColumnsPositionalDefaults(t *testing.T) {
	// headers carry no usable vocabulary; identity fields fall back to
	// their usual positions
	mapping, err := ResolveColumns([]string{"column 1", "column 2", "column 3", "column 4"})
	require.NoError(t, err)
	assert.Equal(t, 1, mapping.Col(model.FieldApNo))
	assert.Equal(t, 2, mapping.Col(model.FieldInstitutionName))
	// optional fields stay unmapped rather than guessing
	assert.Equal(t, -1, mapping.Col(model.FieldDemandArrears))
}

func TestResolveColumnsIdentityFatal(t *testing.T) {
	// two columns only: the positional defaults for the name column do not
	// exist, so the sheet is unprocessable
	_, err := ResolveColumns([]string{"x", "y"})
	require.ErrorIs(t, err, ErrIdentityUnmapped)
}

func TestHeaderDepth(t *testing.T) {
	rows := [][]string{
		{"SRIKAKULAM DISTRICT DCB FOR THE YEAR 2025-2026"},
		{"Sl No", "AP Gazette No", "Name of the Institution"},
		{"1", "2", "3"},
		{"1", "ABC/99", "Sri Temple"},
	}
	// title and header row are the band; the column-index marker row is
	// data (the classifier rejects it later)
	assert.Equal(t, 2, HeaderDepth(rows))

	noHeader := [][]string{
		{"1", "ABC/99", "Sri Temple"},
	}
	assert.Equal(t, 1, HeaderDepth(noHeader))
}

func TestHeaderDepthDataRowsWithHeaderVocabulary(t *testing.T) {
	// mandal/village values carry header words; rows whose identity cells
	// hold plausible values stay out of the band
	rows := [][]string{
		{"SRIKAKULAM DISTRICT DCB FOR THE YEAR 2025-2026"},
		{"Sl No", "AP Gazette No", "Name of the Institution", "Mandal", "Village"},
		{"1", "ABC/99", "Sri Temple", "Foo Mandal", "Bar Village"},
		{"2", "DEF/11", "Sri Mosque", "Baz Mandal", "Qux Village"},
	}
	assert.Equal(t, 2, HeaderDepth(rows))
}

func TestHeaderTextsFlattensMultiLevel(t *testing.T) {
	rows := [][]string{
		{"", "", "", "Extent Ac0Cents", ""},
		{"Sl No", "AP No", "Name", "Dry", "Wet"},
	}
	texts := HeaderTexts(rows, 2)
	require.Len(t, texts, 5)
	assert.Equal(t, "extent ac0cents dry", texts[3])
	assert.Equal(t, "wet", texts[4])
	assert.Equal(t, "sl no", texts[0])
}
