package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcb-service/internal/dcb/model"
)

func fullMapping() model.ColumnMapping {
	return model.ColumnMapping{
		model.FieldApNo:              1,
		model.FieldInstitutionName:   2,
		model.FieldMandal:            3,
		model.FieldVillage:           4,
		model.FieldExtentDry:         5,
		model.FieldExtentWet:         6,
		model.FieldDemandArrears:     7,
		model.FieldDemandCurrent:     8,
		model.FieldCollectionArrears: 9,
		model.FieldCollectionCurrent: 10,
		model.FieldReceiptCombined:   11,
		model.FieldChallanCombined:   12,
		model.FieldRemarks:           13,
	}
}

func TestAssembleZeroVsNullPolicy(t *testing.T) {
	opts := model.Options{FinancialYear: "2025-26"}.Normalize()
	row := []string{
		"1", "ABC/99", "Sri XYZ Temple", "Foo Mandal", "-",
		"12.5", "0",
		"", "15,000", "n/a", "₹12,000",
		"2614/53/05-06-2025", "-",
		"",
	}
	rec := Assemble(row, fullMapping(), opts)

	assert.Equal(t, "ABC/99", rec.ApGazetteNo)
	assert.Equal(t, "Sri XYZ Temple", rec.InstitutionName)
	require.NotNil(t, rec.Mandal)
	assert.Equal(t, "Foo Mandal", *rec.Mandal)
	assert.Nil(t, rec.Village, "sentinel text stays nil")

	// extent: recorded value kept, zero indistinguishable from absent
	require.NotNil(t, rec.ExtentDry)
	assert.Equal(t, 12.5, *rec.ExtentDry)
	assert.Nil(t, rec.ExtentWet)

	// money: absent and malformed coerce to 0, never nil
	assert.Equal(t, 0.0, rec.DemandArrears)
	assert.Equal(t, 15000.0, rec.DemandCurrent)
	assert.Equal(t, 0.0, rec.CollectionArrears)
	assert.Equal(t, 12000.0, rec.CollectionCurrent)

	require.NotNil(t, rec.ReceiptNo)
	assert.Equal(t, "2614/53", *rec.ReceiptNo)
	require.NotNil(t, rec.ReceiptDate)
	assert.Equal(t, "2025-06-05", *rec.ReceiptDate)
	assert.Nil(t, rec.ChallanNo)
	assert.Nil(t, rec.ChallanDate)

	assert.Nil(t, rec.Remarks)
	assert.Equal(t, "2025-26", rec.FinancialYear)
	assert.Equal(t, "ABC/99|2025-26", rec.Key())
}

func TestRecordKeyPrefersInstitutionRef(t *testing.T) {
	rec := model.NormalizedRecord{ApGazetteNo: "ABC/99", FinancialYear: "2025-26"}
	assert.Equal(t, "ABC/99|2025-26", rec.Key())
	id := "uuid-1"
	rec.InstitutionID = &id
	assert.Equal(t, "uuid-1|2025-26", rec.Key())
}

func TestPayloadRawComponentsOnly(t *testing.T) {
	opts := model.Options{FinancialYear: "2025-26"}.Normalize()
	rec := model.NormalizedRecord{
		ApGazetteNo:   "ABC/99",
		DemandArrears: 5000,
		DemandCurrent: 3000,
		FinancialYear: "2025-26",
	}
	p := Payload(rec, opts)
	assert.Equal(t, "ABC/99", p["ap_gazette_no"])
	assert.Equal(t, 5000.0, p["demand_arrears"])
	// totals belong to the store's generated columns unless asked for
	assert.NotContains(t, p, "demand_total")
	assert.NotContains(t, p, "balance_total")
	assert.NotContains(t, p, "district_id")
}

func TestPayloadComputeTotals(t *testing.T) {
	opts := model.Options{FinancialYear: "2025-26", ComputeTotals: true}.Normalize()
	dry := 2.0
	rec := model.NormalizedRecord{
		ApGazetteNo:       "ABC/99",
		ExtentDry:         &dry,
		DemandArrears:     5000,
		DemandCurrent:     3000,
		CollectionArrears: 2000,
		CollectionCurrent: 1000,
		FinancialYear:     "2025-26",
	}
	p := Payload(rec, opts)
	assert.Equal(t, 2.0, p["extent_total"])
	assert.Equal(t, 8000.0, p["demand_total"])
	assert.Equal(t, 3000.0, p["collection_total"])
	assert.Equal(t, 3000.0, p["balance_arrears"])
	assert.Equal(t, 2000.0, p["balance_current"])
	assert.Equal(t, 5000.0, p["balance_total"])
}
