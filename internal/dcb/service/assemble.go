package service

import (
	"dcb-service/internal/dcb/model"
)

// Assemble builds the canonical record for an accepted row. The zero-vs-null
// policy lives here: money fields are never nil (absent parses to 0), extent
// fields stay nil when absent or recorded as zero so "no data" is not stored
// as zero area, and text fields keep nil when absent.
func Assemble(row []string, mapping model.ColumnMapping, opts model.Options) model.NormalizedRecord {
	rec := model.NormalizedRecord{
		FinancialYear: opts.FinancialYear,
	}
	if ap := cellText(row, mapping.Col(model.FieldApNo)); ap != nil {
		rec.ApGazetteNo = *ap
	}
	if name := cellText(row, mapping.Col(model.FieldInstitutionName)); name != nil {
		rec.InstitutionName = *name
	}
	if fy := cellText(row, mapping.Col(model.FieldFinancialYear)); fy != nil {
		rec.FinancialYear = *fy
	}

	rec.Mandal = cellText(row, mapping.Col(model.FieldMandal))
	rec.Village = cellText(row, mapping.Col(model.FieldVillage))
	rec.Remarks = cellText(row, mapping.Col(model.FieldRemarks))

	rec.ExtentDry = extentCell(row, mapping.Col(model.FieldExtentDry))
	rec.ExtentWet = extentCell(row, mapping.Col(model.FieldExtentWet))

	rec.DemandArrears = moneyCell(row, mapping.Col(model.FieldDemandArrears))
	rec.DemandCurrent = moneyCell(row, mapping.Col(model.FieldDemandCurrent))
	rec.CollectionArrears = moneyCell(row, mapping.Col(model.FieldCollectionArrears))
	rec.CollectionCurrent = moneyCell(row, mapping.Col(model.FieldCollectionCurrent))

	if raw := cellText(row, mapping.Col(model.FieldReceiptCombined)); raw != nil {
		rec.ReceiptNo, rec.ReceiptDate = SplitComposite(*raw)
	}
	if raw := cellText(row, mapping.Col(model.FieldChallanCombined)); raw != nil {
		rec.ChallanNo, rec.ChallanDate = SplitComposite(*raw)
	}

	return rec
}

func moneyCell(row []string, idx int) float64 {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	return CleanNumeric(row[idx])
}

func extentCell(row []string, idx int) *float64 {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	v := CleanNumeric(row[idx])
	if v == 0 {
		return nil
	}
	return &v
}

// Payload turns the record into the wire shape the store consumes. With
// opts.ComputeTotals the derived totals and balances are emitted locally;
// without it only raw components go out and the destination's generated
// columns own the arithmetic. Never both.
func Payload(rec model.NormalizedRecord, opts model.Options) map[string]any {
	p := map[string]any{
		"ap_gazette_no":      rec.ApGazetteNo,
		"institution_name":   rec.InstitutionName,
		"mandal":             rec.Mandal,
		"village":            rec.Village,
		"extent_dry":         rec.ExtentDry,
		"extent_wet":         rec.ExtentWet,
		"demand_arrears":     rec.DemandArrears,
		"demand_current":     rec.DemandCurrent,
		"collection_arrears": rec.CollectionArrears,
		"collection_current": rec.CollectionCurrent,
		"receipt_no":         rec.ReceiptNo,
		"receipt_date":       rec.ReceiptDate,
		"challan_no":         rec.ChallanNo,
		"challan_date":       rec.ChallanDate,
		"remarks":            rec.Remarks,
		"financial_year":     rec.FinancialYear,
	}
	if rec.DistrictID != nil {
		p["district_id"] = *rec.DistrictID
	}
	if rec.InstitutionID != nil {
		p["institution_id"] = *rec.InstitutionID
	}
	if opts.ComputeTotals {
		var dry, wet float64
		if rec.ExtentDry != nil {
			dry = *rec.ExtentDry
		}
		if rec.ExtentWet != nil {
			wet = *rec.ExtentWet
		}
		demand := rec.DemandArrears + rec.DemandCurrent
		collection := rec.CollectionArrears + rec.CollectionCurrent
		p["extent_total"] = dry + wet
		p["demand_total"] = demand
		p["collection_total"] = collection
		p["balance_arrears"] = rec.DemandArrears - rec.CollectionArrears
		p["balance_current"] = rec.DemandCurrent - rec.CollectionCurrent
		p["balance_total"] = demand - collection
	}
	return p
}
