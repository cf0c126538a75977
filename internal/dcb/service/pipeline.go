package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dcb-service/internal/dcb/model"
	"dcb-service/internal/fileio"
	"dcb-service/internal/store"
)

// Runner drives sheets through the pipeline: resolve headers, classify and
// normalize rows, assemble records, reconcile into the store. Sheets are
// processed strictly sequentially; a fatal sheet aborts only itself.
type Runner struct {
	Store store.Store
	// Table receives the DCB records.
	Table string
	// Aliases maps sheet/file labels to canonical district names.
	Aliases map[string]string
	Opts    model.Options
	Log     zerolog.Logger

	// run-scoped read-through caches, nil entries mark known misses
	districtIDs    map[string]*string
	institutionIDs map[string]*string
}

func NewRunner(st store.Store, table string, aliases map[string]string, opts model.Options, log zerolog.Logger) *Runner {
	if table == "" {
		table = "institution_dcb"
	}
	return &Runner{
		Store:          st,
		Table:          table,
		Aliases:        aliases,
		Opts:           opts.Normalize(),
		Log:            log,
		districtIDs:    map[string]*string{},
		institutionIDs: map[string]*string{},
	}
}

func (r *Runner) conflictKey() []string {
	if r.Opts.ResolveInstitutions {
		return []string{"institution_id", "financial_year"}
	}
	return []string{"ap_gazette_no", "financial_year"}
}

// Run processes every sheet under one district label and aggregates the
// reports.
func (r *Runner) Run(ctx context.Context, label string, sheets []fileio.Sheet) model.Summary {
	var sum model.Summary
	for _, sheet := range sheets {
		rep := r.ProcessSheet(ctx, label, sheet)
		sum.Append(rep, r.Opts.MaxErrorSamples)
	}
	return sum
}

// ProcessSheet runs one sheet end to end. Only an unmapped identity column is
// sheet-fatal; everything below that degrades row by row.
func (r *Runner) ProcessSheet(ctx context.Context, label string, sheet fileio.Sheet) model.SheetReport {
	rep := model.SheetReport{Sheet: sheet.Name, State: model.StateLoading}
	log := r.Log.With().Str("sheet", sheet.Name).Str("label", label).Logger()

	rep.State = model.StateResolvingHeaders
	depth := HeaderDepth(sheet.Rows)
	mapping, err := ResolveColumns(HeaderTexts(sheet.Rows, depth))
	if err != nil {
		rep.State = model.StateFatal
		rep.Fatal = err.Error()
		log.Error().Err(err).Msg("sheet skipped")
		return rep
	}
	log.Debug().Int("header_rows", depth).Int("columns", len(mapping)).Msg("headers resolved")

	district, districtID := r.resolveDistrict(ctx, label)
	rep.District = district
	districtUnknown := label != "" && districtID == nil
	if districtUnknown {
		log.Warn().Str("district", district).Msg("district unresolved, rows will be skipped")
	}

	rec := NewReconciler(r.Store, r.Table, r.conflictKey(), r.Opts)
	rep.State = model.StateProcessingRows

	for i := depth; i < len(sheet.Rows); i++ {
		if reason := Classify(sheet.Rows[i], mapping); reason != model.SkipNone {
			rec.Skip()
			continue
		}
		record := Assemble(sheet.Rows[i], mapping, r.Opts)
		if districtUnknown {
			// ConfigurationError: record-fatal, never sheet-fatal
			rec.Skip()
			continue
		}
		record.DistrictID = districtID

		if r.Opts.ResolveInstitutions {
			instID := r.resolveInstitution(ctx, record.ApGazetteNo)
			if instID == nil {
				rec.Skip()
				continue
			}
			record.InstitutionID = instID
		}

		if err := rec.Add(ctx, record); err != nil {
			log.Error().Err(err).Msg("buffer flush")
		}
	}

	rep.State = model.StateReconciling
	if err := rec.Flush(ctx); err != nil {
		log.Error().Err(err).Msg("final flush")
	}

	rep.BatchResult = rec.Result()
	if districtUnknown && rep.Skipped > 0 {
		rep.Samples = append(rep.Samples, fmt.Sprintf("district %q unknown (no alias or store entry)", district))
	}
	rep.State = model.StateDone
	log.Info().
		Int("created", rep.Created).
		Int("updated", rep.Updated).
		Int("skipped", rep.Skipped).
		Int("errors", rep.Errors).
		Msg("sheet done")
	return rep
}

// resolveDistrict maps a sheet/file label through the alias table to the
// canonical district name, then to the store's district ref. Results, hits
// and misses alike, are cached for the run.
func (r *Runner) resolveDistrict(ctx context.Context, label string) (string, *string) {
	if label == "" {
		return "", nil
	}
	name := label
	if alias, ok := r.Aliases[label]; ok {
		name = alias
	}
	if id, ok := r.districtIDs[name]; ok {
		return name, id
	}
	id := r.lookupRef(ctx, "districts", map[string]any{"name": name})
	r.districtIDs[name] = id
	return name, id
}

func (r *Runner) resolveInstitution(ctx context.Context, apNo string) *string {
	if apNo == "" {
		return nil
	}
	if id, ok := r.institutionIDs[apNo]; ok {
		return id
	}
	id := r.lookupRef(ctx, "institutions", map[string]any{"ap_gazette_no": apNo})
	r.institutionIDs[apNo] = id
	return id
}

func (r *Runner) lookupRef(ctx context.Context, table string, filter map[string]any) *string {
	rows, err := r.Store.Lookup(ctx, table, filter)
	if err != nil {
		r.Log.Error().Err(err).Str("table", table).Msg("lookup failed")
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	id := fmt.Sprint(rows[0]["id"])
	return &id
}
