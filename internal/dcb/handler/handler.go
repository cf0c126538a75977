package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dcb-service/internal/config"
	"dcb-service/internal/dcb/model"
	"dcb-service/internal/dcb/service"
	"dcb-service/internal/fileio"
	"dcb-service/internal/store"
)

// Import returns the POST /import handler: multipart upload of one workbook,
// processed sheet by sheet, JSON summary back.
//
// Form fields: file (required), district (label override, defaults to the
// file stem), year, dry_run.
func Import(cfg config.Config, st store.Store, aliases map[string]string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			log = logger.With().Str("req_id", rid).Logger()
		}

		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		sheets, err := fileio.ReadSheets(file, header.Filename)
		if err != nil {
			http.Error(w, "failed to read workbook: "+err.Error(), http.StatusBadRequest)
			return
		}

		label := strings.TrimSpace(r.FormValue("district"))
		if label == "" {
			label = fileio.Stem(header.Filename)
		}

		opts := model.Options{
			FinancialYear:       strings.TrimSpace(r.FormValue("year")),
			BatchSize:           cfg.BatchSize,
			MaxErrorSamples:     cfg.MaxErrorSamples,
			ComputeTotals:       cfg.ComputeTotals,
			ResolveInstitutions: cfg.ResolveInstitutions,
		}
		if opts.FinancialYear == "" {
			opts.FinancialYear = cfg.FinancialYear
		}

		target := st
		if dryRun(r.FormValue("dry_run")) {
			target = &dryRunStore{}
		}

		runner := service.NewRunner(target, cfg.DCBTable, aliases, opts, log)
		sum := runner.Run(r.Context(), label, sheets)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Str("file", header.Filename).
			Int("sheets", len(sum.Sheets)).
			Int("created", sum.Totals.Created).
			Int("updated", sum.Totals.Updated).
			Dur("elapsed", time.Since(start)).
			Msg("import done")
	}
}

func dryRun(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// dryRunStore runs the full pipeline without touching the real store: every
// upsert is accepted as created, every ref lookup resolves to a placeholder.
type dryRunStore struct{}

func (d *dryRunStore) Upsert(_ context.Context, _ string, records []store.Record, _ []string) (store.UpsertResult, error) {
	return store.UpsertResult{Created: len(records)}, nil
}

func (d *dryRunStore) Lookup(_ context.Context, _ string, _ map[string]any) ([]store.Record, error) {
	return []store.Record{{"id": "dry-run"}}, nil
}
