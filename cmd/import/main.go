// One-shot importer: walks IMPORT_DIR for workbook files and runs each
// through the pipeline, one district per file (file stem is the district
// label). ONLY=Adoni,VSKP restricts the run.
package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dcb-service/internal/config"
	"dcb-service/internal/dcb/model"
	"dcb-service/internal/dcb/service"
	"dcb-service/internal/fileio"
	"dcb-service/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	aliases, err := config.LoadAliases(cfg.AliasFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("alias table")
	}

	ctx := context.Background()
	st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer st.Close()

	files, err := workbookFiles(cfg.ImportDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ImportDir).Msg("scan import dir")
	}
	files = filterOnly(files, aliases, cfg.OnlyLabels())
	if len(files) == 0 {
		logger.Fatal().Str("dir", cfg.ImportDir).Msg("no workbook files to import")
	}
	logger.Info().Int("files", len(files)).Str("year", cfg.FinancialYear).Msg("import starting")

	opts := model.Options{
		FinancialYear:       cfg.FinancialYear,
		BatchSize:           cfg.BatchSize,
		MaxErrorSamples:     cfg.MaxErrorSamples,
		ComputeTotals:       cfg.ComputeTotals,
		ResolveInstitutions: cfg.ResolveInstitutions,
	}
	runner := service.NewRunner(st, cfg.DCBTable, aliases, opts, logger)

	var totals model.BatchResult
	for _, path := range files {
		label := fileio.Stem(path)
		log := logger.With().Str("file", filepath.Base(path)).Logger()

		f, err := os.Open(path)
		if err != nil {
			log.Error().Err(err).Msg("open")
			continue
		}
		sheets, err := fileio.ReadSheets(f, path)
		f.Close()
		if err != nil {
			log.Error().Err(err).Msg("read workbook")
			continue
		}

		sum := runner.Run(ctx, label, sheets)
		for _, rep := range sum.Sheets {
			if rep.Fatal != "" {
				log.Error().Str("sheet", rep.Sheet).Str("reason", rep.Fatal).Msg("sheet fatal")
			}
		}
		totals.Add(sum.Totals, cfg.MaxErrorSamples)
	}

	logger.Info().
		Int("created", totals.Created).
		Int("updated", totals.Updated).
		Int("skipped", totals.Skipped).
		Int("errors", totals.Errors).
		Msg("import finished")
	for _, s := range totals.Samples {
		logger.Warn().Str("sample", s).Msg("row error")
	}
}

func workbookFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".xls", ".csv":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// filterOnly keeps files whose stem or aliased district name is listed.
func filterOnly(files []string, aliases map[string]string, only []string) []string {
	if len(only) == 0 {
		return files
	}
	allowed := map[string]struct{}{}
	for _, o := range only {
		allowed[o] = struct{}{}
	}
	var out []string
	for _, path := range files {
		s := fileio.Stem(path)
		mapped := strings.ToLower(aliases[s])
		if _, ok := allowed[strings.ToLower(s)]; ok {
			out = append(out, path)
			continue
		}
		if _, ok := allowed[mapped]; ok && mapped != "" {
			out = append(out, path)
		}
	}
	return out
}
