package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	DatabaseURL string
	// DCBTable receives the upserted ledger records.
	DCBTable string
	// AliasFile points at the TOML district alias table.
	AliasFile string
	ImportDir string
	// Only restricts the directory importer to these labels or district
	// names (comma-separated, case-insensitive). Empty means all.
	Only string

	FinancialYear   string
	BatchSize       int
	MaxErrorSamples int
	// ComputeTotals: emit totals/balances locally instead of relying on the
	// destination table's generated columns.
	ComputeTotals bool
	// ResolveInstitutions: key records by (institution_id, financial_year)
	// after resolving gazette numbers through the store.
	ResolveInstitutions bool
}

func Load() Config {
	// .env is optional, mirrors how the district import jobs are deployed
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	batch, _ := strconv.Atoi(getenv("BATCH_SIZE", "500"))
	samples, _ := strconv.Atoi(getenv("MAX_ERROR_SAMPLES", "5"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:                getenv("HOST", "127.0.0.1"),
		Port:                port,
		AllowOrigins:        origins,
		LogLevel:            getenv("LOG_LEVEL", "info"),
		LogFile:             getenv("LOG_FILE", "logs/dcb-service.log"),
		MaxUploadMB:         mb,
		DatabaseURL:         getenv("DATABASE_URL", ""),
		DCBTable:            getenv("DCB_TABLE", "institution_dcb"),
		AliasFile:           getenv("DISTRICT_ALIASES", "district_aliases.toml"),
		ImportDir:           getenv("IMPORT_DIR", "data"),
		Only:                getenv("ONLY", ""),
		FinancialYear:       getenv("FINANCIAL_YEAR", "2025-26"),
		BatchSize:           batch,
		MaxErrorSamples:     samples,
		ComputeTotals:       toBool(getenv("COMPUTE_TOTALS", "false")),
		ResolveInstitutions: toBool(getenv("RESOLVE_INSTITUTIONS", "false")),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// OnlyLabels parses the Only filter into lowercase labels.
func (c Config) OnlyLabels() []string {
	if strings.TrimSpace(c.Only) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(c.Only, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func toBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
