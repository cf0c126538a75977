package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store on a pgx pool. Table and column names come from
// the engine's closed canonical field set, never from sheet data, so building
// SQL from them is safe; all values travel as bind parameters.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// Upsert issues one multi-row INSERT ... ON CONFLICT ... DO UPDATE.
// RETURNING (xmax = 0) distinguishes freshly inserted rows from updated ones.
func (p *Postgres) Upsert(ctx context.Context, table string, records []Record, conflictKeys []string) (UpsertResult, error) {
	var res UpsertResult
	if len(records) == 0 {
		return res, nil
	}

	cols := columnSet(records)
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")
	for i, rec := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, c := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, rec[c])
			fmt.Fprintf(&sb, "$%d", len(args))
		}
		sb.WriteString(")")
	}
	sb.WriteString(" ON CONFLICT (")
	sb.WriteString(strings.Join(conflictKeys, ", "))
	sb.WriteString(") DO UPDATE SET ")
	first := true
	for _, c := range cols {
		if contains(conflictKeys, c) {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s = EXCLUDED.%s", c, c)
	}
	sb.WriteString(" RETURNING (xmax = 0)")

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return res, fmt.Errorf("store: upsert %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return res, fmt.Errorf("store: upsert %s: %w", table, err)
		}
		if inserted {
			res.Created++
		} else {
			res.Updated++
		}
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("store: upsert %s: %w", table, err)
	}
	return res, nil
}

// Lookup selects rows matching all equality filters.
func (p *Postgres) Lookup(ctx context.Context, table string, filter map[string]any) ([]Record, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)
	if len(filter) > 0 {
		sb.WriteString(" WHERE ")
		keys := make([]string, 0, len(filter))
		for k := range filter {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			args = append(args, filter[k])
			fmt.Fprintf(&sb, "%s = $%d", k, len(args))
		}
	}

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("store: lookup %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("store: lookup %s: %w", table, err)
		}
		rec := Record{}
		for i, fd := range fields {
			rec[fd.Name] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: lookup %s: %w", table, err)
	}
	return out, nil
}

// columnSet is the union of keys across records, sorted for a stable
// statement. Records missing a column bind NULL for it.
func columnSet(records []Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
