package service

import (
	"context"
	"fmt"

	"dcb-service/internal/dcb/model"
	"dcb-service/internal/store"
)

// Reconciler buffers assembled records, partitions them into fixed-size
// batches and drives the store's upsert. One reconciler serves one sheet.
type Reconciler struct {
	store       store.Store
	table       string
	conflictKey []string
	opts        model.Options

	buf    []keyedRecord
	result model.BatchResult
}

type keyedRecord struct {
	key     string
	payload store.Record
}

func NewReconciler(st store.Store, table string, conflictKey []string, opts model.Options) *Reconciler {
	return &Reconciler{
		store:       st,
		table:       table,
		conflictKey: conflictKey,
		opts:        opts.Normalize(),
	}
}

// Add buffers one record and flushes when the batch is full.
func (r *Reconciler) Add(ctx context.Context, rec model.NormalizedRecord) error {
	r.buf = append(r.buf, keyedRecord{key: rec.Key(), payload: Payload(rec, r.opts)})
	if len(r.buf) >= r.opts.BatchSize {
		return r.Flush(ctx)
	}
	return nil
}

// Skip counts a classifier-rejected row. Rejections are bookkeeping, not
// processing errors.
func (r *Reconciler) Skip() { r.result.Skipped++ }

// Flush submits the buffered batch. Duplicate idempotency keys within the
// batch keep the last-seen record before submission: stores reject duplicate
// conflict keys inside one upsert call. A failed batch falls back to
// per-record submission so one malformed record does not sink its
// batch-mates.
func (r *Reconciler) Flush(ctx context.Context) error {
	if len(r.buf) == 0 {
		return nil
	}
	batch := dedupLastWins(r.buf)
	r.result.Skipped += len(r.buf) - len(batch)
	r.buf = r.buf[:0]

	res, err := r.store.Upsert(ctx, r.table, batch, r.conflictKey)
	if err != nil {
		r.submitIndividually(ctx, batch)
		return nil
	}
	r.fold(res)
	return nil
}

func (r *Reconciler) submitIndividually(ctx context.Context, batch []store.Record) {
	for _, rec := range batch {
		res, err := r.store.Upsert(ctx, r.table, []store.Record{rec}, r.conflictKey)
		if err != nil {
			r.recordError(fmt.Sprintf("upsert %v: %v", rec[r.conflictKey[0]], err))
			continue
		}
		r.fold(res)
	}
}

func (r *Reconciler) fold(res store.UpsertResult) {
	r.result.Created += res.Created
	r.result.Updated += res.Updated
	for _, rej := range res.Rejected {
		r.recordError(fmt.Sprintf("upsert %v: %v", rej.Record[r.conflictKey[0]], rej.Err))
	}
}

func (r *Reconciler) recordError(msg string) {
	r.result.Errors++
	if len(r.result.Samples) < r.opts.MaxErrorSamples {
		r.result.Samples = append(r.result.Samples, msg)
	}
}

// Result returns the accumulated counts. Call after the final Flush.
func (r *Reconciler) Result() model.BatchResult { return r.result }

func dedupLastWins(buf []keyedRecord) []store.Record {
	last := make(map[string]int, len(buf))
	for i, kr := range buf {
		last[kr.key] = i
	}
	out := make([]store.Record, 0, len(last))
	for i, kr := range buf {
		if last[kr.key] == i {
			out = append(out, kr.payload)
		}
	}
	return out
}
