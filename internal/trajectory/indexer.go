package trajectory

import (
	"context"
	"fmt"
	"time"

	"patient-trajectory/internal/embedding"
	"patient-trajectory/internal/events"
	"patient-trajectory/internal/vectorindex"
)

// DefaultIndexBatchSize bounds how many patients are linearized and
// embedded per round trip during bulk indexing.
const DefaultIndexBatchSize = 50

// IndexPatients embeds and stores a profile vector for every patient that
// does not have one yet. Already-indexed patients are skipped, so running
// it twice changes nothing. limit > 0 caps how many new patients are
// processed.
//
// Batches run strictly sequentially; batching exists to bound peak memory
// and amortize bulk embedding and persistence, not for parallelism. The
// index is saved at each batch boundary, which is also the only safe
// interruption point.
func (e *Engine) IndexPatients(ctx context.Context, batchSize, limit int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}

	ids, err := e.store.ListPatientIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing patients: %w", categorize(err, events.ErrUnavailable))
	}

	pending := make([]string, 0, len(ids))
	for _, id := range ids {
		if !e.index.Has(id) {
			pending = append(pending, id)
		}
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	e.log.Info().Int("patients", len(pending)).Msg("starting patient indexing")

	indexed := 0
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		n, err := e.indexBatch(ctx, batch)
		if err != nil {
			return indexed, err
		}
		indexed += n

		if err := e.index.Save(ctx); err != nil {
			return indexed, fmt.Errorf("saving index: %w", categorize(err, vectorindex.ErrIndex))
		}
	}

	e.log.Info().Int("indexed", indexed).Msg("patient indexing done")
	return indexed, nil
}

// indexBatch fetches, linearizes, embeds, and upserts one batch.
func (e *Engine) indexBatch(ctx context.Context, batch []string) (int, error) {
	started := time.Now()

	histories, err := e.store.GetEventsBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("fetching batch: %w", categorize(err, events.ErrUnavailable))
	}

	texts := make([]string, 0, len(batch))
	pids := make([]string, 0, len(batch))
	for _, pid := range batch {
		evts := histories[pid]
		if len(evts) == 0 {
			continue
		}
		texts = append(texts, e.lin.Linearize(evts, pid))
		pids = append(pids, pid)
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vecs, err := e.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", categorize(err, embedding.ErrEmbedding))
	}

	for i, pid := range pids {
		if err := e.index.Upsert(ctx, pid, vecs[i]); err != nil {
			return 0, fmt.Errorf("upserting %s: %w", pid, categorize(err, vectorindex.ErrIndex))
		}
	}

	e.log.Debug().
		Int("batch", len(pids)).
		Dur("took", time.Since(started)).
		Msg("indexed batch")

	return len(pids), nil
}
