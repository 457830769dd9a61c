package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/oimdp/internal/chunker"
	"github.com/dgallion1/oimdp/internal/doctree"
	"github.com/dgallion1/oimdp/internal/parser"
	"github.com/dgallion1/oimdp/internal/pathstore"
	"github.com/dgallion1/oimdp/internal/stats"
	"github.com/dgallion1/oimdp/internal/store"
)

// Worker processes a single document job.
type Worker struct {
	store     *store.Store
	pathstore *pathstore.Client
	stats     *stats.ParseStats
	log       *slog.Logger
	chunkCfg  chunker.Config
	parseOpts parser.Options

	maxConcurrentStore int
}

// NewWorker builds a worker. ps may be nil, which disables mirroring.
func NewWorker(st *store.Store, ps *pathstore.Client, ss *stats.ParseStats, log *slog.Logger, chunkCfg chunker.Config, parseOpts parser.Options, maxStore int) *Worker {
	if maxStore <= 0 {
		maxStore = 1
	}
	return &Worker{
		store:              st,
		pathstore:          ps,
		stats:              ss,
		log:                log,
		chunkCfg:           chunkCfg,
		parseOpts:          parseOpts,
		maxConcurrentStore: maxStore,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	ex, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		w.fail(log, job, "extracting", err)
		return
	}
	src, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(log, job, "extracting", fmt.Errorf("extract: %w", err))
		return
	}
	job.SetFileData(nil)

	// Phase 1.5: Dedup check
	hash := store.ContentHash(src)
	job.SetContentHash(hash)
	if existing, found, err := w.store.FindByHash(ctx, hash); err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if found {
		log.Info("duplicate document, skipping", "existing_doc_id", existing.ID)
		job.SetDocID(existing.ID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	start := time.Now()
	res, err := parser.ParseText(src, job.Filename)
	if err != nil {
		w.fail(log, job, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	st := res.Document.Stats()
	if w.stats != nil {
		w.stats.Record(stats.Sample{
			Duration: time.Since(start),
			Bytes:    len(src),
			Items:    st.Items,
			Drops:    len(res.Drops),
		})
	}
	job.SetParsed(st.Items, st.Lines, st.Entities, len(res.Drops))
	for _, d := range res.Drops {
		log.Debug("dropped line", "line", d.Line, "reason", d.Reason.String())
	}
	if job.Title != "" {
		res.Tree.Title = job.Title
	}
	log.Info("parsed document", "items", st.Items, "dropped", len(res.Drops), "title", res.Tree.Title)

	// Phase 3: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkTree(res.Tree, w.chunkCfg)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks))

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	sum, err := w.store.SaveDocument(ctx, store.NewDocument{
		Filename: job.Filename,
		Title:    res.Tree.Title,
		Source:   src,
		Document: res.Document,
		Chunks:   chunks,
	})
	if errors.Is(err, store.ErrDuplicate) {
		log.Info("duplicate document stored concurrently, skipping")
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}
	if err != nil {
		w.fail(log, job, "storing", fmt.Errorf("store: %w", err))
		return
	}
	job.SetDocID(sum.ID)
	log = log.With("doc_id", sum.ID)

	if w.pathstore == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 5: Mirror
	job.SetStatus(StatusStoring, "mirroring")
	fields := make(map[string]string)
	for _, f := range res.Document.Fields() {
		fields[f.Key] = f.Value
	}
	node := pathstore.DocumentNode{
		ID:          sum.ID,
		Title:       sum.Title,
		Filename:    sum.Filename,
		ContentHash: sum.ContentHash,
		Fields:      fields,
		Items:       sum.Items,
		Entities:    sum.Entities,
		Chunks:      sum.Chunks,
	}
	if err := withRetry(ctx, log, "document", func() error { return w.pathstore.PutDocument(ctx, node) }); err != nil {
		log.Error("mirror document failed", "error", err)
		job.AddError(fmt.Sprintf("mirror document: %s", err))
		job.SetStatus(StatusPartial, "done")
		return
	}

	failed := w.mirrorChunks(ctx, log, job, sum.ID, chunks)
	log.Info("mirror complete", "chunks", len(chunks), "failed", failed)
	if failed > 0 {
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// mirrorChunks writes chunks with bounded concurrency and returns how
// many could not be written.
func (w *Worker) mirrorChunks(ctx context.Context, log *slog.Logger, job *Job, docID string, chunks []doctree.Chunk) int {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	sem := make(chan struct{}, w.maxConcurrentStore)

	for _, ch := range chunks {
		sem <- struct{}{}
		wg.Add(1)
		go func(ch doctree.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			err := withRetry(ctx, log, "chunk", func() error { return w.pathstore.PutChunk(ctx, docID, ch) })
			if err != nil {
				log.Error("mirror chunk failed", "chunk", ch.Index, "error", err)
				job.AddError(fmt.Sprintf("mirror chunk %d: %s", ch.Index, err))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			job.IncrChunksMirrored()
		}(ch)
	}
	wg.Wait()
	return failed
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}
