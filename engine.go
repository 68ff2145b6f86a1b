// Copyright 2025 Ogen Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package hipus is a Hebrew-aware text search engine. The Engine ties
// together the persistent document store, the in-memory inverted index,
// the fuzzy matcher, the tf-idf scorer and the autocomplete vocabulary,
// and is the one instance a process needs.
package hipus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/fuzzy"
	"github.com/ogenlabs/hipus/hebrew"
	"github.com/ogenlabs/hipus/index"
	"github.com/ogenlabs/hipus/ingestion"
	"github.com/ogenlabs/hipus/rebuild"
	"github.com/ogenlabs/hipus/search"
	"github.com/ogenlabs/hipus/storage"
	"github.com/ogenlabs/hipus/storage/badger"
	"github.com/ogenlabs/hipus/suggest"
	"github.com/ogenlabs/hipus/tfidf"
)

var (
	// ErrIncompatibleStore indicates the store on disk was written with a
	// record format this build cannot read.
	ErrIncompatibleStore = errors.New("incompatible store format")

	// ErrRebuildRunning indicates a vector rebuild is already in flight.
	ErrRebuildRunning = errors.New("rebuild already running")
)

const (
	// DefaultCacheEntries is the query cache capacity used when no option
	// overrides it.
	DefaultCacheEntries = 1024

	// DefaultRebuildEvery is the number of mutations after which a
	// background vector rebuild is scheduled.
	DefaultRebuildEvery = 64
)

// Engine is a complete search engine instance over one store. Mutations
// serialize behind an internal mutex; queries run concurrently against
// the in-memory structures.
type Engine struct {
	store     storage.Store
	index     *index.Index
	matcher   *fuzzy.Matcher
	scorer    *tfidf.Scorer
	suggester *suggest.Suggester
	planner   *search.Planner
	pipeline  *ingestion.Pipeline
	rebuilder *rebuild.Rebuilder
	cache     *search.QueryCache
	pool      *ants.Pool
	logger    *slog.Logger

	// mu serializes IndexDocument, IndexDocuments and RemoveDocument so
	// the store and the in-memory structures move in step.
	mu           sync.Mutex
	rebuildEvery int64
	pending      atomic.Int64
	rebuilding   atomic.Bool

	baseCtx context.Context
	stop    context.CancelFunc
}

var _ ingestion.Applier = (*Engine)(nil)

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger          *slog.Logger
	cacheEntries    int64
	rebuildEvery    int64
	ingestWorkers   int
	fuzzyThreshold  float64
	rebuildConfig   *rebuild.Config
	rebuildProgress io.Writer
}

func defaultEngineOptions() *engineOptions {
	return &engineOptions{
		logger:       slog.Default(),
		cacheEntries: DefaultCacheEntries,
		rebuildEvery: DefaultRebuildEvery,
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithCacheEntries sets the query cache capacity. A non-positive value
// disables the cache entirely.
func WithCacheEntries(entries int64) Option {
	return func(o *engineOptions) {
		o.cacheEntries = entries
	}
}

// WithAutoRebuild sets how many mutations accumulate before a background
// vector rebuild is scheduled. A non-positive value disables automatic
// rebuilds; Rebuild can still be called directly.
func WithAutoRebuild(every int) Option {
	return func(o *engineOptions) {
		o.rebuildEvery = int64(every)
	}
}

// WithIngestWorkers sets the worker pool size for batch normalization.
func WithIngestWorkers(workers int) Option {
	return func(o *engineOptions) {
		o.ingestWorkers = workers
	}
}

// WithFuzzyThreshold sets the similarity floor for fuzzy expansion.
// Default is fuzzy.DefaultThreshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(o *engineOptions) {
		o.fuzzyThreshold = threshold
	}
}

// WithRebuildConfig overrides the vector rebuild tuning.
func WithRebuildConfig(cfg *rebuild.Config) Option {
	return func(o *engineOptions) {
		o.rebuildConfig = cfg
	}
}

// WithRebuildProgress routes rebuild progress output to w. Default is
// no output.
func WithRebuildProgress(w io.Writer) Option {
	return func(o *engineOptions) {
		o.rebuildProgress = w
	}
}

// Open opens the store at path and hydrates an Engine from it. A path
// with no prior store starts empty; a store written with an
// incompatible record format fails with ErrIncompatibleStore.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	store, err := badger.NewStore(path)
	if err != nil {
		return nil, err
	}
	return newEngine(ctx, store, opts...)
}

// OpenMemory creates an Engine over an in-memory store. Nothing
// survives Close; intended for tests and ephemeral runs.
func OpenMemory(ctx context.Context, opts ...Option) (*Engine, error) {
	store, err := badger.NewMemoryStore()
	if err != nil {
		return nil, err
	}
	return newEngine(ctx, store, opts...)
}

func newEngine(ctx context.Context, store storage.Store, opts ...Option) (*Engine, error) {
	options := defaultEngineOptions()
	for _, opt := range opts {
		opt(options)
	}

	meta, err := store.GetMeta(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("read index meta: %w", err)
	}
	if meta != nil && meta.FormatVersion != core.FormatVersion {
		store.Close()
		return nil, fmt.Errorf("%w: store has format %d, this build reads format %d",
			ErrIncompatibleStore, meta.FormatVersion, core.FormatVersion)
	}

	baseCtx, stop := context.WithCancel(context.Background())
	e := &Engine{
		store:        store,
		index:        index.New(),
		matcher:      fuzzy.NewMatcher(),
		scorer:       tfidf.NewScorer(),
		suggester:    suggest.New(),
		logger:       options.logger,
		rebuildEvery: options.rebuildEvery,
		baseCtx:      baseCtx,
		stop:         stop,
	}

	if err := e.hydrate(ctx); err != nil {
		e.unwind()
		return nil, err
	}

	plannerOpts := []search.Option{search.WithLogger(e.logger)}
	if options.cacheEntries > 0 {
		cache, err := search.NewQueryCache(options.cacheEntries)
		if err != nil {
			e.unwind()
			return nil, err
		}
		e.cache = cache
		plannerOpts = append(plannerOpts, search.WithCache(cache))
	}
	if options.fuzzyThreshold > 0 {
		plannerOpts = append(plannerOpts, search.WithFuzzyThreshold(options.fuzzyThreshold))
	}
	e.planner, err = search.NewPlanner(e.index, e.matcher, e.scorer, store, plannerOpts...)
	if err != nil {
		e.unwind()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{ingestion.WithLogger(e.logger)}
	if options.ingestWorkers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(options.ingestWorkers))
	}
	e.pipeline, err = ingestion.NewPipeline(e, pipelineOpts...)
	if err != nil {
		e.unwind()
		return nil, err
	}

	// One slot: scheduleRebuild guarantees a single rebuild in flight.
	e.pool, err = ants.NewPool(1)
	if err != nil {
		e.unwind()
		return nil, err
	}

	e.rebuilder = rebuild.NewRebuilder(e.index, e.scorer, options.rebuildConfig, options.rebuildProgress)
	if err := e.rebuilder.Run(ctx); err != nil {
		e.unwind()
		return nil, fmt.Errorf("initial vector build: %w", err)
	}

	if meta == nil {
		first := &core.IndexMeta{FormatVersion: core.FormatVersion, UpdatedAt: time.Now().UTC()}
		if err := store.PutMeta(ctx, first); err != nil {
			e.unwind()
			return nil, fmt.Errorf("write index meta: %w", err)
		}
	}

	e.logger.Info("engine ready",
		"documents", e.index.DocCount(),
		"terms", e.index.TermCount())
	return e, nil
}

// hydrate rebuilds the in-memory structures from the store. Vocabulary
// statistics come from the persisted posting groups, so they cannot
// drift from the postings themselves.
func (e *Engine) hydrate(ctx context.Context) error {
	err := e.store.LoadPostings(ctx, func(term string, stats core.TermStats, postings []core.Posting) error {
		e.index.Restore(term, stats, postings)
		e.matcher.Add(term)
		e.suggester.Update(term, stats.DocFrequency)
		return nil
	})
	if err != nil {
		return fmt.Errorf("hydrate postings: %w", err)
	}

	// Documents whose text normalized to zero terms have no postings;
	// this pass keeps them in the document count.
	err = e.store.ForEachDocument(ctx, func(doc *core.Document) error {
		e.index.RestoreDoc(doc.Id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("hydrate documents: %w", err)
	}
	return nil
}

// unwind releases whatever newEngine has constructed so far.
func (e *Engine) unwind() {
	e.stop()
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	if e.pool != nil {
		e.pool.Release()
	}
	if e.cache != nil {
		e.cache.Close()
	}
	e.store.Close()
}

// Close stops background work and closes the store. The metadata record
// is refreshed on the way out so the store carries the time of its last
// clean shutdown.
func (e *Engine) Close() error {
	e.stop()
	e.pipeline.Release()
	e.pool.Release()
	if e.cache != nil {
		e.cache.Close()
	}

	meta := &core.IndexMeta{
		FormatVersion: core.FormatVersion,
		Generation:    e.index.Generation(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := e.store.PutMeta(context.Background(), meta); err != nil {
		e.logger.Error("error refreshing index meta on close", "err", err)
	}

	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// IndexDocument normalizes and indexes one document. Re-indexing an id
// replaces its previous postings wholesale.
func (e *Engine) IndexDocument(ctx context.Context, id core.DocID, text string, metadata map[string]string) error {
	doc := &core.Document{Id: id, Text: text, Metadata: metadata}
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	tokens := hebrew.Normalize(text)
	doc.TokenCount = uint32(len(tokens))
	return e.Apply(ctx, doc, index.BuildPostings(id, tokens))
}

// IndexDocuments ingests a batch: the whole batch is validated up
// front, normalization fans out across the ingestion pool, application
// is sequential in input order. Returns how many documents landed.
func (e *Engine) IndexDocuments(ctx context.Context, docs ...ingestion.Document) (int, error) {
	return e.pipeline.Ingest(ctx, docs...)
}

// Apply persists one prepared document and folds it into the in-memory
// structures. It implements ingestion.Applier; IndexDocument and the
// batch pipeline both land here.
func (e *Engine) Apply(ctx context.Context, doc *core.Document, postings map[string]*core.Posting) error {
	e.mu.Lock()
	err := e.store.SaveDocument(ctx, doc, postings)
	if err == nil {
		e.fanout(e.index.Put(doc.Id, postings))
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.noteMutation()
	return nil
}

// RemoveDocument deletes a document and all of its postings. Returns
// storage.ErrNotFound when the id was never indexed.
func (e *Engine) RemoveDocument(ctx context.Context, id core.DocID) error {
	e.mu.Lock()
	err := e.store.DeleteDocument(ctx, id)
	if err == nil {
		if delta, existed := e.index.Remove(id); existed {
			e.fanout(delta)
		}
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.noteMutation()
	return nil
}

// GetDocument retrieves one stored document.
func (e *Engine) GetDocument(ctx context.Context, id core.DocID) (*core.Document, error) {
	return e.store.GetDocument(ctx, id)
}

// Search resolves a query and returns the requested page of ranked
// hits. See the search package for modes and options.
func (e *Engine) Search(ctx context.Context, query string, opts search.Options) ([]core.SearchHit, error) {
	return e.planner.Search(ctx, query, opts)
}

// Suggest completes a typed prefix against the live vocabulary, ranked
// by document frequency.
func (e *Engine) Suggest(prefix string, limit int) []core.Suggestion {
	return e.suggester.Suggest(prefix, limit)
}

// Rebuild recomputes the tf-idf vectors from the current index state
// and swaps them in. Only one rebuild runs at a time; a call while one
// is in flight returns ErrRebuildRunning.
func (e *Engine) Rebuild(ctx context.Context) error {
	if !e.rebuilding.CompareAndSwap(false, true) {
		return ErrRebuildRunning
	}
	defer e.rebuilding.Store(false)
	e.pending.Store(0)
	return e.rebuilder.Run(ctx)
}

// Stats reports the live size of the in-memory structures.
type Stats struct {
	Documents        int    `json:"documents"`
	Terms            int    `json:"terms"`
	Generation       uint64 `json:"generation"`
	VectorGeneration uint64 `json:"vectorGeneration"`
}

// Stats returns current index and vector counters. VectorGeneration
// trailing Generation means mutations landed since the last rebuild.
func (e *Engine) Stats() Stats {
	return Stats{
		Documents:        e.index.DocCount(),
		Terms:            e.index.TermCount(),
		Generation:       e.index.Generation(),
		VectorGeneration: e.scorer.Generation(),
	}
}

// fanout forwards vocabulary deltas to the fuzzy matcher and the
// suggestion vocabulary. Caller holds the mutation lock.
func (e *Engine) fanout(delta map[string]uint32) {
	for term, df := range delta {
		e.suggester.Update(term, df)
		if df == 0 {
			e.matcher.Remove(term)
		} else {
			e.matcher.Add(term)
		}
	}
}

func (e *Engine) noteMutation() {
	if e.rebuildEvery <= 0 {
		return
	}
	if e.pending.Add(1) < e.rebuildEvery {
		return
	}
	e.scheduleRebuild()
}

// scheduleRebuild starts a background vector rebuild unless one is
// already in flight. Failures are logged and left for the next trigger;
// the previous vector set stays authoritative throughout.
func (e *Engine) scheduleRebuild() {
	if !e.rebuilding.CompareAndSwap(false, true) {
		return
	}
	err := e.pool.Submit(func() {
		defer e.rebuilding.Store(false)
		e.pending.Store(0)
		if err := e.rebuilder.Run(e.baseCtx); err != nil {
			e.logger.Error("background vector rebuild failed", "err", err)
		}
	})
	if err != nil {
		e.rebuilding.Store(false)
		e.logger.Warn("vector rebuild not scheduled", "err", err)
	}
}
