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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/hebrew"
	"github.com/ogenlabs/hipus/index"
	"github.com/panjf2000/ants/v2"
)

// Document is one unit of input for batch indexing.
type Document struct {
	Id       core.DocID
	Text     string
	Metadata map[string]string
}

// Applier takes one prepared document into the index. Calls arrive
// sequentially, in input order.
type Applier interface {
	Apply(ctx context.Context, doc *core.Document, postings map[string]*core.Posting) error
}

// prepared is the output of the normalization stage for one document.
type prepared struct {
	doc      *core.Document
	postings map[string]*core.Posting
}

// Pipeline orchestrates batch ingestion: concurrent normalization on a
// worker pool, then sequential application.
type Pipeline struct {
	applier Applier
	pool    *ants.Pool
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent normalization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new batch ingestion pipeline.
func NewPipeline(applier Applier, opts ...Option) (*Pipeline, error) {
	if applier == nil {
		return nil, ErrApplierRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		applier: applier,
		pool:    pool,
		logger:  slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates, normalizes and applies a batch of documents. It
// returns the number of documents applied. Validation covers the whole
// batch before any document is touched, so an invalid entry rejects the
// batch with nothing applied. An application error stops the batch;
// documents already applied stay applied.
func (p *Pipeline) Ingest(ctx context.Context, docs ...Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	for i := range docs {
		candidate := core.Document{Id: docs[i].Id, Text: docs[i].Text, Metadata: docs[i].Metadata}
		if err := core.ValidateDocument(&candidate); err != nil {
			return 0, fmt.Errorf("document %d: %w", i, err)
		}
	}

	// Normalization fans out; results land in per-document slots, so no
	// locking is needed.
	results := make([]prepared, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = prepare(docs[i])
		}
		if err := p.pool.Submit(task); err != nil {
			// Submit only fails once the pool is released; run inline.
			p.logger.Warn("normalization pool rejected task, running inline", "err", err)
			task()
		}
	}
	wg.Wait()

	applied := 0
	for i := range results {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := p.applier.Apply(ctx, results[i].doc, results[i].postings); err != nil {
			return applied, fmt.Errorf("document %q: %w", results[i].doc.Id, err)
		}
		applied++
	}

	p.logger.Debug("batch ingested", "count", applied)
	return applied, nil
}

// prepare normalizes one document's text into postings.
func prepare(input Document) prepared {
	tokens := hebrew.Normalize(input.Text)
	doc := &core.Document{
		Id:         input.Id,
		Text:       input.Text,
		Metadata:   input.Metadata,
		TokenCount: uint32(len(tokens)),
	}
	return prepared{doc: doc, postings: index.BuildPostings(input.Id, tokens)}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
