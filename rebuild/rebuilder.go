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


package rebuild

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ogenlabs/hipus/index"
	"github.com/ogenlabs/hipus/tfidf"
)

// Config holds configuration for a rebuild pass.
type Config struct {
	// BatchSize is the number of vocabulary terms folded in per batch
	BatchSize int

	// ReportInterval is how often to report progress (number of terms)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for a failed pass
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      512,
		ReportInterval: 1000,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Snapshotter supplies a consistent view of the index to rebuild from.
type Snapshotter interface {
	Snapshot() []index.TermEntry
	DocCount() int
	Generation() uint64
}

// Swapper receives the finished vector set.
type Swapper interface {
	Swap(set *tfidf.VectorSet)
}

// Rebuilder orchestrates tf-idf vector rebuilds from index snapshots.
type Rebuilder struct {
	source   Snapshotter
	sink     Swapper
	config   *Config
	progress io.Writer
}

// NewRebuilder creates a new rebuilder.
// progress: where to write progress output (typically os.Stderr); nil
// discards it.
func NewRebuilder(source Snapshotter, sink Swapper, config *Config, progress io.Writer) *Rebuilder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Rebuilder{
		source:   source,
		sink:     sink,
		config:   config,
		progress: progress,
	}
}

// Run executes a rebuild pass, retrying transient failures with
// exponential backoff. An empty index still swaps in an empty set, so
// vectors for removed documents do not outlive a full clear. On error
// the previously swapped set stays authoritative.
func (r *Rebuilder) Run(ctx context.Context) error {
	return RetryWithBackoff(ctx, func() error {
		return r.rebuild(ctx)
	}, r.config.MaxRetries, r.config.RetryDelay)
}

// rebuild performs one snapshot-build-swap pass.
func (r *Rebuilder) rebuild(ctx context.Context) error {
	entries := r.source.Snapshot()
	docCount := r.source.DocCount()
	generation := r.source.Generation()

	batchSize := r.config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}

	fmt.Fprintf(r.progress, "Rebuilding vectors over %d documents, %d terms (batch size: %d)\n",
		docCount, len(entries), batchSize)

	tracker := NewProgressTracker(r.progress, len(entries), r.config.ReportInterval)
	tracker.Start()

	builder := tfidf.NewBuilder(docCount, generation)
	for i := 0; i < len(entries); i += batchSize {
		// Cancellation lands between batches; the set under
		// construction is discarded unswapped.
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		for _, entry := range entries[i:end] {
			builder.AddTerm(entry)
		}
		tracker.Update(end)
	}

	r.sink.Swap(builder.Finish())
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Rebuild complete. Folded %d terms in %v\n",
		len(entries), elapsed.Round(time.Millisecond))

	return nil
}
