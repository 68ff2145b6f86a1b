package rebuild

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes in-place progress lines for a rebuild pass.
// A report lands every reportInterval terms and once more on Finish,
// carriage-return framed so a terminal shows one updating line.
type ProgressTracker struct {
	mu        sync.Mutex
	w         io.Writer
	total     int
	interval  int
	current   int
	flushedAt int
	begun     time.Time
	running   bool
}

// NewProgressTracker returns a tracker over total terms reporting every
// reportInterval terms. Nothing is written before Start.
func NewProgressTracker(w io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{w: w, total: total, interval: reportInterval}
}

// Start resets the counters and begins timing the pass.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.begun = time.Now()
	p.running = true
	p.current = 0
	p.flushedAt = 0
}

// Update records that current terms are done, clamped to the total.
// Calls before Start are ignored.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	if current > p.total {
		current = p.total
	}
	p.current = current

	if p.current-p.flushedAt >= p.interval {
		p.flush()
	}
}

// Finish forces a final report at the total and terminates the line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.current = p.total
	p.flush()
	fmt.Fprintln(p.w)
}

// Elapsed returns how long the pass has been running, zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.begun)
}

// flush writes one progress line. Callers hold the lock.
func (p *ProgressTracker) flush() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total) * 100.0
	}
	var rate float64
	if elapsed := time.Since(p.begun).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fmt.Fprintf(p.w, "\rFolded %d/%d terms (%.1f%%) at %.1f terms/s",
		p.current, p.total, pct, rate)
	p.flushedAt = p.current
}
