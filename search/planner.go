package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/fuzzy"
	"github.com/ogenlabs/hipus/hebrew"
	"github.com/ogenlabs/hipus/index"
	"github.com/ogenlabs/hipus/tfidf"
)

// Mode selects the matching strategy for one search call.
type Mode string

const (
	ModeExact    Mode = "exact"
	ModeFuzzy    Mode = "fuzzy"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// DefaultLimit is the page size used when Options.Limit is zero.
const DefaultLimit = 10

// Hybrid blend weights. Each strategy's scores are max-normalized to
// [0,1] before weighting, so the weights express relative trust, not
// absolute scale.
const (
	exactWeight    = 0.4
	fuzzyWeight    = 0.3
	semanticWeight = 0.3
)

// Options control a single search call.
type Options struct {
	Mode   Mode // empty means ModeHybrid
	Limit  int  // page size, DefaultLimit when <= 0
	Offset int  // ranked hits to skip before the page
}

// DocumentSource supplies raw document text for snippet assembly.
// Missing documents are skipped, not reported as errors.
type DocumentSource interface {
	GetDocuments(ctx context.Context, ids ...core.DocID) ([]*core.Document, error)
}

// Planner resolves queries against the in-memory index using the
// strategy the caller picked.
type Planner struct {
	index   *index.Index
	matcher *fuzzy.Matcher
	scorer  *tfidf.Scorer
	docs    DocumentSource
	cache   *QueryCache
	logger  *slog.Logger

	fuzzyThreshold float64
}

// Option configures a Planner.
type Option func(*Planner) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCache routes searches through a query cache.
func WithCache(cache *QueryCache) Option {
	return func(p *Planner) error {
		p.cache = cache
		return nil
	}
}

// WithFuzzyThreshold sets the similarity floor for fuzzy expansion.
// Default is fuzzy.DefaultThreshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(p *Planner) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("fuzzy threshold must be in (0,1], got %v", threshold)
		}
		p.fuzzyThreshold = threshold
		return nil
	}
}

// NewPlanner creates a new query planner.
func NewPlanner(idx *index.Index, matcher *fuzzy.Matcher, scorer *tfidf.Scorer, docs DocumentSource, opts ...Option) (*Planner, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if matcher == nil {
		return nil, ErrMatcherRequired
	}
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	if docs == nil {
		return nil, ErrDocumentSourceRequired
	}

	p := &Planner{
		index:          idx,
		matcher:        matcher,
		scorer:         scorer,
		docs:           docs,
		logger:         slog.Default(),
		fuzzyThreshold: fuzzy.DefaultThreshold,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Search resolves a query and returns the requested page of ranked hits.
func (p *Planner) Search(ctx context.Context, query string, opts Options) ([]core.SearchHit, error) {
	return p.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor resolves a query with per-stage monitoring.
// The monitor receives callbacks at each stage of the search process;
// on a cache hit only Start, AfterNormalize and Finish fire.
func (p *Planner) SearchWithMonitor(ctx context.Context, query string, opts Options, monitor Monitor) ([]core.SearchHit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeHybrid
	}
	switch mode {
	case ModeExact, ModeFuzzy, ModeSemantic, ModeHybrid:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, opts.Mode)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	monitor.Start(query)

	tokens := hebrew.Normalize(query)
	terms := make([]string, len(tokens))
	for i, token := range tokens {
		terms[i] = token.Term
	}
	monitor.AfterNormalize(terms)

	// A query that normalizes to nothing matches nothing. Not an error.
	if len(terms) == 0 {
		empty := []core.SearchHit{}
		monitor.Finish(empty)
		return empty, nil
	}

	var (
		hits []core.SearchHit
		err  error
	)
	if p.cache != nil {
		key := queryKey(terms, mode, limit, offset, p.index.Generation(), p.scorer.Generation())
		hits, err = p.cache.GetOrCompute(key, func() ([]core.SearchHit, error) {
			return p.runSearch(ctx, terms, mode, limit, offset, monitor)
		})
	} else {
		hits, err = p.runSearch(ctx, terms, mode, limit, offset, monitor)
	}
	if err != nil {
		return nil, err
	}

	monitor.Finish(hits)
	return hits, nil
}

// runSearch executes the selected strategies and assembles the page.
func (p *Planner) runSearch(ctx context.Context, terms []string, mode Mode, limit, offset int, monitor Monitor) ([]core.SearchHit, error) {
	// matched collects the vocabulary terms that produced hits, for
	// snippet alignment against the raw text.
	matched := make(map[string]struct{})

	var scores map[core.DocID]float64
	switch mode {
	case ModeExact:
		scores = p.exactScores(terms, matched)
		monitor.AfterExactMatch(sortedIds(scores))
	case ModeFuzzy:
		scores = p.fuzzyScores(terms, matched, monitor)
		monitor.AfterFuzzyMatch(sortedIds(scores))
	case ModeSemantic:
		scores = p.semanticScores(terms, matched)
		monitor.AfterSemanticMatch(sortedIds(scores))
	case ModeHybrid:
		exact := p.exactScores(terms, matched)
		monitor.AfterExactMatch(sortedIds(exact))
		fuzzyMatches := p.fuzzyScores(terms, matched, monitor)
		monitor.AfterFuzzyMatch(sortedIds(fuzzyMatches))
		semantic := p.semanticScores(terms, matched)
		monitor.AfterSemanticMatch(sortedIds(semantic))
		scores = blend(exact, fuzzyMatches, semantic)
	}

	hits := paginate(rank(scores), limit, offset)
	if err := p.attachSnippets(ctx, hits, matched); err != nil {
		p.logger.Error("error retrieving documents for snippets", "hitCount", len(hits), "err", err)
		return nil, err
	}
	return hits, nil
}

// exactScores requires every query term to be present; score is the sum
// of the term frequencies of the query terms.
func (p *Planner) exactScores(terms []string, matched map[string]struct{}) map[core.DocID]float64 {
	ids := p.index.BooleanQuery(terms, true)
	if len(ids) == 0 {
		return nil
	}
	in := make(map[core.DocID]struct{}, len(ids))
	for _, id := range ids {
		in[id] = struct{}{}
	}

	scores := make(map[core.DocID]float64, len(ids))
	for _, term := range terms {
		matched[term] = struct{}{}
		for _, posting := range p.index.Lookup(term) {
			if _, ok := in[posting.DocId]; ok {
				scores[posting.DocId] += float64(posting.Frequency)
			}
		}
	}
	return scores
}

// fuzzyScores expands each query term against the vocabulary and unions
// the postings; score is term frequency weighted by edit similarity.
func (p *Planner) fuzzyScores(terms []string, matched map[string]struct{}, monitor Monitor) map[core.DocID]float64 {
	scores := make(map[core.DocID]float64)
	for _, term := range terms {
		matches := p.matcher.Expand(term, p.fuzzyThreshold)
		monitor.AfterFuzzyExpansion(term, matches)
		for _, match := range matches {
			postings := p.index.Lookup(match.Term)
			if len(postings) == 0 {
				continue
			}
			matched[match.Term] = struct{}{}
			for _, posting := range postings {
				scores[posting.DocId] += float64(posting.Frequency) * match.Similarity
			}
		}
	}
	return scores
}

// semanticScores ranks by TF-IDF cosine similarity against the active
// vector set. The set may predate recent mutations, so documents no
// longer in the index are dropped here.
func (p *Planner) semanticScores(terms []string, matched map[string]struct{}) map[core.DocID]float64 {
	docScores := p.scorer.Similarity(terms)
	if len(docScores) == 0 {
		return nil
	}

	scores := make(map[core.DocID]float64, len(docScores))
	for _, ds := range docScores {
		if !p.index.Contains(ds.Id) {
			continue
		}
		scores[ds.Id] = ds.Score
	}
	for _, term := range terms {
		if _, ok := p.index.Stats(term); ok {
			matched[term] = struct{}{}
		}
	}
	return scores
}

// blend max-normalizes each strategy's scores and adds them under fixed
// weights.
func blend(exact, fuzzyMatches, semantic map[core.DocID]float64) map[core.DocID]float64 {
	blended := make(map[core.DocID]float64)
	accumulate := func(scores map[core.DocID]float64, weight float64) {
		var peak float64
		for _, score := range scores {
			if score > peak {
				peak = score
			}
		}
		if peak <= 0 {
			return
		}
		for id, score := range scores {
			blended[id] += weight * score / peak
		}
	}
	accumulate(exact, exactWeight)
	accumulate(fuzzyMatches, fuzzyWeight)
	accumulate(semantic, semanticWeight)
	return blended
}

// rank orders positive scores descending, ties by document id ascending.
func rank(scores map[core.DocID]float64) []core.SearchHit {
	hits := make([]core.SearchHit, 0, len(scores))
	for id, score := range scores {
		if score <= 0 {
			continue
		}
		hits = append(hits, core.SearchHit{DocId: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocId < hits[j].DocId
	})
	return hits
}

// paginate applies offset and limit to the ranked list.
func paginate(hits []core.SearchHit, limit, offset int) []core.SearchHit {
	if offset >= len(hits) {
		return []core.SearchHit{}
	}
	hits = hits[offset:]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// attachSnippets fetches the page's documents and fills in the snippets.
func (p *Planner) attachSnippets(ctx context.Context, hits []core.SearchHit, matched map[string]struct{}) error {
	if len(hits) == 0 {
		return nil
	}
	ids := make([]core.DocID, len(hits))
	for i := range hits {
		ids[i] = hits[i].DocId
	}
	docs, err := p.docs.GetDocuments(ctx, ids...)
	if err != nil {
		return err
	}

	texts := make(map[core.DocID]string, len(docs))
	for _, doc := range docs {
		texts[doc.Id] = doc.Text
	}
	for i := range hits {
		if text, ok := texts[hits[i].DocId]; ok {
			hits[i].Snippet = Snippet(text, matched)
		}
	}
	return nil
}

// sortedIds returns the score map's keys in ascending order, for
// monitoring callbacks.
func sortedIds(scores map[core.DocID]float64) []core.DocID {
	ids := make([]core.DocID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
