// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries music catalogs and returns unified, deduplicated,
// relevance-ranked result pages. Implements: prd001-search (R1-R5);
//
//	docs/ARCHITECTURE § Search Aggregation.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/openstream/openstream/internal/cache"
	"github.com/openstream/openstream/pkg/types"
)

// cacheNamespace partitions search pages in the response cache.
const cacheNamespace = "search"

// Backend searches a single upstream catalog. Each backend (archive,
// MusicBrainz) implements this interface per the Strategy pattern. Search
// returns the raw candidates and the upstream's reported total.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.CandidateRecord, int, error)
}

// Aggregator orchestrates one user search end to end: cache read-through,
// concurrent upstream fan-out, scoring, duplicate grouping, and page
// slicing. The cache store is injected; the aggregator owns no globals.
type Aggregator struct {
	backends []Backend
	store    *cache.Store
	cfg      types.SearchConfig
	ttl      time.Duration
	logger   *log.Logger

	// flight collapses concurrent identical requests into one upstream
	// fetch.
	flight singleflight.Group
}

// NewAggregator creates an Aggregator over the given backends. The cache
// store may be nil, in which case every request goes upstream. A zero ttl
// falls back to the store's default.
func NewAggregator(backends []Backend, store *cache.Store, cfg types.SearchConfig, ttl time.Duration, logger *log.Logger) *Aggregator {
	return &Aggregator{
		backends: backends,
		store:    store,
		cfg:      cfg,
		ttl:      ttl,
		logger:   logger,
	}
}

// Search validates the query, serves the page from cache when possible,
// and otherwise fans out to all backends, merges their candidates as
// unordered sets, scores, dedupes, sorts descending by score, and slices
// the requested window.
//
// A backend failure is tolerated as long as at least one backend
// succeeds; when all fail the request surfaces ErrAllSourcesFailed. An
// empty success page is therefore always distinguishable from a failure.
//
// Paging is local to the fetched raw window (SearchConfig.FetchRows per
// backend): NumFound still reports the upstream total, so a window past
// the ranked candidate set returns an empty page rather than more docs.
func (a *Aggregator) Search(ctx context.Context, query string, start, rows int) (*types.SearchResultPage, error) {
	q := strings.TrimSpace(query)
	if q == "" || len(Tokens(q)) == 0 {
		return nil, fmt.Errorf("%w: query has no searchable terms", types.ErrInvalidQuery)
	}
	if len(a.backends) == 0 {
		return nil, fmt.Errorf("no search backends configured")
	}
	if start < 0 {
		start = 0
	}
	if rows <= 0 {
		rows = a.cfg.PageRows
	}
	if rows <= 0 {
		rows = 10
	}

	key := pageKey(a.backends, q, start, rows)
	if a.store != nil {
		if v, ok := a.store.Get(cacheNamespace, key); ok {
			if page, ok := v.(*types.SearchResultPage); ok {
				return page, nil
			}
		}
	}

	v, err, _ := a.flight.Do(key, func() (any, error) {
		return a.fetchPage(ctx, q, start, rows, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.SearchResultPage), nil
}

func (a *Aggregator) fetchPage(ctx context.Context, query string, start, rows int, key string) (*types.SearchResultPage, error) {
	type sourceResult struct {
		idx        int
		candidates []types.CandidateRecord
		numFound   int
		err        error
		name       string
	}

	ch := make(chan sourceResult, len(a.backends))
	var wg sync.WaitGroup
	for i, b := range a.backends {
		wg.Add(1)
		go func(idx int, b Backend) {
			defer wg.Done()
			candidates, numFound, err := b.Search(ctx, query, a.cfg)
			ch <- sourceResult{idx: idx, candidates: candidates, numFound: numFound, err: err, name: b.Name()}
		}(i, b)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	// Collect per backend position so the merge is independent of
	// completion order; the final ordering comes from the scorer alone.
	perSource := make([][]types.CandidateRecord, len(a.backends))
	var failures []string
	numFound := 0
	for sr := range ch {
		if sr.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", sr.name, sr.err))
			a.logger.Warn("search backend failed", "backend", sr.name, "err", sr.err)
			continue
		}
		perSource[sr.idx] = sr.candidates
		if sr.numFound > numFound {
			numFound = sr.numFound
		}
	}

	if len(failures) == len(a.backends) {
		return nil, fmt.Errorf("%w: %s", types.ErrAllSourcesFailed, strings.Join(failures, "; "))
	}

	var scored []types.ScoredCandidate
	for _, candidates := range perSource {
		for _, c := range candidates {
			scored = append(scored, types.ScoredCandidate{
				CandidateRecord: c,
				Score:           Score(c, query),
			})
		}
	}

	deduped := Dedupe(scored)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})

	if len(deduped) > numFound {
		numFound = len(deduped)
	}

	page := &types.SearchResultPage{
		Docs:     slicePage(deduped, start, rows),
		NumFound: numFound,
		Start:    start,
		Rows:     rows,
	}

	if a.store != nil {
		// The key carries the query this page was computed for, so a
		// request that outlives its caller can never poison another
		// query's cache slot.
		a.store.Set(cacheNamespace, key, page, a.ttl)
	}
	return page, nil
}

// slicePage returns the [start, start+rows) window of docs, empty when
// start is past the end. The slice is copied so cached pages are never
// aliased by callers.
func slicePage(docs []types.ScoredCandidate, start, rows int) []types.ScoredCandidate {
	if start >= len(docs) {
		return []types.ScoredCandidate{}
	}
	end := start + rows
	if end > len(docs) {
		end = len(docs)
	}
	out := make([]types.ScoredCandidate, end-start)
	copy(out, docs[start:end])
	return out
}

// pageKey builds the cache key for one page: enabled sources, the
// normalized query, and the page window.
func pageKey(backends []Backend, query string, start, rows int) string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name()
	}
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("%s|%s|%d|%d", strings.Join(names, ","), normalized, start, rows)
}
