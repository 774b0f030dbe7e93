// Package pairing searches a catalog for the best two-card
// combinations: every unordered pair is allocated and scored, then
// ranked by combined reward.
package pairing

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"

	"github.com/jwpang/cardwise/internal/domain/allocate"
	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// Pair is one scored card combination.
type Pair struct {
	allocate.Allocation
}

// Searcher fans pair allocations out over a bounded worker set.
type Searcher struct {
	alloc       *allocate.Allocator
	parallelism int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithParallelism bounds the number of concurrent pair allocations.
func WithParallelism(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewSearcher builds a Searcher over the given allocator.
func NewSearcher(alloc *allocate.Allocator, opts ...Option) *Searcher {
	s := &Searcher{
		alloc:       alloc,
		parallelism: runtime.NumCPU(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search allocates the vector across every unordered card pair in the
// catalog and returns all n(n-1)/2 combinations ranked by combined
// reward, best first. A failing pair fails the whole search: pair
// errors mean broken reference data, not transient conditions.
func (s *Searcher) Search(ctx context.Context, cat *catalog.Catalog, vec spend.Vector, milesRate float64) ([]Pair, error) {
	type job struct {
		idx  int
		a, b catalog.Card
	}

	n := len(cat.Cards)
	total := n * (n - 1) / 2
	jobs := make(chan job)
	pairs := make([]Pair, total)
	errs := make([]error, total)

	workers := s.parallelism
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				result, err := s.alloc.Split(ctx, j.a, j.b, vec, milesRate)
				if err != nil {
					errs[j.idx] = err
					continue
				}
				pairs[j.idx] = Pair{Allocation: result}
			}
		}()
	}

	idx := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			jobs <- job{idx: idx, a: cat.Cards[i], b: cat.Cards[j]}
			idx++
		}
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rank(pairs)
	return pairs, nil
}

// rank sorts pairs by combined reward descending, breaking ties on the
// card names so identical inputs always come back in the same order.
func rank(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Combined != pairs[j].Combined {
			return pairs[i].Combined > pairs[j].Combined
		}
		ni := pairs[i].ResultA.CardName + "/" + pairs[i].ResultB.CardName
		nj := pairs[j].ResultA.CardName + "/" + pairs[j].ResultB.CardName
		return ni < nj
	})
}

// Top returns the best k pairs of a ranked result, or everything when
// fewer exist.
func Top(pairs []Pair, k int) []Pair {
	if k <= 0 || k >= len(pairs) {
		return pairs
	}
	return pairs[:k]
}
