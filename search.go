package sigann

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/sigann/distance"
	"github.com/hupe1980/sigann/internal/filter"
	"github.com/hupe1980/sigann/internal/searcher"
	"github.com/hupe1980/sigann/internal/spatial"
	"github.com/hupe1980/sigann/model"
)

// Method selects how a query is answered.
type Method int

const (
	// MethodGraph seeds from the median tree and expands through the graph.
	MethodGraph Method = iota
	// MethodTree runs branch-and-bound over the hyperplane tree.
	MethodTree
	// MethodExhaustive scores every eligible record.
	MethodExhaustive
)

func (m Method) String() string {
	switch m {
	case MethodGraph:
		return "graph"
	case MethodTree:
		return "tree"
	case MethodExhaustive:
		return "exhaustive"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMethod parses the textual form of a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graph":
		return MethodGraph, nil
	case "tree", "hyperplane":
		return MethodTree, nil
	case "exhaustive", "brute-force", "bruteforce":
		return MethodExhaustive, nil
	default:
		return 0, fmt.Errorf("unknown search method %q", s)
	}
}

// Search answers q with method and returns up to K candidates ordered by
// (distance, id) ascending.
func (e *Engine) Search(ctx context.Context, q *model.Query, method Method) ([]model.Candidate, error) {
	start := time.Now()

	s := searcher.Get(e.opts.k)
	defer searcher.Put(s)

	err := e.search(ctx, q, method, s)

	var results []model.Candidate
	if err == nil {
		results = s.Board.Results()
	}

	e.opts.logger.LogSearch(ctx, method, e.opts.k, len(results), err)
	e.opts.metricsCollector.RecordSearch(method, s.Evaluated, time.Since(start), err)

	return results, err
}

// search fills s.Board. It performs no logging so evaluation can batch it.
func (e *Engine) search(ctx context.Context, q *model.Query, method Method, s *searcher.Searcher) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(q.Vector) != e.db.Dimension {
		return &ErrDimensionMismatch{Expected: e.db.Dimension, Actual: len(q.Vector)}
	}
	if !q.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQueryKind, uint32(q.Kind))
	}

	switch method {
	case MethodGraph:
		e.searchGraph(q, s)
	case MethodTree:
		e.searchTree(q, s)
	case MethodExhaustive:
		e.exhaustive(q, s)
	default:
		return &ErrInvalidOption{Name: "method", Value: method}
	}
	return nil
}

// searchGraph pushes the median tree seed, then every neighbor reached
// within the configured number of hops. Hop h scores the neighbors of every
// record first reached at hop h-1.
func (e *Engine) searchGraph(q *model.Query, s *searcher.Searcher) {
	mode := e.opts.filterMode
	filtered := mode.Active(q)

	seed := e.median.Nearest(q, mode)
	s.Evaluated += seed.Evaluated
	if !seed.Found {
		return
	}

	s.Visited.EnsureCapacity(e.db.Len())
	s.Visited.Visit(seed.Candidate.ID)
	if seed.Eligible {
		s.Board.Pushs(seed.Candidate.ID, seed.Candidate.Score)
	}

	s.Frontier = append(s.Frontier[:0], seed.Candidate.ID)
	for hop := 0; hop < e.opts.hops && len(s.Frontier) > 0; hop++ {
		s.Next = s.Next[:0]
		for _, id := range s.Frontier {
			for _, link := range e.graph.Links(id) {
				if !s.Visited.Visit(link.ID) {
					continue
				}
				s.Next = append(s.Next, link.ID)

				if filtered && !filter.Eligible(q, &e.db.Records[link.ID]) {
					continue
				}
				s.Evaluated++
				s.Board.Pushs(link.ID, distance.Euclidean(q.Vector, e.db.Vector(link.ID)))
			}
		}
		s.Frontier, s.Next = s.Next, s.Frontier
	}
}

func (e *Engine) searchTree(q *model.Query, s *searcher.Searcher) {
	s.Evaluated += e.hyper.Search(q, s.Board, spatial.SearchOptions{
		Budget: e.opts.budget,
		Filter: e.opts.filterMode,
	})
}

// exhaustive scores every record eligible for q. Filtered queries enumerate
// only their eligible ids from the filter index.
func (e *Engine) exhaustive(q *model.Query, s *searcher.Searcher) {
	push := func(id model.ID) {
		s.Evaluated++
		s.Board.Push(id, distance.Euclidean(q.Vector, e.db.Vector(id)))
	}

	if !e.opts.filterMode.Active(q) {
		for id := range e.db.Records {
			push(model.ID(id))
		}
		return
	}

	e.filters.Eligible(q).Iterate(func(id uint32) bool {
		push(model.ID(id))
		return true
	})
}
