package searcher

import (
	"sync"

	"github.com/hupe1980/sigann/model"
)

// Searcher is a reusable execution context for a single query.
// It owns all scratch memory required for search, eliminating heap allocations
// in the steady state.
//
// Searcher is NOT thread-safe. It is intended to be owned by a single goroutine
// during a search operation.
type Searcher struct {
	// Board collects the K best candidates of the query.
	Board *Scoreboard

	// Visited deduplicates ids during graph expansion.
	Visited *VisitedSet

	// Frontier and Next hold the ids of the current and next expansion hop.
	Frontier []model.ID
	Next     []model.ID

	// Evaluated counts distance computations performed for this query.
	Evaluated int
}

var searcherPool = sync.Pool{
	New: func() any {
		return NewSearcher(1024, 100)
	},
}

// NewSearcher creates a new searcher with the given initial capacities.
func NewSearcher(visitedCap, k int) *Searcher {
	return &Searcher{
		Board:    NewScoreboard(k),
		Visited:  NewVisitedSet(visitedCap),
		Frontier: make([]model.ID, 0, k),
		Next:     make([]model.ID, 0, k),
	}
}

// Get returns a reset Searcher from the pool with capacity k.
func Get(k int) *Searcher {
	s := searcherPool.Get().(*Searcher)
	s.Reset(k)
	return s
}

// Put returns a Searcher to the pool.
func Put(s *Searcher) {
	searcherPool.Put(s)
}

// Reset clears the searcher state for reuse.
func (s *Searcher) Reset(k int) {
	s.Board.Reset(k)
	s.Visited.Reset()
	s.Frontier = s.Frontier[:0]
	s.Next = s.Next[:0]
	s.Evaluated = 0
}
