package graph

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sigann/distance"
	"github.com/hupe1980/sigann/internal/dimindex"
	"github.com/hupe1980/sigann/model"
)

// ErrInvalidPartition is returned for a partition length below 2.
var ErrInvalidPartition = errors.New("graph: partition length must be at least 2")

// Options configures Build.
type Options struct {
	// Capacity bounds every neighbor list.
	Capacity int
	// PartitionLength is the window size over each permutation.
	PartitionLength int
	// Workers bounds the goroutines of one dimension pass. GOMAXPROCS if <= 0.
	Workers int
}

// Stats counts the work done by Build.
type Stats struct {
	// Computed is the number of pair distances evaluated. A pair sharing
	// a window is scored once while either endpoint still holds the link;
	// a pair that both endpoints evicted earlier is scored again. It is
	// therefore at least the number of distinct window pairs, and equal
	// to it when no list ever evicts.
	Computed int64
	// Copied is the number of links filled from a score already on record.
	Copied int64
	// Pruned is the number of one-sided links dropped by the prune pass.
	Pruned int64
}

// Graph holds one neighbor list per record id.
type Graph struct {
	lists    []Neighbors
	capacity int
}

// Build fills a graph over db from the orderings of page.
func Build(ctx context.Context, db *model.Database, page *dimindex.Page, opts Options) (*Graph, Stats, error) {
	if opts.PartitionLength < 2 {
		return nil, Stats{}, ErrInvalidPartition
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	g := &Graph{
		lists:    make([]Neighbors, db.Len()),
		capacity: opts.Capacity,
	}
	for i := range g.lists {
		g.lists[i] = NewNeighbors(opts.Capacity)
	}

	var computed, copied atomic.Int64

	for key := 0; key < page.Dimensions(); key++ {
		row := page.Row(key)

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(opts.Workers)

		for start := 0; start < len(row); start += opts.PartitionLength {
			window := row[start:min(start+opts.PartitionLength, len(row))]
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				c, k := g.fillWindow(db, window)
				computed.Add(c)
				copied.Add(k)
				return nil
			})
		}

		// Barrier: the next ordering regroups ids across windows.
		if err := eg.Wait(); err != nil {
			return nil, Stats{}, err
		}
	}

	copied.Add(g.symmetrize())

	pruned, err := g.prune(ctx, opts.Workers)
	if err != nil {
		return nil, Stats{}, err
	}

	return g, Stats{Computed: computed.Load(), Copied: copied.Load(), Pruned: pruned}, nil
}

// fillWindow scores every pair of window, reusing a score either list
// still holds. Only lists of ids in window are written.
func (g *Graph) fillWindow(db *model.Database, window []model.ID) (computed, copied int64) {
	for i := 0; i < len(window); i++ {
		a := window[i]
		la := &g.lists[a]
		for j := i + 1; j < len(window); j++ {
			b := window[j]
			lb := &g.lists[b]

			if link, ok := la.Lookup(b); ok {
				if !lb.Has(a) {
					lb.Push(a, link.Score)
					copied++
				}
				continue
			}
			if link, ok := lb.Lookup(a); ok {
				la.Push(b, link.Score)
				copied++
				continue
			}

			score := distance.Euclidean(db.Vector(a), db.Vector(b))
			computed++
			la.Push(b, score)
			lb.Push(a, score)
		}
	}
	return computed, copied
}

// symmetrize offers every one-sided link to its missing side. It runs serially:
// any list may be written while another is read.
func (g *Graph) symmetrize() int64 {
	var copied int64
	for a := range g.lists {
		for _, link := range g.lists[a].Links() {
			other := &g.lists[link.ID]
			if other.Has(model.ID(a)) {
				continue
			}
			if other.Push(model.ID(a), link.Score) {
				copied++
			}
		}
	}
	return copied
}

// prune drops links whose reverse link is missing. Keep sets are computed
// from a frozen graph before any list is rewritten.
func (g *Graph) prune(ctx context.Context, workers int) (int64, error) {
	kept := make([][]Link, len(g.lists))
	var pruned atomic.Int64

	const chunk = 1024

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for start := 0; start < len(g.lists); start += chunk {
		end := min(start+chunk, len(g.lists))
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for a := start; a < end; a++ {
				links := g.lists[a].Links()
				var keep []Link
				for i, link := range links {
					if g.lists[link.ID].Has(model.ID(a)) {
						if keep != nil {
							keep = append(keep, link)
						}
						continue
					}
					if keep == nil {
						keep = make([]Link, i, len(links))
						copy(keep, links[:i])
					}
					pruned.Add(1)
				}
				kept[a] = keep
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, err
	}

	for a, keep := range kept {
		if keep != nil {
			g.lists[a].links = keep
		}
	}
	return pruned.Load(), nil
}

// Len returns the number of lists.
func (g *Graph) Len() int { return len(g.lists) }

// Capacity returns the bound of every list.
func (g *Graph) Capacity() int { return g.capacity }

// Neighbors returns the list of id.
func (g *Graph) Neighbors(id model.ID) *Neighbors { return &g.lists[id] }

// Links returns the sorted links of id.
func (g *Graph) Links(id model.ID) []Link { return g.lists[id].links }

// Edges returns the number of directed links.
func (g *Graph) Edges() int {
	total := 0
	for i := range g.lists {
		total += g.lists[i].Len()
	}
	return total
}

// Bytes returns the memory held by a full graph of n lists with capacity links each.
func Bytes(n, capacity int) int64 {
	return int64(n) * int64(capacity) * 8
}

// Release drops every list.
func (g *Graph) Release() {
	g.lists = nil
}
