// Package dimindex builds the Dimension Index Page: one id permutation per
// vector dimension, each sorted by the rotated key order
//
//	(v[key], v[key+1], ..., v[D-1], v[0], ..., v[key-1], id)
//
// Every ordering groups records that agree on a different leading coordinate
// into contiguous runs, a cheap proxy for nearness used to seed graph
// construction. The page is scaffolding: it is released once the graph is built.
package dimindex

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sigann/model"
)

// Page holds one permutation of [0, N) per dimension.
type Page struct {
	rows [][]model.ID
}

// Build sorts one permutation per dimension of db. Dimensions are sorted
// concurrently on at most workers goroutines (GOMAXPROCS if workers <= 0).
func Build(ctx context.Context, db *model.Database, workers int) (*Page, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	n := db.Len()
	dim := db.Dimension
	rows := make([][]model.ID, dim)
	backing := make([]model.ID, n*dim)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for key := 0; key < dim; key++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := backing[key*n : (key+1)*n : (key+1)*n]
			for i := range row {
				row[i] = model.ID(i)
			}
			slices.SortFunc(row, func(a, b model.ID) int {
				return Compare(db, key, a, b)
			})
			rows[key] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Page{rows: rows}, nil
}

// Compare orders records a and b by the rotated key order starting at key.
func Compare(db *model.Database, key int, a, b model.ID) int {
	va, vb := db.Vector(a), db.Vector(b)
	dim := len(va)
	for i := 0; i < dim; i++ {
		j := key + i
		if j >= dim {
			j -= dim
		}
		switch {
		case va[j] < vb[j]:
			return -1
		case va[j] > vb[j]:
			return 1
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Dimensions returns the number of permutations.
func (p *Page) Dimensions() int { return len(p.rows) }

// Row returns the permutation for dimension key.
func (p *Page) Row(key int) []model.ID { return p.rows[key] }

// Bytes returns the approximate memory held by a page for n records of dim dimensions.
func Bytes(n, dim int) int64 {
	return int64(n) * int64(dim) * 4
}

// Release drops every permutation.
func (p *Page) Release() {
	p.rows = nil
}
