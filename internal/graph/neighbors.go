package graph

import (
	"fmt"
	"slices"

	"github.com/hupe1980/sigann/model"
)

// Link is one edge endpoint: the neighbor id and the pair's distance.
type Link = model.Candidate

// Neighbors is a bounded list of links sorted by (score, id) ascending,
// unique by id.
type Neighbors struct {
	links []Link
	cap   int
}

// NewNeighbors creates an empty list holding at most capacity links.
func NewNeighbors(capacity int) Neighbors {
	return Neighbors{cap: capacity}
}

// Len returns the number of links.
func (n *Neighbors) Len() int { return len(n.links) }

// Cap returns the capacity.
func (n *Neighbors) Cap() int { return n.cap }

// Full reports whether the list holds capacity links.
func (n *Neighbors) Full() bool { return len(n.links) >= n.cap }

// Links returns the links in ascending order. The slice must not be modified.
func (n *Neighbors) Links() []Link { return n.links }

// Has reports whether a link to id exists.
func (n *Neighbors) Has(id model.ID) bool {
	_, ok := n.Lookup(id)
	return ok
}

// Lookup returns the link to id, if any.
func (n *Neighbors) Lookup(id model.ID) (Link, bool) {
	for _, l := range n.links {
		if l.ID == id {
			return l, true
		}
	}
	return Link{}, false
}

// Get returns the link to id. The caller must have checked Has; a missing id
// is a programming error and panics.
func (n *Neighbors) Get(id model.ID) Link {
	l, ok := n.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("graph: neighbor %d not found", id))
	}
	return l
}

// Push inserts a link to id unless one exists. When the list is full the
// worst link is evicted if the new one is strictly better. Reports whether
// the link was kept.
func (n *Neighbors) Push(id model.ID, score float32) bool {
	if n.cap <= 0 || n.Has(id) {
		return false
	}

	l := Link{ID: id, Score: score}
	if n.Full() {
		if !l.Less(n.links[len(n.links)-1]) {
			return false
		}
		n.links = n.links[:len(n.links)-1]
	}

	i, _ := slices.BinarySearchFunc(n.links, l, compareLinks)
	n.links = slices.Insert(n.links, i, l)
	return true
}

// Remove deletes the link to id. Reports whether it existed.
func (n *Neighbors) Remove(id model.ID) bool {
	for i, l := range n.links {
		if l.ID == id {
			n.links = slices.Delete(n.links, i, i+1)
			return true
		}
	}
	return false
}

func compareLinks(a, b Link) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
