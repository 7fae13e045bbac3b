package arena

import (
	"sync"
	"sync/atomic"
)

const (
	// segmentBits determines the size of each segment.
	// 12 bits = 4096 nodes per segment.
	segmentBits = 12
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

type segment[T any] struct {
	items [segmentSize]T
}

// Nodes is a segmented, append-only array of T addressed by uint32 slots.
type Nodes[T any] struct {
	segments atomic.Pointer[[]*segment[T]]
	next     atomic.Uint32
	mu       sync.Mutex // Protects growth
}

// New creates an empty arena.
func New[T any]() *Nodes[T] {
	n := &Nodes[T]{}
	segs := make([]*segment[T], 0)
	n.segments.Store(&segs)
	return n
}

// Alloc claims a fresh slot, stores v in it and returns its index.
func (n *Nodes[T]) Alloc(v T) uint32 {
	slot := n.next.Add(1) - 1
	n.slotRef(slot, true)[0] = v
	return slot
}

// Get returns the node stored at slot.
func (n *Nodes[T]) Get(slot uint32) T {
	return n.slotRef(slot, false)[0]
}

// Ref returns a pointer to the node at slot for in-place updates.
func (n *Nodes[T]) Ref(slot uint32) *T {
	return &n.slotRef(slot, false)[0]
}

// Len returns the number of allocated slots.
func (n *Nodes[T]) Len() int {
	return int(n.next.Load())
}

// Release drops every segment.
func (n *Nodes[T]) Release() {
	n.mu.Lock()
	defer n.mu.Unlock()
	segs := make([]*segment[T], 0)
	n.segments.Store(&segs)
	n.next.Store(0)
}

func (n *Nodes[T]) slotRef(slot uint32, grow bool) []T {
	segIdx := int(slot >> segmentBits)
	off := slot & segmentMask

	// Fast path: segment exists
	segs := *n.segments.Load()
	if segIdx < len(segs) && segs[segIdx] != nil {
		return segs[segIdx].items[off : off+1]
	}
	if !grow {
		panic("arena: slot out of range")
	}

	// Slow path: grow
	n.mu.Lock()
	defer n.mu.Unlock()

	segs = *n.segments.Load()
	if segIdx < len(segs) && segs[segIdx] != nil {
		return segs[segIdx].items[off : off+1]
	}

	grown := make([]*segment[T], max(segIdx+1, len(segs)))
	copy(grown, segs)
	for i := range grown {
		if grown[i] == nil {
			grown[i] = &segment[T]{}
		}
	}
	n.segments.Store(&grown)
	return grown[segIdx].items[off : off+1]
}
