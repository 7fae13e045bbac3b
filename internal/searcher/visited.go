package searcher

import "github.com/hupe1980/sigann/model"

// VisitedSet tracks visited records using a bitset and a dirty list for fast reset.
type VisitedSet struct {
	bits  []uint64
	dirty []model.ID
}

// NewVisitedSet creates a visited set sized for capacity records.
func NewVisitedSet(capacity int) *VisitedSet {
	return &VisitedSet{
		bits:  make([]uint64, (capacity+63)/64),
		dirty: make([]model.ID, 0, 128),
	}
}

// Visit marks id as visited and reports whether it was unvisited before.
func (v *VisitedSet) Visit(id model.ID) bool {
	word := int(id >> 6)
	mask := uint64(1) << (id & 63)

	if word >= len(v.bits) {
		v.grow(word + 1)
	}
	if v.bits[word]&mask != 0 {
		return false
	}
	v.bits[word] |= mask
	v.dirty = append(v.dirty, id)
	return true
}

// Visited returns true if id has been visited.
func (v *VisitedSet) Visited(id model.ID) bool {
	word := int(id >> 6)
	if word >= len(v.bits) {
		return false
	}
	return v.bits[word]&(uint64(1)<<(id&63)) != 0
}

// Count returns the number of visited ids.
func (v *VisitedSet) Count() int { return len(v.dirty) }

// Reset clears every id visited since the previous reset.
func (v *VisitedSet) Reset() {
	for _, id := range v.dirty {
		v.bits[id>>6] &^= uint64(1) << (id & 63)
	}
	v.dirty = v.dirty[:0]
}

// EnsureCapacity ensures the set can hold ids below capacity without growing.
func (v *VisitedSet) EnsureCapacity(capacity int) {
	if words := (capacity + 63) / 64; words > len(v.bits) {
		v.grow(words)
	}
}

func (v *VisitedSet) grow(words int) {
	bits := make([]uint64, max(len(v.bits)*2, words))
	copy(bits, v.bits)
	v.bits = bits
}
