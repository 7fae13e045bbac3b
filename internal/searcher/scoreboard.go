package searcher

import (
	"slices"

	"github.com/hupe1980/sigann/model"
)

// Scoreboard keeps at most k candidates, unique by id, sorted by
// (score ascending, id ascending). Index 0 is the nearest candidate and the
// last index is the furthest one.
//
// k is small and fixed, so insertions shift in place (insertion sort) rather
// than maintaining a heap: reading results back in order is free.
type Scoreboard struct {
	board []model.Candidate
	k     int
}

// NewScoreboard creates a scoreboard with capacity k.
func NewScoreboard(k int) *Scoreboard {
	return &Scoreboard{
		board: make([]model.Candidate, 0, max(k, 0)),
		k:     k,
	}
}

// Reset clears the scoreboard and sets a new capacity.
func (s *Scoreboard) Reset(k int) {
	if cap(s.board) < k {
		s.board = make([]model.Candidate, 0, k)
	}
	s.board = s.board[:0]
	s.k = k
}

// Clear removes every candidate.
func (s *Scoreboard) Clear() { s.board = s.board[:0] }

// Cap returns the capacity k.
func (s *Scoreboard) Cap() int { return s.k }

// Len returns the number of kept candidates.
func (s *Scoreboard) Len() int { return len(s.board) }

// Empty reports whether no candidate is kept.
func (s *Scoreboard) Empty() bool { return len(s.board) == 0 }

// Full reports whether k candidates are kept.
func (s *Scoreboard) Full() bool { return len(s.board) >= s.k }

// Furthest returns the worst kept candidate.
// Panics if the scoreboard is empty - caller should check Empty().
func (s *Scoreboard) Furthest() model.Candidate { return s.board[len(s.board)-1] }

// Nearest returns the best kept candidate.
// Panics if the scoreboard is empty - caller should check Empty().
func (s *Scoreboard) Nearest() model.Candidate { return s.board[0] }

// Top is an alias of Furthest.
func (s *Scoreboard) Top() model.Candidate { return s.Furthest() }

// Bottom is an alias of Nearest.
func (s *Scoreboard) Bottom() model.Candidate { return s.Nearest() }

// Pop removes the worst candidate. It is a no-op on an empty scoreboard.
func (s *Scoreboard) Pop() {
	if len(s.board) > 0 {
		s.board = s.board[:len(s.board)-1]
	}
}

// Has reports whether id is kept.
func (s *Scoreboard) Has(id model.ID) bool {
	for i := range s.board {
		if s.board[i].ID == id {
			return true
		}
	}
	return false
}

// Add inserts unconditionally. The caller guarantees the scoreboard is not
// full and that id is not already kept.
func (s *Scoreboard) Add(id model.ID, score float32) {
	c := model.Candidate{ID: id, Score: score}
	s.board = append(s.board, c)
	i := len(s.board) - 1
	for i > 0 && c.Less(s.board[i-1]) {
		s.board[i] = s.board[i-1]
		i--
	}
	s.board[i] = c
}

// Push inserts the candidate if there is room, otherwise replaces the worst
// candidate when the new one is strictly better. Reports whether it was kept.
func (s *Scoreboard) Push(id model.ID, score float32) bool {
	if s.k <= 0 {
		return false
	}
	if s.Full() {
		if !(model.Candidate{ID: id, Score: score}).Less(s.Furthest()) {
			return false
		}
		s.Pop()
	}
	s.Add(id, score)
	return true
}

// Pushs is Push guarded by Has: an id that is already kept is ignored and its
// first admitted score stays in place.
func (s *Scoreboard) Pushs(id model.ID, score float32) bool {
	if s.Has(id) {
		return false
	}
	return s.Push(id, score)
}

// Pushf evicts the worst candidate when full and adds unconditionally.
// The caller has already checked that score beats Furthest().
func (s *Scoreboard) Pushf(id model.ID, score float32) {
	if s.Full() {
		s.Pop()
	}
	s.Add(id, score)
}

// Consider pushes c.
func (s *Scoreboard) Consider(c model.Candidate) bool {
	return s.Push(c.ID, c.Score)
}

// Update merges every candidate of other into s.
func (s *Scoreboard) Update(other *Scoreboard) {
	for _, c := range other.board {
		s.Pushs(c.ID, c.Score)
	}
}

// View returns the kept candidates in ascending order without copying.
// The slice is only valid until the next mutation.
func (s *Scoreboard) View() []model.Candidate { return s.board }

// Results returns a copy of the kept candidates in ascending order.
func (s *Scoreboard) Results() []model.Candidate { return slices.Clone(s.board) }
