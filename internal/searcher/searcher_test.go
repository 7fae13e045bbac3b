package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearcher_Lifecycle(t *testing.T) {
	s := Get(10)
	s.Visited.Visit(1)
	s.Board.Push(100, 1.0)
	s.Frontier = append(s.Frontier, 1)
	s.Next = append(s.Next, 2)
	s.Evaluated = 50
	Put(s)

	s.Reset(5)
	assert.False(t, s.Visited.Visited(1))
	assert.True(t, s.Board.Empty())
	assert.Equal(t, 5, s.Board.Cap())
	assert.Empty(t, s.Frontier)
	assert.Empty(t, s.Next)
	assert.Zero(t, s.Evaluated)

	s2 := Get(3)
	assert.Equal(t, 3, s2.Board.Cap())
	assert.True(t, s2.Board.Empty())
	Put(s2)
}

func TestNewSearcher(t *testing.T) {
	s := NewSearcher(10, 20)
	require.NotNil(t, s)
	assert.Equal(t, 20, s.Board.Cap())
	assert.Equal(t, 20, cap(s.Frontier))
}
