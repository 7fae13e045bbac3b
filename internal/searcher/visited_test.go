package searcher

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sigann/model"
)

func TestVisitedSet_Basic(t *testing.T) {
	v := NewVisitedSet(64)
	ids := []model.ID{0, 1, 63, 64, 100, 1000}

	for _, id := range ids {
		assert.False(t, v.Visited(id))
	}
	for _, id := range ids {
		assert.True(t, v.Visit(id), "first visit of %d", id)
	}
	for _, id := range ids {
		assert.True(t, v.Visited(id))
	}

	assert.False(t, v.Visited(2))
	assert.False(t, v.Visit(0), "second visit reports already visited")
	assert.Equal(t, len(ids), v.Count())
}

func TestVisitedSet_Reset(t *testing.T) {
	v := NewVisitedSet(10)
	v.Visit(5)
	v.Visit(128)
	require.True(t, v.Visited(5) && v.Visited(128))

	v.Reset()
	assert.False(t, v.Visited(5))
	assert.False(t, v.Visited(128))
	assert.Zero(t, v.Count())
}

func TestVisitedSet_EnsureCapacity(t *testing.T) {
	v := NewVisitedSet(10)
	v.EnsureCapacity(1000)
	v.Visit(999)
	assert.True(t, v.Visited(999))
}

func TestVisitedSet_Fuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	v := NewVisitedSet(10)

	visited := make(map[model.ID]bool)
	for i := 0; i < 100; i++ {
		id := model.ID(rng.Intn(5000))
		v.Visit(id)
		visited[id] = true
	}
	for i := 0; i < 5000; i++ {
		id := model.ID(i)
		require.Equal(t, visited[id], v.Visited(id), "id %d", id)
	}

	v.Reset()
	for i := 0; i < 5000; i++ {
		require.False(t, v.Visited(model.ID(i)))
	}
}
