package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	start, end  int
	left, right uint32
}

func TestNodes_AllocGet(t *testing.T) {
	n := New[testNode]()
	a := n.Alloc(testNode{start: 0, end: 10})
	b := n.Alloc(testNode{start: 10, end: 20})

	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(1), b)
	assert.Equal(t, 2, n.Len())
	assert.Equal(t, 10, n.Get(b).start)

	n.Ref(a).left = b
	assert.Equal(t, b, n.Get(a).left)
}

func TestNodes_GrowsAcrossSegments(t *testing.T) {
	n := New[int]()
	const total = segmentSize*3 + 17
	for i := 0; i < total; i++ {
		require.Equal(t, uint32(i), n.Alloc(i))
	}
	for i := 0; i < total; i++ {
		require.Equal(t, i, n.Get(uint32(i)))
	}
}

func TestNodes_ConcurrentAlloc(t *testing.T) {
	n := New[int]()
	const workers, per = 8, 2000

	var wg sync.WaitGroup
	slots := make([][]uint32, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				slots[w] = append(slots[w], n.Alloc(w*per+i))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, workers*per, n.Len())
	for w := range slots {
		for i, s := range slots[w] {
			require.Equal(t, w*per+i, n.Get(s))
		}
	}
}

func TestNodes_Release(t *testing.T) {
	n := New[int]()
	n.Alloc(1)
	n.Release()
	assert.Zero(t, n.Len())
	assert.Panics(t, func() { n.Get(0) })
}
