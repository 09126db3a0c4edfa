package spsc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ctrlloop-go/errcode"
)

func TestFIFOOrder(t *testing.T) {
	p, c := New[int](16)
	for i := 0; i < 16; i++ {
		require.NoError(t, p.Enqueue(i))
	}
	for i := 0; i < 16; i++ {
		v, ok := c.Dequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := c.Dequeue()
	require.False(t, ok)
}

func TestFullIsExplicitAndLeavesContents(t *testing.T) {
	p, c := New[int](16)
	for i := 0; i < 16; i++ {
		require.NoError(t, p.Enqueue(i))
	}
	require.Equal(t, 0, p.Space())
	err := p.Enqueue(99)
	require.ErrorIs(t, err, errcode.QueueFull)
	require.Equal(t, 16, c.Len())

	head, ok := c.Peek()
	require.True(t, ok)
	require.Equal(t, 0, head)
	for i := 0; i < 16; i++ {
		v, _ := c.Dequeue()
		require.Equal(t, i, v)
	}
}

func TestSplitOnlyOnce(t *testing.T) {
	r := NewRing[string](4)
	p, c, err := r.Split()
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, c)

	p2, c2, err := r.Split()
	require.ErrorIs(t, err, errcode.AlreadySplit)
	require.Nil(t, p2)
	require.Nil(t, c2)
}

func TestCapacityMustBePowerOfTwo(t *testing.T) {
	require.Panics(t, func() { NewRing[int](12) })
	require.Panics(t, func() { NewRing[int](1) })
}

func TestWrapAcrossIndices(t *testing.T) {
	p, c := New[int](4)
	next := 0
	for round := 0; round < 100; round++ {
		require.NoError(t, p.Enqueue(round*2))
		require.NoError(t, p.Enqueue(round*2+1))
		for k := 0; k < 2; k++ {
			v, ok := c.Dequeue()
			require.True(t, ok)
			require.Equal(t, next, v)
			next++
		}
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const n = 20000
	p, c := New[int](16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if p.Enqueue(i) == nil {
				i++
			}
		}
	}()

	for want := 0; want < n; {
		if v, ok := c.Dequeue(); ok {
			require.Equal(t, want, v)
			want++
		}
	}
	wg.Wait()
}
