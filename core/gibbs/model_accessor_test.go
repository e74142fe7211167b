package gibbs

import (
	"container/heap"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeap(t *testing.T) {
	const K = 10
	const N = 100
	a := rand.Perm(N)
	h := newMinHeap(K + 1)
	for _, i := range a {
		heap.Push(h, wordFreq{int32(i), int64(i)})
		if h.Len() > K {
			heap.Pop(h)
		}
	}

	for i := N - K; h.Len() > 0; i++ {
		if p := heap.Pop(h); p.(wordFreq).freq != int64(i) {
			t.Errorf("Expecting %v, got %v", wordFreq{int32(i), int64(i)}, p)
		}
	}
}

func TestMinHeapEvictsLargerWordOnTie(t *testing.T) {
	h := newMinHeap(3)
	for _, wf := range []wordFreq{{2, 5}, {7, 5}, {1, 5}} {
		heap.Push(h, wf)
		if h.Len() > 2 {
			heap.Pop(h)
		}
	}
	assert.ElementsMatch(t, []wordFreq{{1, 5}, {2, 5}}, []wordFreq(*h))
}

func TestSmoothedModelCacheAllWords(t *testing.T) {
	m := CreateTestingModel()
	c := NewSmoothedModelCache(m, 1)
	assert.Equal(t, 1024*1024/(8*testingK), c.Capacity())
	require.Equal(t, testingV, c.Len())

	for w := int32(0); w < testingV; w++ {
		d, ok := c.WordTopicDist(w)
		require.True(t, ok)
		assert.Equal(t, m.ProbWordGivenTopic(w, nil), d)
	}
	_, ok := c.WordTopicDist(testingV)
	assert.False(t, ok)
}

func TestSmoothedModelCacheZeroBudget(t *testing.T) {
	c := NewSmoothedModelCache(CreateTestingModel(), 0)
	assert.Equal(t, 0, c.Capacity())
	assert.Equal(t, 0, c.Len())
	_, ok := c.WordTopicDist(0)
	assert.False(t, ok)
}

func TestSmoothedModelCacheMostFrequentWords(t *testing.T) {
	// With 2^17 topics, each vector takes 1MB.
	const numTopics = 1 << 17
	m := NewModel(numTopics)
	m.Hyperparams.Set(testingAlpha, numTopics, testingBeta, testingV)
	for w, freq := range []int{5, 9, 7, 9, 5, 1} {
		m.WordStats.Add(int32(w), w, freq)
		m.GlobalStats.Hist.Inc(w, freq)
	}

	for budget, want := range map[int][]int32{
		0: nil,
		1: {1},
		3: {1, 2, 3},
		4: {0, 1, 2, 3},
		6: {0, 1, 2, 3, 4, 5},
		9: {0, 1, 2, 3, 4, 5},
	} {
		c := NewSmoothedModelCache(m, budget)
		assert.Equal(t, budget, c.Capacity())
		var cached []int32
		for w := int32(0); w < testingV; w++ {
			if d, ok := c.WordTopicDist(w); ok {
				cached = append(cached, w)
				assert.Len(t, d, numTopics)
			}
		}
		assert.Equal(t, want, cached, "budget %dMB", budget)
		assert.LessOrEqual(t, c.Len(), c.Capacity())
	}
}
