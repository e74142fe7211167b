package gibbs

import (
	"container/heap"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// SmoothedModelCache holds P(w|t) vectors of the most frequent words
// of a model.  Its size is bounded by a memory budget, so it might not
// include all words; callers fall back to Model.ProbWordGivenTopic on
// a miss.  It is read-only after Compute.
type SmoothedModelCache struct {
	numTopics int
	capacity  int
	dists     map[int32][]float64
}

func NewSmoothedModelCache(model *Model, budgetMB int) *SmoothedModelCache {
	c := &SmoothedModelCache{}
	c.Compute(model, budgetMB)
	return c
}

// Capacity returns the number of word vectors that fit the budget of
// the last Compute.
func (c *SmoothedModelCache) Capacity() int {
	return c.capacity
}

func (c *SmoothedModelCache) Len() int {
	return len(c.dists)
}

// WordTopicDist returns the cached P(word|t) vector, if any.  The
// returned slice must not be modified.
func (c *SmoothedModelCache) WordTopicDist(word int32) ([]float64, bool) {
	d, ok := c.dists[word]
	return d, ok
}

// Compute rebuilds the cache.  At most budgetMB*2^20/(8*NumTopics)
// vectors are stored, chosen by descending total count of the word.
func (c *SmoothedModelCache) Compute(model *Model, budgetMB int) {
	c.numTopics = model.NumTopics()
	c.capacity = budgetMB * 1024 * 1024 / (8 * c.numTopics)
	if c.capacity < 0 {
		c.capacity = 0
	}
	c.dists = make(map[int32][]float64)

	if c.capacity >= model.NumWords() {
		model.WordStats.ForEach(func(word int32, _ *hist.OrderedSparse) error {
			c.dists[word] = model.ProbWordGivenTopic(word, nil)
			return nil
		})
	} else if c.capacity > 0 {
		h := newMinHeap(c.capacity + 1)
		model.WordStats.ForEach(func(word int32, wh *hist.OrderedSparse) error {
			var freq int64
			for _, count := range wh.Counts {
				freq += count
			}
			heap.Push(h, wordFreq{word, freq})
			if h.Len() > c.capacity {
				heap.Pop(h)
			}
			return nil
		})
		for _, wf := range *h {
			c.dists[wf.word] = model.ProbWordGivenTopic(wf.word, nil)
		}
	}
	log.Infof("Cached P(w|t) of %d words out of %d, budget %d words.",
		len(c.dists), model.NumWords(), c.capacity)
}

// minHeap keeps the least frequent word on top.  Among equal
// frequencies the word with the larger id goes first.
type minHeap []wordFreq
type wordFreq struct {
	word int32
	freq int64
}

func newMinHeap(size int) *minHeap {
	h := make(minHeap, 0, size)
	return &h
}

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	return h[i].freq < h[j].freq ||
		(h[i].freq == h[j].freq && h[i].word > h[j].word)
}
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(wordFreq)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
