package gibbs

import (
	"fmt"
	"math/rand"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// SparseLDAHillClimber is the deterministic counterpart of
// SparseLDAGibbsSampler: instead of sampling, every word takes the
// topic maximizing (count(t)+topic_prior(t))*P(w|t).  Randomness only
// comes into the initial topic assignment.
type SparseLDAHillClimber struct {
	inferenceBase
	totalIterations  int
	smoothingOnlyMax map[int32]Prob
}

// NewSparseLDAHillClimber panics unless totalIterations > 0.
func NewSparseLDAHillClimber(model *Model, vocab *Vocabulary, cacheMB int,
	totalIterations int) *SparseLDAHillClimber {
	if totalIterations <= 0 {
		panic(fmt.Sprintf("totalIterations (%d) <= 0", totalIterations))
	}
	c := &SparseLDAHillClimber{
		inferenceBase:    newInferenceBase(model, vocab, cacheMB),
		totalIterations:  totalIterations,
		smoothingOnlyMax: make(map[int32]Prob, model.NumWords()),
	}
	c.computeSmoothingOnlyMax()
	return c
}

// computeSmoothingOnlyMax finds argmax_t topic_prior(t)*P(w|t) of every
// word in the model.  The first topic wins ties.
func (c *SparseLDAHillClimber) computeSmoothingOnlyMax() {
	prior := c.model.TopicPrior()
	c.model.WordStats.ForEach(func(word int32, _ *hist.OrderedSparse) error {
		dist, ok := c.cache.WordTopicDist(word)
		if !ok {
			topic, mass := c.model.MaxSmoothingMass(word)
			c.smoothingOnlyMax[word] = Prob{topic, mass}
			return nil
		}
		best := Prob{-1, -1}
		for t, p := range dist {
			if m := prior[t] * p; m > best.Prob {
				best = Prob{int32(t), m}
			}
		}
		c.smoothingOnlyMax[word] = best
		return nil
	})
}

// SmoothingOnlyMax returns argmax_t topic_prior(t)*P(word|t) and the
// maximum.
func (c *SparseLDAHillClimber) SmoothingOnlyMax(word int32) (int32, float64) {
	m, ok := c.smoothingOnlyMax[word]
	if !ok {
		panic(fmt.Sprintf("word %d is not in the model", word))
	}
	return m.Topic, m.Prob
}

func (c *SparseLDAHillClimber) Interpret(words []string) SparseDist {
	return interpretOnce(c, words)
}

func (c *SparseLDAHillClimber) base() *inferenceBase {
	return &c.inferenceBase
}

func (c *SparseLDAHillClimber) run(doc *Document, _ *rand.Rand,
	memo *distMemo) SparseDist {
	for i := 0; i < c.totalIterations; i++ {
		for it := doc.Iterator(); !it.Done(); it.Next() {
			word := it.Word()
			doc.DecrementTopicHistogram(int(it.Topic()), 1)
			newTopic := c.climb(doc, word, memo.get(word))
			it.SetTopic(newTopic)
			doc.IncrementTopicHistogram(int(newTopic), 1)
		}
	}
	return c.unify(doc.TopicHist())
}

// climb returns the best topic for word.  The smoothing-only maximum is
// replaced only by a strictly greater document-topic candidate.
func (c *SparseLDAHillClimber) climb(doc *Document, word int32,
	wordDist []float64) int32 {
	best := c.smoothingOnlyMax[word]
	prior := c.model.TopicPrior()
	h := doc.TopicHist()
	for i := 0; i < h.Len(); i++ {
		t := h.Topics[i]
		if p := (float64(h.Counts[i]) + prior[t]) * wordDist[t]; p > best.Prob {
			best = Prob{t, p}
		}
	}
	return best.Topic
}

func (c *SparseLDAHillClimber) unify(h *hist.OrderedSparse) SparseDist {
	prior := c.model.TopicPrior()
	sum := c.model.TopicPriorSum()
	for _, n := range h.Counts {
		sum += float64(n)
	}

	dist := make(SparseDist, 0, h.Len())
	if sum <= 0 {
		return dist
	}
	for i, t := range h.Topics {
		dist = append(dist, Prob{t, (float64(h.Counts[i]) + prior[t]) / sum})
	}
	return dist
}
