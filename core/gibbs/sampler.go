package gibbs

import (
	"fmt"
	"math/rand"
)

// SparseLDAGibbsSampler infers topics by Gibbs sampling, splitting the
// sampling mass of each word into a document-topic bucket and a
// smoothing-only bucket as described in *Efficient Methods for Topic
// Model Inference on Streaming Document Collections* by Limin Yao,
// David Mimno, and Andrew McCallum at KDD in 2009.  Only the sparse
// document-topic bucket is recomputed per word; the smoothing-only
// bucket size is computed once per word when the sampler is created.
type SparseLDAGibbsSampler struct {
	inferenceBase
	totalIterations  int
	burnInIterations int
	smoothingOnlySum map[int32]float64
}

// NewSparseLDAGibbsSampler panics unless 0 < burnIn < total.  cacheMB
// bounds the memory of cached P(w|t) vectors.
func NewSparseLDAGibbsSampler(model *Model, vocab *Vocabulary, cacheMB int,
	totalIterations, burnInIterations int) *SparseLDAGibbsSampler {
	if burnInIterations <= 0 || totalIterations <= burnInIterations {
		panic(fmt.Sprintf("need 0 < burnIn (%d) < total (%d)",
			burnInIterations, totalIterations))
	}
	s := &SparseLDAGibbsSampler{
		inferenceBase:    newInferenceBase(model, vocab, cacheMB),
		totalIterations:  totalIterations,
		burnInIterations: burnInIterations,
		smoothingOnlySum: make(map[int32]float64, model.NumWords()),
	}
	s.computeSmoothingOnlySums()
	return s
}

// computeSmoothingOnlySums computes sum_t topic_prior(t)*P(w|t) for
// every word in the model.
func (s *SparseLDAGibbsSampler) computeSmoothingOnlySums() {
	prior := s.model.TopicPrior()
	s.forEachWordDist(func(word int32, dist []float64) {
		var sum float64
		for t, p := range dist {
			sum += prior[t] * p
		}
		s.smoothingOnlySum[word] = sum
	})
}

// SmoothingOnlySum returns sum_t topic_prior(t)*P(word|t), or 0 if
// word is not in the model.
func (s *SparseLDAGibbsSampler) SmoothingOnlySum(word int32) float64 {
	return s.smoothingOnlySum[word]
}

func (s *SparseLDAGibbsSampler) Interpret(words []string) SparseDist {
	return interpretOnce(s, words)
}

// Sample parses words and samples their topics like Interpret, but
// returns the document with the assignments of the last iteration, e.g.
// for evaluation or hyperparameter optimization.  The document is empty
// if no word is in the model.
func (s *SparseLDAGibbsSampler) Sample(words []string) *Document {
	rng := newRand(words)
	doc := ParseFromTokens(words, s.vocab, s.model, rng)
	if doc.Len() > 0 {
		s.run(doc, rng, s.newDistMemo())
	}
	return doc
}

func (s *SparseLDAGibbsSampler) base() *inferenceBase {
	return &s.inferenceBase
}

func (s *SparseLDAGibbsSampler) run(doc *Document, rng *rand.Rand,
	memo *distMemo) SparseDist {
	accumulated := make([]int64, doc.NumTopics())
	bucket := make(SparseDist, 0, doc.NumTopics())

	for i := 1; i <= s.totalIterations; i++ {
		for it := doc.Iterator(); !it.Done(); it.Next() {
			word := it.Word()
			doc.DecrementTopicHistogram(int(it.Topic()), 1)
			newTopic := s.sampleTopic(doc, word, memo.get(word), bucket, rng)
			it.SetTopic(newTopic)
			doc.IncrementTopicHistogram(int(newTopic), 1)
		}

		if i > s.burnInIterations {
			h := doc.TopicHist()
			for j := 0; j < h.Len(); j++ {
				accumulated[h.Topics[j]] += h.Counts[j]
			}
		}
	}
	return s.unify(accumulated)
}

// sampleTopic draws a new topic for word, whose cell has already been
// subtracted from the document histogram.  bucket is scratch space.
func (s *SparseLDAGibbsSampler) sampleTopic(doc *Document, word int32,
	smoothingOnlyBucket []float64, bucket SparseDist, rng *rand.Rand) int32 {
	bucket, docTopicSum := documentTopicBucket(doc, smoothingOnlyBucket, bucket)
	sample := rng.Float64() * (docTopicSum + s.smoothingOnlySum[word])

	if sample < docTopicSum {
		for _, p := range bucket {
			sample -= p.Prob
			if sample <= 0 {
				return p.Topic
			}
		}
		// Rounding left a tiny positive residual.
		return bucket[len(bucket)-1].Topic
	}

	sample -= docTopicSum
	prior := s.model.TopicPrior()
	last := len(smoothingOnlyBucket) - 1
	i := 0
	sample -= smoothingOnlyBucket[i] * prior[i]
	for sample > 0 && i < last {
		i++
		sample -= smoothingOnlyBucket[i] * prior[i]
	}
	return int32(i)
}

// documentTopicBucket fills bucket with count(t)*P(w|t) for topics in
// the document, in the order of the document histogram.
func documentTopicBucket(doc *Document, smoothingOnlyBucket []float64,
	bucket SparseDist) (SparseDist, float64) {
	bucket = bucket[:0]
	var sum float64
	h := doc.TopicHist()
	for i := 0; i < h.Len(); i++ {
		t := h.Topics[i]
		p := float64(h.Counts[i]) * smoothingOnlyBucket[t]
		bucket = append(bucket, Prob{t, p})
		sum += p
	}
	return bucket, sum
}

// unify converts accumulated counts into a distribution smoothed by
// the topic prior.  Only topics that were ever sampled after burn-in
// are included.
func (s *SparseLDAGibbsSampler) unify(accumulated []int64) SparseDist {
	samples := float64(s.totalIterations - s.burnInIterations)
	prior := s.model.TopicPrior()
	sum := s.model.TopicPriorSum()
	for _, c := range accumulated {
		sum += float64(c) / samples
	}

	dist := SparseDist{}
	if sum <= 0 {
		return dist
	}
	for t, c := range accumulated {
		if c > 0 {
			dist = append(dist, Prob{int32(t), (float64(c)/samples + prior[t]) / sum})
		}
	}
	return dist
}
