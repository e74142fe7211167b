package gibbs

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// Interpreter infers the topic distribution of a document given as a
// sequence of words.  Words not in both the vocabulary and the model
// are ignored; a document without known words gets an empty result.
// Implementations are safe for concurrent use.
type Interpreter interface {
	Interpret(words []string) SparseDist
}

type Prob struct {
	Topic int32
	Prob  float64
}

// SparseDist is a topic distribution that lists only topics with
// non-zero probability, usually in descending order of Prob.
type SparseDist []Prob

func (a SparseDist) Len() int           { return len(a) }
func (a SparseDist) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SparseDist) Less(i, j int) bool { return a[i].Prob > a[j].Prob }

// Sum returns the total probability.
func (a SparseDist) Sum() float64 {
	s := 0.0
	for _, p := range a {
		s += p.Prob
	}
	return s
}

// sortByTopicThenProb sorts a by descending Prob.  Equal probabilities
// are ordered by ascending topic.
func (a SparseDist) sortByTopicThenProb() {
	sort.Slice(a, func(i, j int) bool { return a[i].Topic < a[j].Topic })
	sort.Stable(a)
}

// newRand returns a random number generator seeded by the content of
// words, so that interpreting the same document always gives the same
// result.
func newRand(words []string) *rand.Rand {
	h := fnv.New64()
	h.Write([]byte(strings.Join(words, "\t")))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// strategy is one pass of an inference algorithm over a freshly initialized
// document.
type strategy interface {
	base() *inferenceBase
	run(doc *Document, rng *rand.Rand, memo *distMemo) SparseDist
}

// interpretOnce parses words and runs r once.
func interpretOnce(r strategy, words []string) SparseDist {
	b := r.base()
	rng := newRand(words)
	doc := ParseFromTokens(words, b.vocab, b.model, rng)
	if doc.Len() == 0 {
		return SparseDist{}
	}
	d := r.run(doc, rng, b.newDistMemo())
	d.sortByTopicThenProb()
	return d
}

// inferenceBase holds what all strategies share: the model, the
// vocabulary and the cache of P(w|t) vectors.  It is read-only after
// construction.
type inferenceBase struct {
	model *Model
	vocab *Vocabulary
	cache *SmoothedModelCache
}

func newInferenceBase(model *Model, vocab *Vocabulary, cacheMB int) inferenceBase {
	return inferenceBase{
		model: model,
		vocab: vocab,
		cache: NewSmoothedModelCache(model, cacheMB)}
}

// Cache returns the P(w|t) vectors shared by inference calls.
func (b *inferenceBase) Cache() *SmoothedModelCache {
	return b.cache
}

// forEachWordDist calls p with P(w|t) of every word in the model.
func (b *inferenceBase) forEachWordDist(p func(word int32, dist []float64)) {
	var buf []float64
	b.model.WordStats.ForEach(func(word int32, _ *hist.OrderedSparse) error {
		if dist, ok := b.cache.WordTopicDist(word); ok {
			p(word, dist)
		} else {
			buf = b.model.ProbWordGivenTopic(word, buf)
			p(word, buf)
		}
		return nil
	})
}

func (b *inferenceBase) newDistMemo() *distMemo {
	return &distMemo{
		model: b.model,
		cache: b.cache,
		memo:  make(map[int32][]float64)}
}

// distMemo returns P(w|t) vectors from the cache, and computes and
// remembers missing ones.  It lives as long as one Interpret call.
type distMemo struct {
	model *Model
	cache *SmoothedModelCache
	memo  map[int32][]float64
}

func (m *distMemo) get(word int32) []float64 {
	if dist, ok := m.cache.WordTopicDist(word); ok {
		return dist
	}
	if dist, ok := m.memo[word]; ok {
		return dist
	}
	dist := m.model.ProbWordGivenTopic(word, nil)
	m.memo[word] = dist
	return dist
}
