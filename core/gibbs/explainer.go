package gibbs

import (
	"container/heap"
	"sort"
)

type ExplainerOptions struct {
	// Words kept per topic, with the largest P(w|t).
	MaxTopicWords int
	// Topics of the interpreted distribution that contribute words.
	TopicTopK int
	// Words returned by Explain.
	WordTopK int
}

func DefaultExplainerOptions() ExplainerOptions {
	return ExplainerOptions{MaxTopicWords: 20, TopicTopK: 10, WordTopK: 10}
}

type WordWeight struct {
	Word   string
	Weight float64
}

// Explainer describes a document by words: the weight of a word w is
// sum_t P(t|doc)*P(w|t) over the most probable topics of the document.
type Explainer struct {
	vocab       *Vocabulary
	interpreter Interpreter
	opts        ExplainerOptions
	topicWords  [][]WordProb
}

// NewExplainer precomputes, for every topic, the MaxTopicWords most
// probable words sorted by word id.  Non-positive options take their
// defaults.
func NewExplainer(model *Model, vocab *Vocabulary, interpreter Interpreter,
	opts ExplainerOptions) *Explainer {
	def := DefaultExplainerOptions()
	if opts.MaxTopicWords <= 0 {
		opts.MaxTopicWords = def.MaxTopicWords
	}
	if opts.TopicTopK <= 0 {
		opts.TopicTopK = def.TopicTopK
	}
	if opts.WordTopK <= 0 {
		opts.WordTopK = def.WordTopK
	}
	return &Explainer{
		vocab:       vocab,
		interpreter: interpreter,
		opts:        opts,
		topicWords:  model.TopicWordDists(opts.MaxTopicWords),
	}
}

func (x *Explainer) Options() ExplainerOptions {
	return x.opts
}

// Explain returns the top topics of words and the top words explaining
// them, both in descending order of weight.
func (x *Explainer) Explain(words []string) (SparseDist, []WordWeight) {
	topics := x.interpreter.Interpret(words)
	if len(topics) > x.opts.TopicTopK {
		topics = topics[:x.opts.TopicTopK]
	}
	return topics, x.TopicWords(topics)
}

// TopicWords merges the id-sorted word lists of topics, weighting each
// list by the topic probability.
func (x *Explainer) TopicWords(topics SparseDist) []WordWeight {
	h := make(streamHeap, 0, len(topics))
	for _, p := range topics {
		if ws := x.topicWords[p.Topic]; len(ws) > 0 {
			h = append(h, &wordStream{p.Prob, ws})
		}
	}
	heap.Init(&h)

	var merged []WordProb
	for h.Len() > 0 {
		s := h[0]
		w := s.words[0]
		if n := len(merged); n > 0 && merged[n-1].Word == w.Word {
			merged[n-1].Prob += s.weight * w.Prob
		} else {
			merged = append(merged, WordProb{w.Word, s.weight * w.Prob})
		}

		s.words = s.words[1:]
		if len(s.words) > 0 {
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Prob > merged[j].Prob })
	if len(merged) > x.opts.WordTopK {
		merged = merged[:x.opts.WordTopK]
	}
	ret := make([]WordWeight, len(merged))
	for i, w := range merged {
		ret[i] = WordWeight{x.vocab.TokenOrUnknown(w.Word), w.Prob}
	}
	return ret
}

// wordStream is the unmerged rest of the word list of a topic.
type wordStream struct {
	weight float64
	words  []WordProb
}

// streamHeap orders streams by their next word id.
type streamHeap []*wordStream

func (h streamHeap) Len() int            { return len(h) }
func (h streamHeap) Less(i, j int) bool  { return h[i].words[0].Word < h[j].words[0].Word }
func (h streamHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *streamHeap) Push(x interface{}) { *h = append(*h, x.(*wordStream)) }
func (h *streamHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
