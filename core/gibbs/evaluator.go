package gibbs

import (
	"math"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// Evaluator computes log-likelihood and perplexity of documents given
// a model.
//
// It caches pre-computable factors at construction.  The likelihood
// of word w in document m is
/*
                                n_mk + a_k
   L(m,w)  = \sum_k \phi_kw  ------------------
                              L_m + \sum_k a_k

                     1          [                            ]
           = -----------------  [ o(w) + \sum_k \phi_kw n_mk ]
             L_m + \sum_k a_k   [                            ]
*/
// where o(w) = \sum_k \phi_kw a_k is cached per word, \sum_k \phi_kw
// n_mk takes O(#non-zeros of document m), and \sum_k a_k is
// Model.TopicPriorSum().  o(w) itself is computed from a scalar s
// shared by all words plus a sparse sum over the topics of w:
/*
                 a_k b                            a_k n_kw
   s = \sum_k ------------ ,   o(w) = s + \sum_k ----------
                bV + N_k                          bV + N_k
*/
type Evaluator struct {
	model         *Model
	cache         *SmoothedModelCache
	smoothingOnly map[int32]float64
}

// NewEvaluator uses cache for P(w|t) vectors.  If cache is nil, an
// empty one is used.
func NewEvaluator(model *Model, cache *SmoothedModelCache) *Evaluator {
	if cache == nil {
		cache = NewSmoothedModelCache(model, 0)
	}
	return &Evaluator{
		model:         model,
		cache:         cache,
		smoothingOnly: calculateSmoothingOnly(model),
	}
}

func calculateSmoothingOnly(m *Model) map[int32]float64 {
	prior := m.TopicPrior()
	var s float64
	for k := range prior {
		s += prior[k] * m.WordPrior() / m.denominator(k)
	}

	o := make(map[int32]float64, m.NumWords())
	m.WordStats.ForEach(func(word int32, h *hist.OrderedSparse) error {
		ow := s
		for i, k := range h.Topics {
			ow += prior[k] * float64(h.Counts[i]) / m.denominator(int(k))
		}
		o[word] = ow
		return nil
	})
	return o
}

// SmoothingOnly returns o(word) = sum_k topic_prior(k)*P(word|k).
func (e *Evaluator) SmoothingOnly(word int32) float64 {
	return e.smoothingOnly[word]
}

// Perplexity computes log-likelihood of a document.  It returns
// log-likelihood as well as the document length, which, when divided,
// get to the perplexity of the document, or when aggregated along
// documents then divided, get to the perplexity of corpus.
func (e *Evaluator) Perplexity(doc *Document) (float64, int) {
	if doc.Len() <= 0 {
		return 0.0, 0
	}

	logl := 0.0
	memo := &distMemo{model: e.model, cache: e.cache, memo: make(map[int32][]float64)}
	h := doc.TopicHist()
	norm := float64(doc.Length()) + e.model.TopicPriorSum()
	for it := doc.Iterator(); !it.Done(); it.Next() {
		dist := memo.get(it.Word())
		prob := 0.0
		for i, k := range h.Topics {
			prob += dist[k] * float64(h.Counts[i])
		}
		logl += math.Log((e.smoothingOnly[it.Word()] + prob) / norm)
	}
	return logl, doc.Len()
}
