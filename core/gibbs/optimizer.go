package gibbs

import (
	"fmt"
	"math"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// Optimizer collects statistics of documents with topic assignments
// for optimizing the asymmetric Dirichlet topic prior, and drives the
// optimization of both priors of a model.
type Optimizer struct {
	// docLenHist is the histogram of document lengths.
	docLenHist hist.Sparse
	// topicDocHists[k] is a histogram of the number of documents, in
	// which topic k occurs n times.
	topicDocHists []hist.Sparse
}

func NewOptimizer(numTopics int) *Optimizer {
	o := &Optimizer{
		docLenHist:    hist.NewSparse(),
		topicDocHists: make([]hist.Sparse, numTopics),
	}
	for i := range o.topicDocHists {
		o.topicDocHists[i] = hist.NewSparse()
	}
	return o
}

func (o *Optimizer) CollectDocumentStatistics(d Assignments) {
	h := d.Histogram()
	if h.NumTopics() != len(o.topicDocHists) {
		panic(fmt.Sprintf("document has %d topics, optimizer has %d",
			h.NumTopics(), len(o.topicDocHists)))
	}
	var length int64
	for i := 0; i < h.Len(); i++ {
		o.topicDocHists[h.Topic(i)].Inc(int(h.Count(i)), 1)
		length += h.Count(i)
	}
	o.docLenHist.Inc(int(length), 1)
}

// Reset drops collected statistics.
func (o *Optimizer) Reset() {
	o.docLenHist.Clear()
	for _, h := range o.topicDocHists {
		h.Clear()
	}
}

// approximateHist creates a dense count vector from a sparse
// histogram.  The length of the vector is the maximum key plus one.
// Counts beyond int32 are clipped.
func approximateHist(s hist.Sparse) []int32 {
	if s.Len() == 0 {
		return nil
	}
	dense := s.Dense()
	d := make([]int32, len(dense))
	for k, v := range dense {
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
		d[k] = int32(v)
	}
	return d
}

// OptimizeTopicPriors optimizes asymmetic Dirichlet-Multinomial
// hyperparameters using Minka's fixed-point iteration and the
// digamma recurrence relation, as described in
//
//	Hanna M. Wallach. Structured Topic Models for Language. Ph.D.
//	thesis, University of Cambridge, 2008.
func (o *Optimizer) OptimizeTopicPriors(m *Model, shape, scale float64,
	iterations int) {
	topicDocCount := make([][]int32, len(o.topicDocHists))
	for k, h := range o.topicDocHists {
		topicDocCount[k] = approximateHist(h)
	}
	m.Hyperparams.OptimTopicPrior(approximateHist(o.docLenHist),
		topicDocCount, shape, scale, iterations)
}

// OptimizeWordPrior optimizes the symmetric word prior from the
// histograms of m itself.
func (o *Optimizer) OptimizeWordPrior(m *Model, iterations int) {
	m.OptimWordPrior(iterations)
}
