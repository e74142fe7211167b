package gibbs

import (
	"math"
	"reflect"
	"testing"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
	"github.com/stretchr/testify/assert"
)

func createTestingDocument() *Document {
	d := NewDocument(testingK)
	d.Append(0, 1)
	d.Append(1, 1)
	return d
}

func TestOptimizerCollectDocumentStatistics(t *testing.T) {
	d := createTestingDocument()
	o := NewOptimizer(testingK)
	o.CollectDocumentStatistics(d)
	o.CollectDocumentStatistics(d)

	testingOptimizer := &Optimizer{
		docLenHist: hist.Sparse{2: 2},
		topicDocHists: []hist.Sparse{
			{},
			{2: 2}}}
	if !reflect.DeepEqual(o, testingOptimizer) {
		t.Errorf("Expecting o = %v, Got %v", *testingOptimizer, *o)
	}

	o.Reset()
	if o.docLenHist.Len() != 0 || o.topicDocHists[1].Len() != 0 {
		t.Errorf("Expecting empty statistics after Reset, got %v", *o)
	}
	assert.Panics(t, func() { NewOptimizer(3).CollectDocumentStatistics(d) })
}

func TestApproximateHist(t *testing.T) {
	assert.Nil(t, approximateHist(hist.Sparse{}))
	assert.Equal(t, []int32{0, 0, 3, 0, 1}, approximateHist(hist.Sparse{2: 3, 4: 1}))
	assert.Equal(t, []int32{math.MaxInt32}, approximateHist(hist.Sparse{0: 1 << 40}))
}

func TestOptimizerOptimize(t *testing.T) {
	m := CreateTestingModel()
	o := NewOptimizer(testingK)
	d1 := createTestingDocument()
	d2 := NewDocument(testingK)
	d2.Append(3, 0)
	d2.Append(4, 1)
	d2.Append(5, 1)
	for _, d := range []*Document{d1, d1, d2} {
		o.CollectDocumentStatistics(d)
	}

	want := m.Hyperparams.Clone()
	want.OptimTopicPrior([]int32{0, 0, 2, 1}, [][]int32{{0, 1}, {0, 0, 3}},
		testingShape, testingScale, testingOptimIter)

	o.OptimizeTopicPriors(m, testingShape, testingScale, testingOptimIter)
	assert.Equal(t, want.TopicPrior, m.TopicPrior())
	assert.Equal(t, want.TopicPriorSum, m.TopicPriorSum())
	if m.TopicPrior()[1] <= m.TopicPrior()[0] {
		t.Errorf("Expecting a larger prior of the more popular topic, got %v",
			m.TopicPrior())
	}

	o.OptimizeWordPrior(m, testingOptimIter)
	assert.Greater(t, m.WordPrior(), 0.0)
	assert.InDelta(t, m.WordPrior()*testingV, m.WordPriorSum(), 1e-12)
}
