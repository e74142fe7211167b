package gibbs

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mathext"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestNewHyperparams(t *testing.T) {
	h := NewHyperparams(0.5, 4, 0.01, 100)
	assert.Equal(t, 4, h.NumTopics())
	assert.InDelta(t, 2.0, h.TopicPriorSum, 1e-12)
	assert.InDelta(t, 1.0, h.WordPriorSum, 1e-12)

	a := NewAsymmetricHyperparams([]float64{0.1, 0.2, 0.3}, 0.1, 10)
	assert.InDelta(t, 0.6, a.TopicPriorSum, 1e-12)
	assert.InDelta(t, 1.0, a.WordPriorSum, 1e-12)
}

func TestHyperparamsSaveAndLoad(t *testing.T) {
	h := NewAsymmetricHyperparams([]float64{0.1, 0.2}, 0.01, 6)
	var b bytes.Buffer
	require.NoError(t, h.Save(&b))

	r := &Hyperparams{}
	require.NoError(t, r.Load(&b))
	assert.Equal(t, h, r)

	assert.ErrorIs(t, r.Load(&bytes.Buffer{}), ErrEmptyHyperparams)
}

func TestHyperparamsUnmarshalUnpacked(t *testing.T) {
	var b []byte
	for _, a := range []float64{0.25, 0.5} {
		b = protowire.AppendTag(b, topicPriorField, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(a))
	}
	b = protowire.AppendTag(b, 15, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, vocabSizeField, protowire.VarintType)
	b = protowire.AppendVarint(b, 4)

	h := &Hyperparams{}
	require.NoError(t, h.Unmarshal(b))
	assert.Equal(t, []float64{0.25, 0.5}, h.TopicPrior)
	assert.Equal(t, 0.75, h.TopicPriorSum)
	assert.Equal(t, int32(4), h.VocabSize)
}

// digammaDiff returns sum_j count[j]*(digamma(x+j)-digamma(x)).
func digammaDiff(count []int32, x float64) float64 {
	s := 0.0
	for j := 1; j < len(count); j++ {
		s += float64(count[j]) * (mathext.Digamma(x+float64(j)) - mathext.Digamma(x))
	}
	return s
}

func TestOptimTopicPriorMatchesDigamma(t *testing.T) {
	docLen := []int32{0, 3, 5, 2, 1}
	topicDoc := [][]int32{{0, 4, 2}, {0, 1, 0, 3}, {0, 0, 0, 0, 1}}
	const shape, scale = 1.0, 100.0

	h := NewAsymmetricHyperparams([]float64{0.3, 0.2, 0.1}, 0.01, 10)
	want := make([]float64, 3)
	den := digammaDiff(docLen, h.TopicPriorSum) - 1/scale
	for k, a := range h.TopicPrior {
		want[k] = (a*digammaDiff(topicDoc[k], a) + shape) / den
	}

	h.OptimTopicPrior(docLen, topicDoc, shape, scale, 1)
	assert.InDeltaSlice(t, want, h.TopicPrior, 1e-9)
	assert.InDelta(t, want[0]+want[1]+want[2], h.TopicPriorSum, 1e-9)

	assert.Panics(t, func() { h.OptimTopicPrior(docLen, topicDoc[:2], shape, scale, 1) })
}

func TestOptimWordPriorMatchesDigamma(t *testing.T) {
	topicLen := []int32{0, 0, 1, 0, 1}
	wordTopic := []int32{0, 4, 1}

	h := NewHyperparams(0.1, 2, 0.05, 4)
	wantSum := h.WordPrior * digammaDiff(wordTopic, h.WordPrior) /
		digammaDiff(topicLen, h.WordPriorSum)

	h.OptimWordPrior(topicLen, wordTopic, 1)
	assert.InDelta(t, wantSum, h.WordPriorSum, 1e-9)
	assert.InDelta(t, wantSum/4, h.WordPrior, 1e-9)

	assert.Panics(t, func() {
		NewHyperparams(0.1, 2, 0.05, 0).OptimWordPrior(topicLen, wordTopic, 1)
	})
}

func TestHyperparamsString(t *testing.T) {
	h := NewHyperparams(0.1, 2, 0.01, 6)
	assert.Equal(t, "topic_prior_sum: 0.2\ntopic_prior: 0.1 0.1\n"+
		"word_prior: 0.01\nword_prior_sum: 0.06\nvocab_size: 6\n", h.String())
}
