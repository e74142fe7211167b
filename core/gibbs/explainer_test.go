package gibbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestingExplainer(opts ExplainerOptions) (*Explainer, *Model) {
	m := CreateTestingModel()
	v := CreateTestingVocabulary()
	return NewExplainer(m, v, NewSparseLDAGibbsSampler(m, v, 1, 10, 5), opts), m
}

func TestExplain(t *testing.T) {
	x, m := newTestingExplainer(ExplainerOptions{})
	assert.Equal(t, DefaultExplainerOptions(), x.Options())
	p0 := m.ProbWordGivenTopic(0, nil)[0]

	topics, words := x.Explain([]string{"apple", "orange", "banana"})
	require.Len(t, topics, 1)
	require.Len(t, words, 3)
	for i, w := range []string{"apple", "orange", "banana"} {
		assert.Equal(t, w, words[i].Word)
		assert.InDelta(t, topics[0].Prob*p0, words[i].Weight, 1e-12)
	}

	topics, words = x.Explain([]string{"apple", "orange", "dog", "haha"})
	require.Len(t, topics, 2)
	require.Len(t, words, 6)
	for i, w := range []string{"apple", "orange", "banana", "dog", "cat", "tiger"} {
		assert.Equal(t, w, words[i].Word)
		assert.InDelta(t, topics[i/3].Prob*p0, words[i].Weight, 1e-12)
	}
}

func TestExplainEmptyDocument(t *testing.T) {
	x, _ := newTestingExplainer(ExplainerOptions{})
	topics, words := x.Explain(nil)
	assert.Empty(t, topics)
	assert.Empty(t, words)
}

func TestExplainTruncates(t *testing.T) {
	x, _ := newTestingExplainer(ExplainerOptions{TopicTopK: 1, WordTopK: 2})
	topics, words := x.Explain([]string{"apple", "orange", "dog", "haha"})
	require.Len(t, topics, 1)
	assert.Equal(t, int32(0), topics[0].Topic)
	require.Len(t, words, 2)
	assert.Equal(t, "apple", words[0].Word)
	assert.Equal(t, "orange", words[1].Word)
}

func TestTopicWordsMergesSharedWords(t *testing.T) {
	m := NewModel(testingK)
	m.Hyperparams.Set(testingAlpha, testingK, testingBeta, 4)
	m.WordStats.Add(0, 0, 3)
	m.WordStats.Add(1, 0, 1)
	m.WordStats.Add(1, 1, 2)
	m.WordStats.Add(3, 1, 2)
	m.GlobalStats.Hist.Inc(0, 4)
	m.GlobalStats.Hist.Inc(1, 4)
	v := NewVocabulary()
	v.AddWord("a")
	v.AddWord("b")

	x := NewExplainer(m, v, nil, ExplainerOptions{})
	words := x.TopicWords(SparseDist{{1, 0.75}, {0, 0.25}})

	p := func(w int32, topic int) float64 { return m.ProbWordGivenTopic(w, nil)[topic] }
	want := map[string]float64{
		"a":         0.25 * p(0, 0),
		"b":         0.25*p(1, 0) + 0.75*p(1, 1),
		"UNKNOWN_3": 0.75 * p(3, 1),
	}
	require.Len(t, words, 3)
	assert.Equal(t, "b", words[0].Word)
	for i, w := range words {
		assert.InDelta(t, want[w.Word], w.Weight, 1e-12)
		if i > 0 {
			assert.GreaterOrEqual(t, words[i-1].Weight, w.Weight)
		}
	}
}

func TestExplainMoreTopicWordsNeverShortens(t *testing.T) {
	doc := []string{"apple", "dog", "haha"}
	prev := -1
	for _, n := range []int{1, 2, 3, 20} {
		x, _ := newTestingExplainer(ExplainerOptions{MaxTopicWords: n})
		_, words := x.Explain(doc)
		assert.GreaterOrEqual(t, len(words), prev)
		prev = len(words)
	}
}
