package srv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func newTestingEngine(t *testing.T, algorithm string) *Engine {
	c := createTestingConfig()
	c.Algorithm = algorithm
	g, e := NewEngineFromModel(c, gibbs.CreateTestingModel(), gibbs.CreateTestingVocabulary())
	require.NoError(t, e)
	return g
}

func TestEngineInterpret(t *testing.T) {
	for _, a := range []string{Gibbs, HillClimb, MultiChainsGibbs, MultiTrialsHillClimb} {
		g := newTestingEngine(t, a)
		dist := g.Interpret([]string{"apple", "orange", "banana"})
		require.Len(t, dist, 1, a)
		assert.Equal(t, int32(0), dist[0].Topic, a)
		assert.InDelta(t, 0.96875, dist[0].Prob, 1e-9, a)
	}
}

func TestEngineInferAndExplain(t *testing.T) {
	g := newTestingEngine(t, HillClimb)
	x, e := g.InferAndExplain(&BagOfWords{Tokens: []Token{
		{"apple", 2}, {"dog", 1}, {"haha", 3}, {"orange", 0}}})
	require.NoError(t, e)

	require.Len(t, x.Topics, 2)
	assert.Equal(t, int32(0), x.Topics[0].ID)
	assert.InDelta(t, 0.65625, x.Topics[0].OriWeight, 1e-9)
	assert.InDelta(t, 0.34375, x.Topics[1].OriWeight, 1e-9)

	topicWeights := []float64{x.Topics[0].Weight, x.Topics[1].Weight}
	assert.InDelta(t, 1.0, floats.Norm(topicWeights, 2), 1e-9)
	assert.InDelta(t, x.Topics[0].OriWeight/x.Topics[1].OriWeight,
		x.Topics[0].Weight/x.Topics[1].Weight, 1e-9)

	require.Len(t, x.Words, 6)
	wordWeights := make([]float64, len(x.Words))
	for i, w := range x.Words {
		wordWeights[i] = w.Weight
		assert.Equal(t, Signature(w.Text), w.Signature)
	}
	assert.Equal(t, "apple", x.Words[0].Text)
	assert.InDelta(t, 1.0, floats.Norm(wordWeights, 2), 1e-9)
}

func TestEngineRejectsLongDocuments(t *testing.T) {
	g := newTestingEngine(t, HillClimb)
	g.cfg.MaxDocumentLength = 3
	_, e := g.InferAndExplain(&BagOfWords{Tokens: []Token{{"apple", 2}, {"dog", 2}}})
	assert.ErrorIs(t, e, ErrDocumentTooLong)
	_, e = g.InferAndExplain(&BagOfWords{Tokens: []Token{{"apple", 1 << 40}}})
	assert.ErrorIs(t, e, ErrDocumentTooLong)
	_, e = g.InferAndExplain(&BagOfWords{Tokens: []Token{{"apple", 2}, {"dog", 1}}})
	assert.NoError(t, e)

	assert.NoError(t, g.CheckLength(3))
	assert.ErrorIs(t, g.CheckLength(4), ErrDocumentTooLong)
}

func TestEngineExplainEmptyDocument(t *testing.T) {
	g := newTestingEngine(t, Gibbs)
	x, e := g.InferAndExplain(&BagOfWords{Tokens: []Token{{"haha", 1}}})
	require.NoError(t, e)
	assert.Empty(t, x.Topics)
	assert.Empty(t, x.Words)

	_, e = g.InferAndExplain(&BagOfWords{Tokens: []Token{{"apple", -1}}})
	assert.Error(t, e)
	_, e = g.InferAndExplain(nil)
	assert.Error(t, e)
}

func TestNormalize(t *testing.T) {
	x := []float64{3, 4}
	assert.True(t, normalize(x))
	assert.Equal(t, []float64{0.6, 0.8}, x)

	tiny := []float64{1e-7, 0}
	assert.False(t, normalize(tiny))
	assert.Equal(t, []float64{1e-7, 0}, tiny)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, uint64(0xcbf29ce484222325), Signature(""))
	assert.NotEqual(t, Signature("apple"), Signature("orange"))
}

func TestNewEngine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, gibbs.CreateTestingModel().Save(dir))
	v := gibbs.CreateTestingVocabulary()
	var content string
	for _, w := range v.Tokens {
		content += w + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, gibbs.VocabFilename), []byte(content), 0644))

	c := createTestingConfig()
	c.ModelDir = dir
	g, e := NewEngine(c)
	require.NoError(t, e)
	assert.Equal(t, 6, g.Vocabulary().Len())
	assert.Equal(t, 2, g.Model().NumTopics())
	assert.Equal(t, *c, g.Config())

	c.ModelDir = filepath.Join(dir, "nonexistent")
	_, e = NewEngine(c)
	assert.Error(t, e)
}
