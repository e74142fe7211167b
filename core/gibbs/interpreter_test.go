package gibbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewRandIsSeededByContent(t *testing.T) {
	a := newRand([]string{"apple", "dog"}).Int63()
	assert.Equal(t, a, newRand([]string{"apple", "dog"}).Int63())
	assert.NotEqual(t, a, newRand([]string{"dog", "apple"}).Int63())
}

func TestSortByTopicThenProb(t *testing.T) {
	d := SparseDist{{3, 0.25}, {2, 0.5}, {1, 0.25}, {0, 0}}
	d.sortByTopicThenProb()
	assert.Equal(t, SparseDist{{2, 0.5}, {1, 0.25}, {3, 0.25}, {0, 0}}, d)
	assert.InDelta(t, 1.0, d.Sum(), 1e-12)
}

func createTestingInterpreters() map[string]Interpreter {
	m := CreateTestingModel()
	v := CreateTestingVocabulary()
	return map[string]Interpreter{
		"gibbs":                   NewSparseLDAGibbsSampler(m, v, 1, 10, 5),
		"hill_climb":              NewSparseLDAHillClimber(m, v, 1, 5),
		"multi_chains_gibbs":      NewMultiChainsGibbsSampler(m, v, 0, 3, 10, 5),
		"multi_trials_hill_climb": NewMultiTrialsHillClimber(m, v, 0, 3, 5),
	}
}

func TestInterpretersAgreeOnClearDocuments(t *testing.T) {
	for name, intr := range createTestingInterpreters() {
		d := intr.Interpret([]string{"tiger", "cat", "haha"})
		require.Len(t, d, 1, name)
		assert.Equal(t, int32(1), d[0].Topic, name)
		assert.InDelta(t, 2.1/2.2, d[0].Prob, 1e-9, name)

		assert.Empty(t, intr.Interpret([]string{"unknown"}), name)
	}
}

func TestInterpretConcurrently(t *testing.T) {
	docs := [][]string{
		{"apple", "orange", "banana"},
		{"apple", "orange", "dog", "haha"},
		{"tiger", "cat", "apple", "dog", "banana"},
	}
	for name, intr := range createTestingInterpreters() {
		want := make([]SparseDist, len(docs))
		for i, doc := range docs {
			want[i] = intr.Interpret(doc)
		}

		got := make([]SparseDist, 8*len(docs))
		var g errgroup.Group
		for i := range got {
			i := i
			g.Go(func() error {
				got[i] = intr.Interpret(docs[i%len(docs)])
				return nil
			})
		}
		require.NoError(t, g.Wait())
		for i, d := range got {
			assert.Equal(t, want[i%len(docs)], d, name)
		}
	}
}
