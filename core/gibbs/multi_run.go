package gibbs

import (
	"fmt"

	log "github.com/golang/glog"
)

// multiRun runs a strategy several times over the same document and
// averages the results.  All runs draw from one random stream and
// share one memo.
type multiRun struct {
	r       strategy
	numRuns int
}

func newMultiRun(r strategy, numRuns int) multiRun {
	if numRuns <= 0 {
		panic(fmt.Sprintf("numRuns (%d) <= 0", numRuns))
	}
	return multiRun{r: r, numRuns: numRuns}
}

func (m multiRun) interpret(words []string) SparseDist {
	b := m.r.base()
	rng := newRand(words)
	memo := b.newDistMemo()

	accum := make(map[int32]float64)
	for i := 0; i < m.numRuns; i++ {
		doc := ParseFromTokens(words, b.vocab, b.model, rng)
		if doc.Len() == 0 {
			return SparseDist{}
		}
		for _, p := range m.r.run(doc, rng, memo) {
			accum[p.Topic] += p.Prob
		}
	}
	return meanDist(accum, m.numRuns)
}

func meanDist(accum map[int32]float64, n int) SparseDist {
	d := make(SparseDist, 0, len(accum))
	for topic, sum := range accum {
		d = append(d, Prob{topic, sum / float64(n)})
	}
	d.sortByTopicThenProb()
	if log.V(2) {
		log.Infof("Averaged %d runs: %v", n, d)
	}
	return d
}

// MultiChainsGibbsSampler averages several Gibbs sampling chains over
// the same document.  Each chain starts from its own random topic
// assignment.
type MultiChainsGibbsSampler struct {
	*SparseLDAGibbsSampler
	runs multiRun
}

func NewMultiChainsGibbsSampler(model *Model, vocab *Vocabulary, cacheMB int,
	numChains, totalIterations, burnInIterations int) *MultiChainsGibbsSampler {
	s := NewSparseLDAGibbsSampler(model, vocab, cacheMB,
		totalIterations, burnInIterations)
	return &MultiChainsGibbsSampler{s, newMultiRun(s, numChains)}
}

func (m *MultiChainsGibbsSampler) NumChains() int {
	return m.runs.numRuns
}

func (m *MultiChainsGibbsSampler) Interpret(words []string) SparseDist {
	return m.runs.interpret(words)
}

// MultiTrialsHillClimber averages several hill climbing trials over
// the same document.  Trials differ only in their random initial
// topic assignments.
type MultiTrialsHillClimber struct {
	*SparseLDAHillClimber
	runs multiRun
}

func NewMultiTrialsHillClimber(model *Model, vocab *Vocabulary, cacheMB int,
	numTrials, totalIterations int) *MultiTrialsHillClimber {
	c := NewSparseLDAHillClimber(model, vocab, cacheMB, totalIterations)
	return &MultiTrialsHillClimber{c, newMultiRun(c, numTrials)}
}

func (m *MultiTrialsHillClimber) NumTrials() int {
	return m.runs.numRuns
}

func (m *MultiTrialsHillClimber) Interpret(words []string) SparseDist {
	return m.runs.interpret(words)
}
