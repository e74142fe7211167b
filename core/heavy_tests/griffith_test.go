package heavy_tests

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
)

var (
	groundTruthDocLen = 21
	groundTruthNumDoc = 500
	groundTruthModel  = [][]float64{
		{1, 1, 1, 0, 0, 0, 0, 0, 0}, // 0* : 0.6
		{0, 0, 0, 1, 1, 1, 0, 0, 0}, // 1* : 0.2
		{0, 0, 0, 0, 0, 0, 1, 1, 1}, // 2* : 0.3
		{1, 0, 0, 1, 0, 0, 1, 0, 0}, // *0 : 0.4
		{0, 1, 0, 0, 1, 0, 0, 1, 0}, // *1 : 0.5
		{0, 0, 1, 0, 0, 1, 0, 0, 1}, // *2 : 0.6
	}
	groundTruthVocab = "00\n01\n02\n10\n11\n12\n20\n21\n22"
	groundTruthAlpha = []float64{0.6, 0.2, 0.3, 0.4, 0.5, 0.6}
	groundTruthBeta  = 0.01
	groundTruthK     = len(groundTruthAlpha)
	groundTruthV     = len(groundTruthModel[0])

	// Occurrences of each word in each of its topics.
	groundTruthCount = 1000
)

// In their paper "Finding Scientific Topics" on PNAS 2004, Thomas
// Griffith and Mark Steyvers verify LDA by synthetic data sampled from
// a ground-truth model, whose each P(w|z) is uniform over a row or a
// column of a V*V grid of words.  Here the ground-truth model, with an
// asymmetric Dirichlet prior alpha, is given to the interpreters, and
// we check that they recover the topic mixtures of the synthetic
// documents better than the prior mean does.
func TestGriffithInference(t *testing.T) {
	if !*flagRunLongTests {
		t.Skipf("Skip TestGriffithInference without -run_long_tests")
	}
	m, v := createGriffithModel(t)
	rng := rand.New(rand.NewSource(-1))
	docs, truths := createGriffithDocuments(rng)

	prior := make([]float64, groundTruthK)
	for k, a := range groundTruthAlpha {
		prior[k] = a / m.TopicPriorSum()
	}

	for name, intr := range map[string]gibbs.Interpreter{
		"multi_chains_gibbs":      gibbs.NewMultiChainsGibbsSampler(m, v, kCacheMB, kChains, kTotal, kBurnIn),
		"multi_trials_hill_climb": gibbs.NewMultiTrialsHillClimber(m, v, kCacheMB, kChains, kTotal),
	} {
		inferred, baseline := 0.0, 0.0
		for i, doc := range docs {
			dense := make([]float64, groundTruthK)
			for _, p := range intr.Interpret(doc) {
				dense[p.Topic] = p.Prob
			}
			inferred += totalVariation(dense, truths[i])
			baseline += totalVariation(prior, truths[i])
		}
		inferred /= float64(len(docs))
		baseline /= float64(len(docs))
		t.Logf("%s: mean total variation %g, prior mean %g", name, inferred, baseline)
		if inferred >= baseline {
			t.Errorf("%s: expecting inferred distributions closer than %g, got %g",
				name, baseline, inferred)
		}
	}
}

// TestGriffithLikelihoodAndPriors evaluates the synthetic documents
// with their true topic assignments, and estimates alpha from them.
func TestGriffithLikelihoodAndPriors(t *testing.T) {
	if !*flagRunLongTests {
		t.Skipf("Skip TestGriffithLikelihoodAndPriors without -run_long_tests")
	}
	m, _ := createGriffithModel(t)
	flat := createFlatModel()
	rng := rand.New(rand.NewSource(-1))

	truth := gibbs.NewEvaluator(m, nil)
	baseline := gibbs.NewEvaluator(flat, nil)
	o := gibbs.NewOptimizer(groundTruthK)

	var logl, flatLogl float64
	for i := 0; i < groundTruthNumDoc; i++ {
		d := synthesizeAssignments(rng)
		l, _ := truth.Perplexity(d)
		fl, _ := baseline.Perplexity(d)
		logl += l
		flatLogl += fl
		o.CollectDocumentStatistics(d)
	}
	t.Logf("log-likelihood %g, with flat model %g", logl, flatLogl)
	if logl <= flatLogl {
		t.Errorf("Expecting log-likelihood > %g, got %g", flatLogl, logl)
	}

	o.OptimizeTopicPriors(flat, kShape, kScale, 10*kOptimIter)
	alpha := flat.TopicPrior()
	t.Logf("estimated alpha %v", alpha)
	for k, a := range alpha {
		if a <= 0 || math.IsNaN(a) {
			t.Errorf("Expecting a positive alpha of topic %d, got %g", k, a)
		}
	}
	if alpha[1] >= alpha[0] || alpha[1] >= alpha[5] {
		t.Errorf("Expecting alpha[1] to be smaller than alpha[0] and alpha[5], got %v", alpha)
	}
}

func createGriffithModel(t *testing.T) (*gibbs.Model, *gibbs.Vocabulary) {
	v := gibbs.NewVocabulary()
	if e := v.Load(strings.NewReader(groundTruthVocab)); e != nil {
		t.Fatalf("Cannot load vocab: %v", e)
	}

	m := gibbs.NewModel(groundTruthK)
	m.Hyperparams = gibbs.NewAsymmetricHyperparams(groundTruthAlpha,
		groundTruthBeta, int32(groundTruthV))
	for topic, dist := range groundTruthModel {
		for word, p := range dist {
			if p > 0 {
				m.WordStats.Add(int32(word), topic, groundTruthCount)
				m.GlobalStats.Hist.Inc(topic, groundTruthCount)
			}
		}
	}
	return m, v
}

// createFlatModel spreads every word evenly over all topics.
func createFlatModel() *gibbs.Model {
	m := gibbs.NewModel(groundTruthK)
	m.Hyperparams.Set(0.1, groundTruthK, groundTruthBeta, int32(groundTruthV))
	for word := 0; word < groundTruthV; word++ {
		for topic := 0; topic < groundTruthK; topic++ {
			m.WordStats.Add(int32(word), topic, groundTruthCount)
			m.GlobalStats.Hist.Inc(topic, groundTruthCount)
		}
	}
	return m
}

// createGriffithDocuments returns the words of synthetic documents and
// their normalized topic histograms.
func createGriffithDocuments(rng *rand.Rand) ([][]string, [][]float64) {
	docs := make([][]string, groundTruthNumDoc)
	truths := make([][]float64, groundTruthNumDoc)
	for i := range docs {
		d := synthesizeAssignments(rng)
		truths[i] = make([]float64, groundTruthK)
		for it := d.Iterator(); !it.Done(); it.Next() {
			docs[i] = append(docs[i], word(int(it.Word())))
			truths[i][it.Topic()] += 1.0 / float64(groundTruthDocLen)
		}
	}
	return docs, truths
}

// synthesizeAssignments samples a topic histogram by a Polya urn of
// alpha, and then a word of each topic occurrence.
func synthesizeAssignments(rng *rand.Rand) *gibbs.Document {
	hist := make([]int, groundTruthK)
	sampleTopicHist(rng, hist)
	d := gibbs.NewDocument(groundTruthK)
	for t, c := range hist {
		for i := 0; i < c; i++ {
			d.Append(int32(sampleDiscrete(groundTruthModel[t], rng)), int32(t))
		}
	}
	return d
}

func sampleTopicHist(rng *rand.Rand, hist []int) {
	dist := make([]float64, groundTruthK)
	copy(dist, groundTruthAlpha)
	for i := range hist {
		hist[i] = 0
	}
	for i := 0; i < groundTruthDocLen; i++ {
		t := sampleDiscrete(dist, rng)
		dist[t] += 1.0
		hist[t]++
	}
}

func sampleDiscrete(dist []float64, rng *rand.Rand) int {
	if len(dist) <= 0 {
		panic("sample from empty distribution")
	}
	sum := 0.0
	for _, v := range dist {
		if v < 0 {
			panic(fmt.Sprintf("bad dist: %v", dist))
		}
		sum += v
	}
	u := rng.Float64() * sum
	sum = 0
	for i, v := range dist {
		sum += v
		if u < sum {
			return i
		}
	}
	panic("sampleDiscrete gets out of all possiblilities")
}

func word(sample int) string {
	return fmt.Sprintf("%d%d", sample/3, sample%3)
}

func totalVariation(p, q []float64) float64 {
	d := 0.0
	for i := range p {
		d += math.Abs(p[i] - q[i])
	}
	return d / 2
}
