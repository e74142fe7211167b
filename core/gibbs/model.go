package gibbs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

const (
	GlobalStatsFilename = "lda.global_stats"
	WordStatsFilename   = "lda.word_stats"
	HyperparamsFilename = "lda.hyperparams"
	VocabFilename       = "lda.vocab"
)

// Codes of ModelError, one per model file.
const (
	CodeGlobalStats = -1
	CodeWordStats   = -2
	CodeHyperparams = -3
	CodeMkdir       = -4
)

// Smallest normalized float32, the lower bound of P(w|t) denominators.
const minDenominator = 1.17549435e-38

var ErrModelDirExists = errors.New("gibbs: model directory already exists")

// ModelError reports which model file failed to load or save.
type ModelError struct {
	Code int
	Path string
	Err  error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model file %s (code %d): %v", e.Path, e.Code, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Model is a trained LDA model: word-topic histograms N(w,t), the
// global topic histogram N(t) and the Dirichlet priors.  It is
// read-only once loaded, so it can be shared by concurrent
// interpreters.
type Model struct {
	Hyperparams *Hyperparams
	WordStats   *WordStats
	GlobalStats *GlobalStats
}

// NewModel creates an empty model with topic prior 0.1 and word prior
// 0.01 over an empty vocabulary.
func NewModel(numTopics int) *Model {
	if numTopics <= 0 {
		panic(fmt.Sprintf("numTopics = %d, less than 1", numTopics))
	}
	return &Model{
		Hyperparams: NewHyperparams(0.1, numTopics, 0.01, 0),
		WordStats:   NewWordStats(numTopics),
		GlobalStats: NewGlobalStats(numTopics),
	}
}

func (m *Model) NumTopics() int {
	return m.GlobalStats.NumTopics()
}

func (m *Model) NumWords() int {
	return m.WordStats.NumWords()
}

func (m *Model) HasWord(word int32) bool {
	return m.WordStats.HasWord(word)
}

func (m *Model) TopicPrior() []float64       { return m.Hyperparams.TopicPrior }
func (m *Model) TopicPriorSum() float64      { return m.Hyperparams.TopicPriorSum }
func (m *Model) WordPrior() float64          { return m.Hyperparams.WordPrior }
func (m *Model) WordPriorSum() float64       { return m.Hyperparams.WordPriorSum }
func (m *Model) GlobalTopicHist() hist.Dense { return m.GlobalStats.Hist }

func (m *Model) WordTopicHist(word int32) *hist.OrderedSparse {
	return m.WordStats.TopicHist(word)
}

func (m *Model) denominator(topic int) float64 {
	d := m.WordPriorSum() + float64(m.GlobalStats.Hist[topic])
	if d <= minDenominator {
		panic(fmt.Sprintf("denominator of P(w|t=%d) is %g", topic, d))
	}
	return d
}

// ProbWordGivenTopic fills out with P(word|t) for every topic t and
// returns it.  out is reallocated if it is too short.
func (m *Model) ProbWordGivenTopic(word int32, out []float64) []float64 {
	k := m.NumTopics()
	if cap(out) < k {
		out = make([]float64, k)
	}
	out = out[:k]
	wp := m.WordPrior()
	for t := 0; t < k; t++ {
		out[t] = wp / m.denominator(t)
	}
	h := m.WordTopicHist(word)
	for i := 0; i < h.Len(); i++ {
		t := int(h.Topics[i])
		out[t] = (wp + float64(h.Counts[i])) / m.denominator(t)
	}
	return out
}

// WordProb is an entry of a sparse topic-word matrix.
type WordProb struct {
	Word int32
	Prob float64
}

// TopicWordDists returns, for every topic, the maxWords words with the
// largest non-smoothed P(w|t), sorted by ascending word id.
func (m *Model) TopicWordDists(maxWords int) [][]WordProb {
	dists := make([][]WordProb, m.NumTopics())
	wp := m.WordPrior()
	m.WordStats.ForEach(func(word int32, h *hist.OrderedSparse) error {
		for i := 0; i < h.Len(); i++ {
			t := int(h.Topics[i])
			dists[t] = append(dists[t], WordProb{
				word, (wp + float64(h.Counts[i])) / m.denominator(t)})
		}
		return nil
	})

	for t, d := range dists {
		sort.SliceStable(d, func(i, j int) bool { return d[i].Prob > d[j].Prob })
		if len(d) > maxWords {
			d = d[:maxWords]
		}
		sort.Slice(d, func(i, j int) bool { return d[i].Word < d[j].Word })
		dists[t] = d
	}
	return dists
}

// MaxProbWordGivenTopic returns argmax_t P(word|t) and its
// probability.  Among equal probabilities the first one visited wins,
// visiting smoothing-only values of all topics before the non-zeros of
// word.
func (m *Model) MaxProbWordGivenTopic(word int32) (int32, float64) {
	return m.maxOverTopics(word, func(int) float64 { return 1 })
}

// MaxSmoothingMass returns argmax_t topic_prior(t)*P(word|t) and its
// value, visiting topics in the same order as MaxProbWordGivenTopic.
func (m *Model) MaxSmoothingMass(word int32) (int32, float64) {
	prior := m.TopicPrior()
	return m.maxOverTopics(word, func(t int) float64 { return prior[t] })
}

func (m *Model) maxOverTopics(word int32, weight func(int) float64) (int32, float64) {
	var maxTopic int32 = -1
	maxProb := -1.0
	wp := m.WordPrior()
	for t := 0; t < m.NumTopics(); t++ {
		if p := weight(t) * wp / m.denominator(t); p > maxProb {
			maxTopic, maxProb = int32(t), p
		}
	}
	h := m.WordTopicHist(word)
	for i := 0; i < h.Len(); i++ {
		t := int(h.Topics[i])
		if p := weight(t) * (wp + float64(h.Counts[i])) / m.denominator(t); p > maxProb {
			maxTopic, maxProb = int32(t), p
		}
	}
	return maxTopic, maxProb
}

// CalculateWordPriorOptimCount returns the statistics used by
// Hyperparams.OptimWordPrior: topicLenCount[j] is the number of topics
// with N(t) = j, skipping empty topics, and wordTopicCount[j] is the
// number of (word, topic) pairs with N(w,t) = j.
func (m *Model) CalculateWordPriorOptimCount() (topicLenCount, wordTopicCount []int32) {
	m.WordStats.ForEach(func(_ int32, h *hist.OrderedSparse) error {
		for i := 0; i < h.Len(); i++ {
			c := int(h.Counts[i])
			if len(wordTopicCount) <= c {
				wordTopicCount = append(wordTopicCount, make([]int32, c+1-len(wordTopicCount))...)
			}
			wordTopicCount[c]++
		}
		return nil
	})
	for _, n := range m.GlobalStats.Hist {
		c := int(n)
		if c == 0 {
			continue
		}
		if len(topicLenCount) <= c {
			topicLenCount = append(topicLenCount, make([]int32, c+1-len(topicLenCount))...)
		}
		topicLenCount[c]++
	}
	return topicLenCount, wordTopicCount
}

// OptimWordPrior re-estimates the word prior from the model itself.
func (m *Model) OptimWordPrior(iterations int) {
	topicLenCount, wordTopicCount := m.CalculateWordPriorOptimCount()
	m.Hyperparams.OptimWordPrior(topicLenCount, wordTopicCount, iterations)
}

// AddDocument folds the topic assignments of d into the word and
// global histograms.
func (m *Model) AddDocument(d Assignments) {
	for i := 0; i < d.Len(); i++ {
		c := d.CellAt(i)
		m.WordStats.Add(c.Word, int(c.Topic), 1)
		m.GlobalStats.Hist.Inc(int(c.Topic), 1)
	}
}

// LoadModel loads a model saved by Model.Save.  Files are read in the
// order global stats, word stats, hyperparams.  If the word stats file
// does not exist, shards written by SaveWordStatsShards are merged
// instead.  On failure it returns a *ModelError and no model.
func LoadModel(dir string) (*Model, error) {
	log.Infof("Loading model %s ...", dir)
	global := &GlobalStats{}
	if e := loadFile(dir, GlobalStatsFilename, CodeGlobalStats, global.Load); e != nil {
		return nil, e
	}

	words := NewWordStats(global.NumTopics())
	if shards := wordStatsShards(dir); len(shards) > 0 && !exists(dir, WordStatsFilename) {
		if e := words.LoadAndMerge(shards); e != nil {
			log.Errorf("Failed loading word stats shards in %s: %v", dir, e)
			return nil, &ModelError{CodeWordStats, filepath.Join(dir, WordStatsFilename), e}
		}
	} else if e := loadFile(dir, WordStatsFilename, CodeWordStats, func(r io.Reader) error {
		return words.Load(r, true)
	}); e != nil {
		return nil, e
	}

	hp := NewHyperparams(0.1, global.NumTopics(), 0.01, 0)
	if e := loadFile(dir, HyperparamsFilename, CodeHyperparams, hp.Load); e != nil {
		return nil, e
	}
	if hp.NumTopics() != global.NumTopics() {
		return nil, &ModelError{CodeHyperparams, filepath.Join(dir, HyperparamsFilename),
			fmt.Errorf("%w: %d topic priors, %d topics",
				ErrTopicMismatch, hp.NumTopics(), global.NumTopics())}
	}

	m := &Model{Hyperparams: hp, WordStats: words, GlobalStats: global}
	log.Infof("Done. %d topics %d words.", m.NumTopics(), m.NumWords())
	return m, nil
}

func loadFile(dir, name string, code int, load func(io.Reader) error) error {
	fn := filepath.Join(dir, name)
	f, e := os.Open(fn)
	if e != nil {
		log.Errorf("Failed loading %s: %v", fn, e)
		return &ModelError{code, fn, e}
	}
	defer f.Close()
	if e := load(f); e != nil {
		log.Errorf("Failed loading %s: %v", fn, e)
		return &ModelError{code, fn, e}
	}
	return nil
}

// Save writes the model into a new directory dir.  It fails if dir
// already exists.
func (m *Model) Save(dir string) error {
	if e := os.Mkdir(dir, 0777); e != nil {
		if errors.Is(e, os.ErrExist) {
			e = fmt.Errorf("%w: %v", ErrModelDirExists, e)
		}
		log.Errorf("Failed to mkdir %s: %v", dir, e)
		return &ModelError{CodeMkdir, dir, e}
	}
	if e := saveFile(dir, HyperparamsFilename, CodeHyperparams, m.Hyperparams.Save); e != nil {
		return e
	}
	if e := saveFile(dir, WordStatsFilename, CodeWordStats, m.WordStats.Save); e != nil {
		return e
	}
	return saveFile(dir, GlobalStatsFilename, CodeGlobalStats, m.GlobalStats.Save)
}

func exists(dir, name string) bool {
	_, e := os.Stat(filepath.Join(dir, name))
	return e == nil
}

// SaveWordStatsShards writes the word stats into n shard files in an
// existing directory dir.
func (m *Model) SaveWordStatsShards(dir string, n int) error {
	for i, shard := range NewSharder(n).ShardWordStats(m.WordStats) {
		if e := saveFile(dir, WordStatsShardFilename(i, n), CodeWordStats, shard.Save); e != nil {
			return e
		}
	}
	return nil
}

func saveFile(dir, name string, code int, save func(io.Writer) error) error {
	fn := filepath.Join(dir, name)
	f, e := os.Create(fn)
	if e != nil {
		return &ModelError{code, fn, e}
	}
	if e := save(f); e != nil {
		f.Close()
		return &ModelError{code, fn, e}
	}
	if e := f.Close(); e != nil {
		return &ModelError{code, fn, e}
	}
	return nil
}

// WordCount is a word and its count in a topic.
type WordCount struct {
	Word  int32
	Count int64
}

// TopWords returns words in a given topic sorted by descending count.
func (m *Model) TopWords(topic int) []WordCount {
	var words []WordCount
	m.WordStats.ForEach(func(word int32, h *hist.OrderedSparse) error {
		if c := h.At(topic); c > 0 {
			words = append(words, WordCount{word, c})
		}
		return nil
	})
	sort.SliceStable(words, func(i, j int) bool { return words[i].Count > words[j].Count })
	return words
}

// TopNWords returns top-N words in a topic where these words'
// counts accumulate to percentage of N(t).
func (m *Model) TopNWords(topic int, percentage float64) []WordCount {
	words := m.TopWords(topic)
	var accum int64
	for i, wc := range words {
		accum += wc.Count
		if float64(accum) >= float64(m.GlobalStats.Hist[topic])*percentage {
			return words[:i+1]
		}
	}
	return words
}

func (m *Model) PrintTopics(w io.Writer, v *Vocabulary) {
	m.PrintTopicsTopNWords(w, v, 1.0)
}

// PrintTopicsTopNWords prints each topic as words with N(w,t) in
// descending order.  Parameter percentage is passed to
// Model.TopNWords and controls how many words to be printed for each
// topic.
func (m *Model) PrintTopicsTopNWords(w io.Writer, v *Vocabulary,
	percentage float64) {
	for topic, count := range m.GlobalStats.Hist {
		fmt.Fprintf(w, "Topic %05d Nt %05d:", topic, count)
		for _, wc := range m.TopNWords(topic, percentage) {
			fmt.Fprintf(w, " %s (%d)", v.TokenOrUnknown(wc.Word), wc.Count)
		}
		fmt.Fprintf(w, "\n")
	}
}
