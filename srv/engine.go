package srv

import (
	"errors"
	"fmt"
	"hash/fnv"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
	"gonum.org/v1/gonum/floats"
)

// Token is a word of a document and its term frequency.
type Token struct {
	Text string `json:"text"`
	TF   int    `json:"tf"`
}

type BagOfWords struct {
	Tokens []Token `json:"tokens"`
}

// Words expands tokens by their term frequencies.
func (b *BagOfWords) Words() []string {
	var words []string
	for _, t := range b.Tokens {
		for i := 0; i < t.TF; i++ {
			words = append(words, t.Text)
		}
	}
	return words
}

// Topic and TopicWord carry the weights from the explainer as
// OriWeight, and the L2-normalized ones as Weight.
type Topic struct {
	ID        int32   `json:"id"`
	Weight    float64 `json:"weight"`
	OriWeight float64 `json:"ori_weight"`
}

type TopicWord struct {
	Text      string  `json:"text"`
	Signature uint64  `json:"signature"`
	Weight    float64 `json:"weight"`
	OriWeight float64 `json:"ori_weight"`
}

type Explanation struct {
	Topics []Topic     `json:"topics"`
	Words  []TopicWord `json:"words"`
}

var ErrDocumentTooLong = errors.New("srv: document too long")

// Weights whose L2 norm is below normEpsilon are not normalized.
const normEpsilon = 1e-6

// Engine owns a model, its vocabulary, an interpreter and an explainer.
// It is safe for concurrent use.
type Engine struct {
	cfg         Config
	model       *gibbs.Model
	vocab       *gibbs.Vocabulary
	interpreter gibbs.Interpreter
	explainer   *gibbs.Explainer
}

// NewEngine loads the model directory and vocabulary named by cfg.
func NewEngine(cfg *Config) (*Engine, error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	log.Infof("Loading model %s ...", cfg.ModelDir)
	m, e := gibbs.LoadModel(cfg.ModelDir)
	if e != nil {
		return nil, fmt.Errorf("loading model: %w", e)
	}
	v, e := utils.LoadVocab(cfg.VocabPath())
	if e != nil {
		return nil, e
	}
	return NewEngineFromModel(cfg, m, v)
}

// NewEngineFromModel builds the interpreter of cfg.Algorithm against
// an already loaded model.
func NewEngineFromModel(cfg *Config, m *gibbs.Model, v *gibbs.Vocabulary) (*Engine, error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	log.Infof("Smoothing model and creating %s interpreter ...", cfg.Algorithm)
	var itr gibbs.Interpreter
	switch cfg.Algorithm {
	case Gibbs:
		itr = gibbs.NewSparseLDAGibbsSampler(m, v, cfg.CacheMB,
			cfg.TotalIterations, cfg.BurnInIterations)
	case HillClimb:
		itr = gibbs.NewSparseLDAHillClimber(m, v, cfg.CacheMB, cfg.TotalIterations)
	case MultiChainsGibbs:
		itr = gibbs.NewMultiChainsGibbsSampler(m, v, cfg.CacheMB,
			cfg.NumRuns, cfg.TotalIterations, cfg.BurnInIterations)
	case MultiTrialsHillClimb:
		itr = gibbs.NewMultiTrialsHillClimber(m, v, cfg.CacheMB,
			cfg.NumRuns, cfg.TotalIterations)
	}
	x := gibbs.NewExplainer(m, v, itr, gibbs.ExplainerOptions{
		MaxTopicWords: cfg.MaxTopicWords,
		TopicTopK:     cfg.TopicTopK,
		WordTopK:      cfg.WordTopK,
	})
	log.Infof("Done")
	return &Engine{cfg: *cfg, model: m, vocab: v, interpreter: itr, explainer: x}, nil
}

func (g *Engine) Config() Config                { return g.cfg }
func (g *Engine) Model() *gibbs.Model           { return g.model }
func (g *Engine) Vocabulary() *gibbs.Vocabulary { return g.vocab }

func (g *Engine) Interpret(words []string) gibbs.SparseDist {
	return g.interpreter.Interpret(words)
}

// CheckLength returns ErrDocumentTooLong if a document of n words
// exceeds MaxDocumentLength.
func (g *Engine) CheckLength(n int) error {
	if n > g.cfg.MaxDocumentLength {
		return fmt.Errorf("%w: %d > %d words", ErrDocumentTooLong, n, g.cfg.MaxDocumentLength)
	}
	return nil
}

// InferAndExplain returns the top topics of doc and the words that
// explain them.
func (g *Engine) InferAndExplain(doc *BagOfWords) (*Explanation, error) {
	if doc == nil {
		return nil, fmt.Errorf("srv: nil document")
	}
	length := 0
	for _, t := range doc.Tokens {
		if t.TF < 0 {
			return nil, fmt.Errorf("srv: token %q has negative tf %d", t.Text, t.TF)
		}
		if t.TF > g.cfg.MaxDocumentLength-length {
			return nil, fmt.Errorf("%w: more than %d words",
				ErrDocumentTooLong, g.cfg.MaxDocumentLength)
		}
		length += t.TF
	}

	topics, words := g.explainer.Explain(doc.Words())
	x := &Explanation{
		Topics: make([]Topic, len(topics)),
		Words:  make([]TopicWord, len(words)),
	}

	weights := make([]float64, len(topics))
	for i, p := range topics {
		x.Topics[i] = Topic{ID: p.Topic, OriWeight: p.Prob}
		weights[i] = p.Prob
	}
	if normalize(weights) {
		for i := range x.Topics {
			x.Topics[i].Weight = weights[i]
		}
	}

	weights = make([]float64, len(words))
	for i, w := range words {
		x.Words[i] = TopicWord{Text: w.Word, Signature: Signature(w.Word), OriWeight: w.Weight}
		weights[i] = w.Weight
	}
	if normalize(weights) {
		for i := range x.Words {
			x.Words[i].Weight = weights[i]
		}
	}
	return x, nil
}

// normalize scales x to unit L2 norm, unless the norm is too small.
func normalize(x []float64) bool {
	norm := floats.Norm(x, 2)
	if norm < normEpsilon {
		return false
	}
	floats.Scale(1/norm, x)
	return true
}

// Signature is the 64-bit FNV-1a hash of a word.
func Signature(word string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(word))
	return h.Sum64()
}
