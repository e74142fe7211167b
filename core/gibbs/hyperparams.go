package gibbs

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/poseidon1214/Neptune-sub002/core/kvrecords"
	"google.golang.org/protobuf/encoding/protowire"
)

// Hyperparams are the Dirichlet priors of an LDA model: an asymmetric
// prior over topics and a symmetric prior over words.
type Hyperparams struct {
	TopicPrior    []float64
	TopicPriorSum float64
	WordPrior     float64
	WordPriorSum  float64
	VocabSize     int32
}

// Single-record files use this key.
const singleRecordKey = " "

// Hyperparams are persisted as
//
//	message Hyperparams {
//	  repeated double topic_prior = 1 [packed = true];
//	  double word_prior = 2;
//	  int32 vocab_size = 3;
//	}
const (
	topicPriorField = 1
	wordPriorField  = 2
	vocabSizeField  = 3
)

var ErrEmptyHyperparams = errors.New("gibbs: no hyperparams record")

func NewHyperparams(topicPrior float64, numTopics int, wordPrior float64,
	vocabSize int32) *Hyperparams {
	h := &Hyperparams{}
	h.Set(topicPrior, numTopics, wordPrior, vocabSize)
	return h
}

func NewAsymmetricHyperparams(topicPrior []float64, wordPrior float64,
	vocabSize int32) *Hyperparams {
	h := &Hyperparams{
		TopicPrior: append([]float64(nil), topicPrior...),
		WordPrior:  wordPrior,
		VocabSize:  vocabSize,
	}
	h.sum()
	return h
}

// Set resets h to symmetric priors.
func (h *Hyperparams) Set(topicPrior float64, numTopics int, wordPrior float64,
	vocabSize int32) {
	h.TopicPrior = make([]float64, numTopics)
	for i := range h.TopicPrior {
		h.TopicPrior[i] = topicPrior
	}
	h.TopicPriorSum = topicPrior * float64(numTopics)
	h.WordPrior = wordPrior
	h.WordPriorSum = wordPrior * float64(vocabSize)
	h.VocabSize = vocabSize
}

func (h *Hyperparams) sum() {
	h.TopicPriorSum = 0
	for _, a := range h.TopicPrior {
		h.TopicPriorSum += a
	}
	h.WordPriorSum = h.WordPrior * float64(h.VocabSize)
}

func (h *Hyperparams) NumTopics() int {
	return len(h.TopicPrior)
}

func (h *Hyperparams) Clone() *Hyperparams {
	c := *h
	c.TopicPrior = append([]float64(nil), h.TopicPrior...)
	return &c
}

func (h *Hyperparams) Marshal() []byte {
	var b []byte
	if len(h.TopicPrior) > 0 {
		var packed []byte
		for _, a := range h.TopicPrior {
			packed = protowire.AppendFixed64(packed, math.Float64bits(a))
		}
		b = protowire.AppendTag(b, topicPriorField, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	if h.WordPrior != 0 {
		b = protowire.AppendTag(b, wordPriorField, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(h.WordPrior))
	}
	if h.VocabSize != 0 {
		b = protowire.AppendTag(b, vocabSizeField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(h.VocabSize)))
	}
	return b
}

// Unmarshal replaces h with the decoded message and recomputes the
// prior sums.
func (h *Hyperparams) Unmarshal(data []byte) error {
	r := Hyperparams{TopicPrior: []float64{}}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == topicPriorField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			for len(packed) > 0 {
				v, m := protowire.ConsumeFixed64(packed)
				if m < 0 {
					return protowire.ParseError(m)
				}
				packed = packed[m:]
				r.TopicPrior = append(r.TopicPrior, math.Float64frombits(v))
			}
		case num == topicPriorField && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			r.TopicPrior = append(r.TopicPrior, math.Float64frombits(v))
		case num == wordPriorField && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			r.WordPrior = math.Float64frombits(v)
		case num == vocabSizeField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			r.VocabSize = int32(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	r.sum()
	*h = r
	return nil
}

// Load reads the single record written by Save.
func (h *Hyperparams) Load(r io.Reader) error {
	_, value, e := kvrecords.NewReader(r).Read()
	if e == io.EOF {
		return ErrEmptyHyperparams
	}
	if e != nil {
		return e
	}
	if e := h.Unmarshal(value); e != nil {
		return fmt.Errorf("parsing hyperparams: %w", e)
	}
	return nil
}

func (h *Hyperparams) Save(w io.Writer) error {
	kw := kvrecords.NewWriter(w)
	if e := kw.Write([]byte(singleRecordKey), h.Marshal()); e != nil {
		return e
	}
	return kw.Flush()
}

// OptimTopicPrior updates the topic prior by Minka's fixed-point
// iteration, in which digamma differences are computed as cumulative
// sums of reciprocals.  docLenCount[j] is the number of documents of
// length j; topicDocCount[k][j] is the number of documents in which
// topic k occurs j times.  iterations tunes convergence only.
func (h *Hyperparams) OptimTopicPrior(docLenCount []int32,
	topicDocCount [][]int32, shape, scale float64, iterations int) {
	if len(topicDocCount) != h.NumTopics() {
		panic(fmt.Sprintf("len(topicDocCount) (%d) != NumTopics() (%d)",
			len(topicDocCount), h.NumTopics()))
	}

	for it := 0; it < iterations; it++ {
		diffDigamma, denominator := 0.0, 0.0
		for j := 1; j < len(docLenCount); j++ {
			diffDigamma += 1.0 / (float64(j) - 1.0 + h.TopicPriorSum)
			denominator += float64(docLenCount[j]) * diffDigamma
		}
		denominator -= 1.0 / scale

		h.TopicPriorSum = 0.0
		for k, counts := range topicDocCount {
			diffDigamma, numerator := 0.0, 0.0
			for j := 1; j < len(counts); j++ {
				diffDigamma += 1.0 / (float64(j) - 1.0 + h.TopicPrior[k])
				numerator += float64(counts[j]) * diffDigamma
			}
			h.TopicPrior[k] = (h.TopicPrior[k]*numerator + shape) / denominator
			h.TopicPriorSum += h.TopicPrior[k]
		}
	}
}

// OptimWordPrior updates the symmetric word prior the same way.
// wordTopicCount[j] is the number of (word, topic) pairs with count j;
// topicLenCount[j] is the number of topics with j occurrences.
func (h *Hyperparams) OptimWordPrior(topicLenCount, wordTopicCount []int32,
	iterations int) {
	if h.VocabSize <= 0 {
		panic(fmt.Sprintf("VocabSize (%d) <= 0", h.VocabSize))
	}
	for it := 0; it < iterations; it++ {
		diffDigamma, numerator := 0.0, 0.0
		for j := 1; j < len(wordTopicCount); j++ {
			diffDigamma += 1.0 / (float64(j) - 1.0 + h.WordPrior)
			numerator += diffDigamma * float64(wordTopicCount[j])
		}

		diffDigamma, denominator := 0.0, 0.0
		for j := 1; j < len(topicLenCount); j++ {
			diffDigamma += 1.0 / (float64(j) - 1.0 + h.WordPriorSum)
			denominator += diffDigamma * float64(topicLenCount[j])
		}
		h.WordPriorSum = h.WordPrior * numerator / denominator
		h.WordPrior = h.WordPriorSum / float64(h.VocabSize)
	}
}

func (h *Hyperparams) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "topic_prior_sum: %g\ntopic_prior:", h.TopicPriorSum)
	for _, a := range h.TopicPrior {
		fmt.Fprintf(&s, " %g", a)
	}
	fmt.Fprintf(&s, "\nword_prior: %g\nword_prior_sum: %g\nvocab_size: %d\n",
		h.WordPrior, h.WordPriorSum, h.VocabSize)
	return s.String()
}
