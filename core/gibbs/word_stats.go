package gibbs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/hist"
	"github.com/poseidon1214/Neptune-sub002/core/kvrecords"
)

var (
	ErrBadWordKey    = errors.New("gibbs: word stats key is not a word id")
	ErrRepeatedWord  = errors.New("gibbs: word id repeated in word stats")
	ErrTopicMismatch = errors.New("gibbs: histogram has a different number of topics")
)

// WordStats maps word ids to their topic histograms.  Word ids are
// also kept in a bitmap, so that iteration and serialization follow
// ascending word id.
type WordStats struct {
	numTopics int
	hists     map[int32]*hist.OrderedSparse
	words     *roaring.Bitmap
	zero      *hist.OrderedSparse
}

func NewWordStats(numTopics int) *WordStats {
	return &WordStats{
		numTopics: numTopics,
		hists:     make(map[int32]*hist.OrderedSparse),
		words:     roaring.NewBitmap(),
		zero:      hist.NewOrderedSparse(numTopics),
	}
}

func (s *WordStats) NumTopics() int {
	return s.numTopics
}

func (s *WordStats) NumWords() int {
	return len(s.hists)
}

func (s *WordStats) HasWord(word int32) bool {
	return word >= 0 && s.words.Contains(uint32(word))
}

// TopicHist returns the topic histogram of word.  Words that never
// occurred share one empty histogram, which must not be modified.
func (s *WordStats) TopicHist(word int32) *hist.OrderedSparse {
	if h, ok := s.hists[word]; ok {
		return h
	}
	return s.zero
}

// Add increases the count of topic in the histogram of word, creating
// the histogram if needed.
func (s *WordStats) Add(word int32, topic, count int) {
	s.histOf(word).Inc(topic, count)
}

func (s *WordStats) histOf(word int32) *hist.OrderedSparse {
	if word < 0 {
		panic(fmt.Sprintf("word (%d) < 0", word))
	}
	h, ok := s.hists[word]
	if !ok {
		h = hist.NewOrderedSparse(s.numTopics)
		s.set(word, h)
	}
	return h
}

func (s *WordStats) set(word int32, h *hist.OrderedSparse) {
	s.hists[word] = h
	s.words.Add(uint32(word))
}

// ParseFrom replaces the content of s with dense per-word histograms.
func (s *WordStats) ParseFrom(dense map[int32]hist.Dense) error {
	s.clear()
	for word, d := range dense {
		if d.Len() != s.numTopics {
			return fmt.Errorf("%w: word %d has %d topics, want %d",
				ErrTopicMismatch, word, d.Len(), s.numTopics)
		}
		if word < 0 {
			return fmt.Errorf("%w: %d", ErrBadWordKey, word)
		}
		s.set(word, hist.NewOrderedSparseFromDense(d))
	}
	return nil
}

func (s *WordStats) clear() {
	s.hists = make(map[int32]*hist.OrderedSparse)
	s.words = roaring.NewBitmap()
}

// ForEach calls p for each word in ascending order of word id.
func (s *WordStats) ForEach(p func(word int32, h *hist.OrderedSparse) error) error {
	it := s.words.Iterator()
	for it.HasNext() {
		word := int32(it.Next())
		if e := p(word, s.hists[word]); e != nil {
			return e
		}
	}
	return nil
}

// NumSparseNodes returns the total number of non-zeros.
func (s *WordStats) NumSparseNodes() int {
	n := 0
	for _, h := range s.hists {
		n += h.Len()
	}
	return n
}

// SparseRatio is NumSparseNodes / (NumWords * NumTopics).
func (s *WordStats) SparseRatio() float64 {
	if s.NumTopics() == 0 {
		log.Errorf("NumTopics = 0")
		return 0
	}
	if s.NumWords() == 0 {
		log.Errorf("NumWords = 0")
		return 0
	}
	return float64(s.NumSparseNodes()) / float64(s.NumWords()) /
		float64(s.NumTopics())
}

// Load reads records keyed by decimal word ids.  With clearOld false,
// records are merged into s; a word that is already present is an
// error either way.
func (s *WordStats) Load(r io.Reader, clearOld bool) error {
	if clearOld {
		s.clear()
	}
	return kvrecords.NewReader(r).ForEach(func(key, value []byte) error {
		id, e := strconv.ParseInt(string(key), 10, 32)
		if e != nil || id < 0 {
			return fmt.Errorf("%w: %q", ErrBadWordKey, key)
		}
		word := int32(id)
		if s.HasWord(word) {
			return fmt.Errorf("%w: %d", ErrRepeatedWord, word)
		}
		h, e := hist.UnmarshalOrderedSparse(value, s.numTopics)
		if e != nil {
			return fmt.Errorf("parsing histogram of word %d: %w", word, e)
		}
		s.set(word, h)
		return nil
	})
}

// LoadAndMerge loads several word stats files, e.g. shards written by
// different trainers, into s.  Shards must not share words.
func (s *WordStats) LoadAndMerge(filenames []string) error {
	s.clear()
	for _, fn := range filenames {
		log.Infof("Loading word stats from %s", fn)
		f, e := os.Open(fn)
		if e != nil {
			return e
		}
		e = s.Load(f, false)
		f.Close()
		if e != nil {
			return fmt.Errorf("loading word stats from %s: %w", fn, e)
		}
	}
	return nil
}

func (s *WordStats) Save(w io.Writer) error {
	kw := kvrecords.NewWriter(w)
	if e := s.ForEach(func(word int32, h *hist.OrderedSparse) error {
		return kw.Write([]byte(strconv.Itoa(int(word))), hist.MarshalOrdered(h))
	}); e != nil {
		return e
	}
	return kw.Flush()
}

// AppendAsString writes one line per word:
//
//	word<TAB>topic:count topic:count ...
//
// Words are printed by their text if v is not empty, where ids out of v
// become UNKNOWN_<id>, or by their ids otherwise.
func (s *WordStats) AppendAsString(b *strings.Builder, v *Vocabulary) {
	s.ForEach(func(word int32, h *hist.OrderedSparse) error {
		if v != nil && v.Len() > 0 {
			b.WriteString(v.TokenOrUnknown(word))
		} else {
			b.WriteString(strconv.Itoa(int(word)))
		}
		b.WriteByte('\t')
		h.AppendAsString(b)
		b.WriteByte('\n')
		return nil
	})
}
