package gibbs

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
	"github.com/poseidon1214/Neptune-sub002/core/kvrecords"
)

var ErrEmptyGlobalStats = errors.New("gibbs: no global stats record")

// GlobalStats holds the corpus-wide topic histogram N(t).
type GlobalStats struct {
	Hist hist.Dense
}

func NewGlobalStats(numTopics int) *GlobalStats {
	return &GlobalStats{Hist: hist.NewDense(numTopics)}
}

func (g *GlobalStats) NumTopics() int {
	return g.Hist.Len()
}

// Load reads the single record written by Save.
func (g *GlobalStats) Load(r io.Reader) error {
	_, value, e := kvrecords.NewReader(r).Read()
	if e == io.EOF {
		return ErrEmptyGlobalStats
	}
	if e != nil {
		return e
	}
	d, e := hist.UnmarshalDense(value)
	if e != nil {
		return fmt.Errorf("parsing global stats: %w", e)
	}
	g.Hist = d
	return nil
}

func (g *GlobalStats) Save(w io.Writer) error {
	kw := kvrecords.NewWriter(w)
	if e := kw.Write([]byte(singleRecordKey), hist.MarshalDense(g.Hist)); e != nil {
		return e
	}
	return kw.Flush()
}

// AppendAsString writes "topic:count " for every topic, then a newline.
func (g *GlobalStats) AppendAsString(b *strings.Builder) {
	for topic, count := range g.Hist {
		fmt.Fprintf(b, "%d:%d ", topic, count)
	}
	b.WriteByte('\n')
}

func (g *GlobalStats) String() string {
	var b strings.Builder
	g.AppendAsString(&b)
	return b.String()
}
