package gibbs

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// Cell is an occurrence of a word and the topic assigned to it.
type Cell struct {
	Word  int32
	Topic int32
}

// Assignments is what Document and ForeignDocument have in common: a
// sequence of cells and the ordered topic histogram counting them.
type Assignments interface {
	Len() int
	CellAt(i int) Cell
	Histogram() hist.Ordered
}

// Document is a bag of words with topic assignments, created per
// inference request.  Its topic histogram is updated in lock-step with
// cell topics by whoever mutates them.
type Document struct {
	cells []Cell
	hist  *hist.OrderedSparse
}

func NewDocument(numTopics int) *Document {
	return &Document{hist: hist.NewOrderedSparse(numTopics)}
}

// ParseFromTokens keeps tokens that are both in vocab and in model,
// and assigns each of them a topic uniformly drawn from rng.
func ParseFromTokens(tokens []string, vocab *Vocabulary, model *Model,
	rng *rand.Rand) *Document {
	numTopics := model.NumTopics()
	d := &Document{cells: make([]Cell, 0, len(tokens))}
	for _, token := range tokens {
		if id := vocab.Id(token); id >= 0 && model.HasWord(id) {
			d.cells = append(d.cells, Cell{Word: id})
		}
	}
	reserve := len(d.cells)
	if reserve > numTopics {
		reserve = numTopics
	}
	d.hist = hist.NewOrderedSparseAndReserve(numTopics, reserve)
	for i := range d.cells {
		topic := rng.Intn(numTopics)
		d.cells[i].Topic = int32(topic)
		d.hist.Inc(topic, 1)
	}
	return d
}

// Len returns the number of cells.
func (d *Document) Len() int {
	return len(d.cells)
}

// Length returns the sum of the topic histogram, which equals Len()
// whenever the histogram is in sync with the cells.
func (d *Document) Length() int {
	return histLength(d.hist)
}

func (d *Document) NumTopics() int {
	return d.hist.NumTopics()
}

func (d *Document) CellAt(i int) Cell {
	return d.cells[i]
}

// Append adds a word with an assigned topic and counts it.
func (d *Document) Append(word, topic int32) {
	d.cells = append(d.cells, Cell{word, topic})
	d.hist.Inc(int(topic), 1)
}

func (d *Document) Histogram() hist.Ordered {
	return d.hist
}

func (d *Document) TopicHist() *hist.OrderedSparse {
	return d.hist
}

func (d *Document) IncrementTopicHistogram(topic, count int) {
	d.hist.Inc(topic, count)
}

func (d *Document) DecrementTopicHistogram(topic, count int) {
	d.hist.Dec(topic, count)
}

func (d *Document) TopicHistogramValue(topic int) int64 {
	return d.hist.At(topic)
}

// CalculateTopicHistogram rebuilds the histogram from the cells.
func (d *Document) CalculateTopicHistogram() {
	d.hist = hist.NewOrderedSparse(d.hist.NumTopics())
	for _, c := range d.cells {
		d.hist.Inc(int(c.Topic), 1)
	}
}

func (d *Document) Iterator() *DocumentIterator {
	return &DocumentIterator{cells: d.cells}
}

// String returns words of the document, each followed by a tab.
func (d *Document) String(vocab *Vocabulary) string {
	return cellsString(d.cells, vocab)
}

// ForeignDocument wraps cells and a histogram buffer allocated by
// another producer, e.g. an external trainer.  It mutates both in place
// and never reallocates them.
type ForeignDocument struct {
	cells []Cell
	hist  *hist.OrderedSparseView
}

func NewForeignDocument(cells []Cell, buf *hist.Buffer, numTopics int) *ForeignDocument {
	for i, c := range cells {
		if c.Topic < 0 || int(c.Topic) >= numTopics {
			panic(fmt.Sprintf("cell %d has topic %d, out of [0, %d)", i, c.Topic, numTopics))
		}
	}
	return &ForeignDocument{cells: cells, hist: hist.NewOrderedSparseView(buf, numTopics)}
}

func (d *ForeignDocument) Len() int                { return len(d.cells) }
func (d *ForeignDocument) Length() int             { return histLength(d.hist) }
func (d *ForeignDocument) NumTopics() int          { return d.hist.NumTopics() }
func (d *ForeignDocument) CellAt(i int) Cell       { return d.cells[i] }
func (d *ForeignDocument) Histogram() hist.Ordered { return d.hist }

// CalculateTopicHistogram counts the cell topics into the borrowed
// histogram, which is expected to be empty.
func (d *ForeignDocument) CalculateTopicHistogram() {
	for _, c := range d.cells {
		d.hist.Inc(int(c.Topic), 1)
	}
}

func (d *ForeignDocument) Iterator() *DocumentIterator {
	return &DocumentIterator{cells: d.cells}
}

func (d *ForeignDocument) String(vocab *Vocabulary) string {
	return cellsString(d.cells, vocab)
}

// DocumentIterator visits cells in order and may reassign their topics.
// Callers must keep the document histogram in sync.
type DocumentIterator struct {
	cells []Cell
	i     int
}

func (it *DocumentIterator) Done() bool {
	return it.i >= len(it.cells)
}

func (it *DocumentIterator) Next() {
	if it.Done() {
		panic("Next on a finished iterator")
	}
	it.i++
}

func (it *DocumentIterator) Word() int32 {
	return it.cells[it.i].Word
}

func (it *DocumentIterator) Topic() int32 {
	return it.cells[it.i].Topic
}

func (it *DocumentIterator) SetTopic(topic int32) {
	it.cells[it.i].Topic = topic
}

func histLength(h hist.Ordered) int {
	n := 0
	for i := 0; i < h.Len(); i++ {
		n += int(h.Count(i))
	}
	return n
}

func cellsString(cells []Cell, vocab *Vocabulary) string {
	var s strings.Builder
	for _, c := range cells {
		s.WriteString(vocab.TokenOrUnknown(c.Word))
		s.WriteByte('\t')
	}
	return s.String()
}
