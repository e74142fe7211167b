package hist

import (
	"fmt"
	"strings"
)

// OrderedSparseView is an ordered histogram over a Buffer allocated by
// somebody else.  It reads and mutates the buffer in place and never
// reallocates it, so Inc panics if a new non-zero does not fit into
// cap(buf.Topics).
type OrderedSparseView struct {
	buf       *Buffer
	numTopics int
}

// NewOrderedSparseView wraps buf without taking it over.  It panics if
// buf is not ordered or its slices disagree in length.
func NewOrderedSparseView(buf *Buffer, numTopics int) *OrderedSparseView {
	if len(buf.Topics) != len(buf.Counts) {
		panic(fmt.Sprintf("len(Topics) (%d) != len(Counts) (%d)",
			len(buf.Topics), len(buf.Counts)))
	}
	if len(buf.Topics) > numTopics {
		panic(fmt.Sprintf("%d non-zeros exceed numTopics (%d)",
			len(buf.Topics), numTopics))
	}
	if !buf.isOrdered() {
		panic("buffer is not ordered by descending count")
	}
	return &OrderedSparseView{buf: buf, numTopics: numTopics}
}

// Buffer returns the wrapped buffer.
func (v *OrderedSparseView) Buffer() *Buffer    { return v.buf }
func (v *OrderedSparseView) NumTopics() int     { return v.numTopics }
func (v *OrderedSparseView) Len() int           { return len(v.buf.Topics) }
func (v *OrderedSparseView) At(topic int) int64 { return v.buf.at(topic) }
func (v *OrderedSparseView) Topic(i int) int32  { return v.buf.Topics[i] }
func (v *OrderedSparseView) Count(i int) int64  { return v.buf.Counts[i] }
func (v *OrderedSparseView) IsOrdered() bool    { return v.buf.isOrdered() }

func (v *OrderedSparseView) Inc(topic, count int) {
	checkDelta(topic, count, v.numTopics)
	b := v.buf
	i := b.find(int32(topic))
	if i == len(b.Topics) {
		if len(b.Topics) == cap(b.Topics) || len(b.Counts) == cap(b.Counts) {
			panic(fmt.Sprintf("borrowed buffer is full (cap %d)", cap(b.Topics)))
		}
		b.Topics = append(b.Topics, int32(topic))
		b.Counts = append(b.Counts, 0)
	}
	b.add(i, int64(count))
}

func (v *OrderedSparseView) Dec(topic, count int) {
	checkDelta(topic, count, v.numTopics)
	v.buf.sub(int32(topic), int64(count))
}

func (v *OrderedSparseView) ForEach(p func(topic int, count int64) error) error {
	return v.buf.forEach(p)
}

// Clone copies the non-zeros into an OrderedSparse that owns its
// storage.
func (v *OrderedSparseView) Clone() Hist {
	n := NewOrderedSparse(v.numTopics)
	n.Topics = append([]int32(nil), v.buf.Topics...)
	n.Counts = append([]int64(nil), v.buf.Counts...)
	return n
}

func (v *OrderedSparseView) String() string {
	var s strings.Builder
	s.WriteString("[ ")
	v.buf.appendAsString(&s)
	s.WriteString("]")
	return s.String()
}
