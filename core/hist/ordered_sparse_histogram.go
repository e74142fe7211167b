package hist

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Buffer holds the non-zeros of an ordered histogram in two parallel
// slices.  Counts is in descending order.  A Buffer may be allocated
// by another producer, e.g. an external trainer, and wrapped by an
// OrderedSparseView.
type Buffer struct {
	Topics []int32
	Counts []int64
}

// NewBuffer allocates a Buffer with room for capacity non-zeros.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		Topics: make([]int32, 0, capacity),
		Counts: make([]int64, 0, capacity)}
}

func (b *Buffer) find(topic int32) int {
	i := 0
	for i < len(b.Topics) && b.Topics[i] != topic {
		i++
	}
	return i
}

func (b *Buffer) at(topic int) int64 {
	if i := b.find(int32(topic)); i < len(b.Topics) {
		return b.Counts[i]
	}
	return 0
}

// add increases the count at position i and moves the entry toward
// the front until Counts is ordered again.
func (b *Buffer) add(i int, count int64) {
	if b.Counts[i] > math.MaxInt64-count {
		panic(fmt.Sprintf("count of topic %d overflow", b.Topics[i]))
	}
	b.Counts[i] += count

	t, c := b.Topics[i], b.Counts[i]
	for i > 0 && c > b.Counts[i-1] {
		b.Topics[i], b.Counts[i] = b.Topics[i-1], b.Counts[i-1]
		i--
	}
	b.Topics[i] = t
	b.Counts[i] = c
}

// sub decreases the count of topic, moves the entry toward the back
// and drops it once it reaches zero.  It never reallocates.
func (b *Buffer) sub(topic int32, count int64) {
	i := b.find(topic)
	if i >= len(b.Topics) {
		panic(fmt.Sprintf("topic %d does not exist", topic))
	}
	if b.Counts[i] < count {
		panic(fmt.Sprintf("existing count (%d) < delta count (%d)",
			b.Counts[i], count))
	}
	b.Counts[i] -= count

	c := b.Counts[i]
	for i+1 < len(b.Topics) && c < b.Counts[i+1] {
		b.Topics[i], b.Counts[i] = b.Topics[i+1], b.Counts[i+1]
		i++
	}
	b.Topics[i] = topic
	b.Counts[i] = c

	if c == 0 {
		b.Topics = b.Topics[:i]
		b.Counts = b.Counts[:i]
	}
}

func (b *Buffer) isOrdered() bool {
	for i := 1; i < len(b.Counts); i++ {
		if b.Counts[i] > b.Counts[i-1] {
			return false
		}
	}
	return true
}

func (b *Buffer) forEach(p func(topic int, count int64) error) error {
	for i := 0; i < len(b.Topics); i++ {
		if e := p(int(b.Topics[i]), b.Counts[i]); e != nil {
			return e
		}
	}
	return nil
}

func (b *Buffer) appendAsString(s *strings.Builder) {
	for i, topic := range b.Topics {
		fmt.Fprintf(s, "%d:%d ", topic, b.Counts[i])
	}
}

func checkDelta(topic, count, numTopics int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if topic >= numTopics {
		panic(fmt.Sprintf("topic (%d) >= numTopics (%d)", topic, numTopics))
	}
	if count <= 0 {
		panic(fmt.Sprintf("count (%d) <= 0", count))
	}
}

// OrderedSparse represent a histogram using two arrays, Topics and
// Counts, where Counts is in descending order.  This property can be
// used to accelerate the Gibbs sampling of documents, so it
// represents document topic-histograms as well as word
// topic-histograms of a model.
//
// OrderedSparse owns its storage.  The capacity grows by doubling,
// starting from 1, and never exceeds NumTopics().
type OrderedSparse struct {
	Buffer
	numTopics int
}

func NewOrderedSparse(numTopics int) *OrderedSparse {
	if numTopics < 0 {
		panic(fmt.Sprintf("numTopics (%d) < 0", numTopics))
	}
	return &OrderedSparse{numTopics: numTopics}
}

// In some cases, we know the maximum number of non-zeros in the
// histogram.  For example, when we use OrderedSparse as document
// topic histogram, the maximum number of non-zeros is min(numTopics,
// docLength).  In such cases, we can reserve capacity in order to
// reduce the cost of memory re-allocation in Inc.
func NewOrderedSparseAndReserve(numTopics, capacity int) *OrderedSparse {
	o := NewOrderedSparse(numTopics)
	o.Reserve(capacity)
	return o
}

// NewOrderedSparseFromDense converts a dense histogram.  The result
// has d.Len() topics.
func NewOrderedSparseFromDense(d Dense) *OrderedSparse {
	o := NewOrderedSparse(d.Len())
	for topic, count := range d {
		if count > 0 {
			o.Inc(topic, int(count))
		}
	}
	return o
}

func (o *OrderedSparse) NumTopics() int {
	return o.numTopics
}

// Len makes OrderedSparse compatible with sort.Interface.
func (o *OrderedSparse) Len() int {
	return len(o.Topics)
}

// Cap returns the number of non-zeros storable without reallocation.
func (o *OrderedSparse) Cap() int {
	return cap(o.Topics)
}

// Less allows package sort to sort elements in OrderedSparse
// descreasing order.
func (o *OrderedSparse) Less(i, j int) bool {
	return o.Counts[i] > o.Counts[j] ||
		(o.Counts[i] == o.Counts[j] &&
			o.Topics[i] < o.Topics[j])
}

// Swap makes OrderedSparse compatible with interface
// sort.Interface.
func (o *OrderedSparse) Swap(i, j int) {
	o.Topics[i], o.Topics[j] = o.Topics[j], o.Topics[i]
	o.Counts[i], o.Counts[j] = o.Counts[j], o.Counts[i]
}

// Reserve makes sure that at least capacity non-zeros fit without
// reallocation.  capacity is clipped to NumTopics().
func (o *OrderedSparse) Reserve(capacity int) {
	if capacity > o.numTopics {
		capacity = o.numTopics
	}
	if capacity <= cap(o.Topics) {
		return
	}
	topics := make([]int32, len(o.Topics), capacity)
	counts := make([]int64, len(o.Counts), capacity)
	copy(topics, o.Topics)
	copy(counts, o.Counts)
	o.Topics, o.Counts = topics, counts
}

func (o *OrderedSparse) increaseCapacity() {
	c := 1
	if cap(o.Topics) > 0 {
		c = 2 * cap(o.Topics)
	}
	o.Reserve(c)
}

// Assign clears and recreates an OrderedSparse variable, and makes it
// represents s.
func (o *OrderedSparse) Assign(s Hist) *OrderedSparse {
	o.Topics = make([]int32, 0, s.Len())
	o.Counts = make([]int64, 0, s.Len())
	s.ForEach(func(topic int, count int64) error {
		if topic < 0 || topic >= o.numTopics {
			panic(fmt.Sprintf("topic (%d) out of range [0, %d)", topic, o.numTopics))
		}
		if count > 0 {
			o.Topics = append(o.Topics, int32(topic))
			o.Counts = append(o.Counts, count)
		}
		return nil
	})
	sort.Sort(o)
	return o
}

// String prints an OrderedSparse variable the same format as a slice.
func (o OrderedSparse) String() string {
	var s strings.Builder
	s.WriteString("[ ")
	o.appendAsString(&s)
	s.WriteString("]")
	return s.String()
}

// AppendAsString writes non-zeros as "topic:count " pairs.
func (o *OrderedSparse) AppendAsString(s *strings.Builder) {
	o.appendAsString(s)
}

// At returns the count of a topic.
func (o *OrderedSparse) At(topic int) int64 {
	return o.at(topic)
}

func (o *OrderedSparse) Topic(i int) int32 { return o.Topics[i] }
func (o *OrderedSparse) Count(i int) int64 { return o.Counts[i] }

func (o *OrderedSparse) IsOrdered() bool {
	return o.isOrdered()
}

// Inc increases the count of a topic.  It reallocates
// OrderedSparse.Topics and OrderedSparse.Counts if necessary.
func (o *OrderedSparse) Inc(topic, count int) {
	checkDelta(topic, count, o.numTopics)
	i := o.find(int32(topic))
	if i == len(o.Topics) {
		if len(o.Topics) == cap(o.Topics) {
			o.increaseCapacity()
		}
		o.Topics = append(o.Topics, int32(topic))
		o.Counts = append(o.Counts, 0)
	}
	o.add(i, int64(count))
}

// Dec decreases the count of a topic.  It might reslice
// OrderedSparse.Topics and OrderedSparse.Counts to reduce their
// len(), but it does not reallocate memory.
func (o *OrderedSparse) Dec(topic, count int) {
	checkDelta(topic, count, o.numTopics)
	o.sub(int32(topic), int64(count))
}

// OrderedSparse.ForEach goes over elements in the order of descending count.
func (o *OrderedSparse) ForEach(p func(topic int, count int64) error) error {
	return o.forEach(p)
}

// Clone creates a new OrderedSparse variable, makes it represents o.
func (o *OrderedSparse) Clone() Hist {
	n := NewOrderedSparse(o.numTopics)
	n.Topics = make([]int32, len(o.Topics))
	n.Counts = make([]int64, len(o.Counts))
	copy(n.Topics, o.Topics)
	copy(n.Counts, o.Counts)
	return n
}
