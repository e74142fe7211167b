package hist

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderedSparseInc(t *testing.T) {
	m := NewOrderedSparse(4)
	if m.Len() != 0 {
		t.Errorf("Expecting m.Len() = 0, got %d", m.Len())
	}

	m = NewOrderedSparseAndReserve(4, 1)
	if m.Len() != 0 {
		t.Errorf("Expecting m.Len() = 0, got %d", m.Len())
	}
	if m.Cap() != 1 {
		t.Errorf("Expecting m.Cap() = 1, got %d", m.Cap())
	}
}

func TestOrderedSparseAssign(t *testing.T) {
	o := NewOrderedSparse(4).Assign(Sparse{})
	str := "[ ]"
	if fmt.Sprint(o) != str {
		t.Errorf("Expected %s, got %v", str, o)
	}

	o = NewOrderedSparse(4).Assign(Sparse{0: 7, 1: 2, 2: 1, 3: 10})
	str = "[ 3:10 0:7 1:2 2:1 ]"
	if fmt.Sprint(o) != str {
		t.Errorf("Expected %s, got %v", str, o)
	}
}

func TestOrderedSparseFromDense(t *testing.T) {
	o := NewOrderedSparseFromDense(Dense{1, 0, 5, 2})
	assert.Equal(t, "[ 2:5 3:2 0:1 ]", fmt.Sprint(o))
	assert.Equal(t, 4, o.NumTopics())
}

func TestOrderedSparseCount(t *testing.T) {
	m := NewOrderedSparse(3).Assign(Sparse{1: 2, 2: 1})
	if m.At(1) != 2 {
		t.Errorf("Expecting m.At(1) = 2, got %d", m.At(1))
	}
	if m.At(2) != 1 {
		t.Errorf("Expecting m.At(2) = 1, got %d", m.At(2))
	}
	if m.At(0) != 0 {
		t.Errorf("Expecting m.At(0) = 0, got %d", m.At(2))
	}
}

func TestOrderedSparseInc(t *testing.T) {
	// Test with various amount of reservation.
	for reserved := 0; reserved < 3; reserved++ {
		nonzero := 2*reserved + 1
		m := NewOrderedSparseAndReserve(nonzero, reserved)
		for t := 0; t < nonzero; t++ {
			m.Inc(t, t+1)
			m.Inc(t, t+1) // increase an existing non-zero
		}
		for i := 0; i < nonzero; i++ {
			if m.Topics[i] != int32(nonzero-1-i) {
				t.Errorf("Expecting m.Topics[%d] = %d, got %d",
					i, nonzero-1-i, m.Topics[i])
			}
			if m.Counts[i] != 2*int64(nonzero-i) {
				t.Errorf("Expecting m.Counts[%d] = %d, got %d",
					i, nonzero-i, m.Counts[i])
			}
		}
	}
}

func TestOrderedSparseCapacityDoublesUpToNumTopics(t *testing.T) {
	m := NewOrderedSparse(5)
	caps := []int{}
	for topic := 0; topic < 5; topic++ {
		m.Inc(topic, 1)
		caps = append(caps, m.Cap())
	}
	assert.Equal(t, []int{1, 2, 4, 4, 5}, caps)
}

func TestOrderedSparseDec(t *testing.T) {
	m := NewOrderedSparse(2).Assign(Sparse{0: 1, 1: 2})
	m.Dec(1, 1)
	if fmt.Sprint(m) != "[ 1:1 0:1 ]" {
		t.Errorf("Expecting m = [ 1:1 0:1 ], got %v", m)
	}
	m.Dec(0, 1)
	if fmt.Sprint(m) != "[ 1:1 ]" {
		t.Errorf("Expecting m = [ 1:1 ], got %v", m)
	}
	m.Dec(1, 1)
	if fmt.Sprint(m) != "[ ]" {
		t.Errorf("Expecting m = [ ], got %v", m)
	}

	// In another order of non-zeros.
	m = NewOrderedSparse(2).Assign(Sparse{0: 1, 1: 2})
	m.Dec(1, 2)
	m.Dec(0, 1)
	if fmt.Sprint(m) != "[ ]" {
		t.Errorf("Expecting m = [ ], got %v", m)
	}
}

func TestOrderedSparseRejectsInvalidDeltas(t *testing.T) {
	m := NewOrderedSparse(3)
	m.Inc(1, 2)
	assert.Panics(t, func() { m.Inc(3, 1) })
	assert.Panics(t, func() { m.Inc(-1, 1) })
	assert.Panics(t, func() { m.Inc(0, 0) })
	assert.Panics(t, func() { m.Dec(0, 1) })
	assert.Panics(t, func() { m.Dec(1, 3) })
	assert.Equal(t, "[ 1:2 ]", fmt.Sprint(m))
}

func TestOrderedSparseStaysOrderedUnderRandomUpdates(t *testing.T) {
	const numTopics = 17
	rng := rand.New(rand.NewSource(42))
	m := NewOrderedSparse(numTopics)
	ref := NewDense(numTopics)
	for i := 0; i < 5000; i++ {
		topic := rng.Intn(numTopics)
		if ref[topic] > 0 && rng.Intn(2) == 0 {
			c := 1 + rng.Intn(int(ref[topic]))
			m.Dec(topic, c)
			ref.Dec(topic, c)
		} else {
			c := 1 + rng.Intn(3)
			m.Inc(topic, c)
			ref.Inc(topic, c)
		}
		require.True(t, m.IsOrdered(), "after step %d: %v", i, m)
	}
	for topic := 0; topic < numTopics; topic++ {
		assert.Equal(t, ref[topic], m.At(topic))
	}
	assert.LessOrEqual(t, m.Cap(), numTopics)
	for i := 0; i < m.Len(); i++ {
		assert.Greater(t, m.Count(i), int64(0))
	}
}

func TestOrderedSparseAppendAsString(t *testing.T) {
	m := NewOrderedSparse(4).Assign(Sparse{2: 3, 0: 1})
	var s strings.Builder
	m.AppendAsString(&s)
	assert.Equal(t, "2:3 0:1 ", s.String())
}

func TestOrderedSparseClone(t *testing.T) {
	str := "[ 2:8 3:5 1:2 0:1 ]"
	o := NewOrderedSparse(4).Assign(Sparse{0: 1, 1: 2, 3: 5, 2: 8})
	c := o.Clone()
	if fmt.Sprint(c) != str {
		t.Errorf("Expected %s, got %v", str, c)
	}

	o = NewOrderedSparse(4)
	c = o.Clone()
	if c.Len() != 0 {
		t.Errorf("Expected %d, got %d", 0, c.Len())
	}
}
