package hist

import (
	"fmt"
	"math"
	"sort"
)

// Sparse is a histogram keyed by any non-negative integer.  Besides
// topic histograms, it holds statistics like the number of documents
// of each length.
type Sparse map[int32]int64

func NewSparse() Sparse {
	return make(Sparse)
}

func (s Sparse) Clear() {
	for k := range s {
		delete(s, k)
	}
}

func (s Sparse) Len() int {
	return len(s)
}

func (s Sparse) At(topic int) int64 {
	return s[int32(topic)]
}

// MaxKey returns the largest key, or -1 if s is empty.
func (s Sparse) MaxKey() int {
	m := -1
	for k := range s {
		if int(k) > m {
			m = int(k)
		}
	}
	return m
}

// Keys returns the keys in ascending order.
func (s Sparse) Keys() []int32 {
	keys := make([]int32, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s Sparse) Inc(key, count int) {
	if key < 0 || count <= 0 {
		panic(fmt.Sprintf("Inc(key=%d, count=%d): need key >= 0 and count > 0",
			key, count))
	}
	k := int32(key)
	if s[k] > math.MaxInt64-int64(count) {
		panic(fmt.Sprintf("s[%d] = %d overflow", key, s[k]))
	}
	s[k] += int64(count)
}

// Dec removes key when its count drops to zero.
func (s Sparse) Dec(key, count int) {
	k := int32(key)
	if count <= 0 || s[k] < int64(count) {
		panic(fmt.Sprintf("Dec(key=%d, count=%d) of count %d", key, count, s[k]))
	}
	s[k] -= int64(count)
	if s[k] == 0 {
		delete(s, k)
	}
}

// ForEach visits keys in ascending order.
func (s Sparse) ForEach(p func(key int, count int64) error) error {
	for _, k := range s.Keys() {
		if e := p(int(k), s[k]); e != nil {
			return e
		}
	}
	return nil
}

// Dense returns counts indexed by key, of length MaxKey()+1.
func (s Sparse) Dense() []int64 {
	d := make([]int64, s.MaxKey()+1)
	for k, v := range s {
		d[k] = v
	}
	return d
}

func (s Sparse) Clone() Hist {
	n := make(Sparse, len(s))
	for k, v := range s {
		n[k] = v
	}
	return n
}
