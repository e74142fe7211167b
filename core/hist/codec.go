package hist

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Histograms are persisted as protocol buffer messages:
//
//	message SparseTopicHistogram {
//	  message NonZero {
//	    int32 topic = 1;
//	    int64 count = 2;
//	  }
//	  repeated NonZero nonzero = 1;
//	}
//
//	message DenseTopicHistogram {
//	  repeated int64 count = 1 [packed = true];
//	}
const (
	sparseNonZeroField = 1
	nonZeroTopicField  = 1
	nonZeroCountField  = 2
	denseCountField    = 1
)

var ErrMalformed = errors.New("hist: malformed histogram message")

// MarshalOrdered encodes the non-zeros of h in their current order.  h
// must be ordered.
func MarshalOrdered(h Ordered) []byte {
	var b []byte
	for i := 0; i < h.Len(); i++ {
		if i > 0 && h.Count(i-1) < h.Count(i) {
			panic(fmt.Sprintf("histogram is not ordered at %d", i))
		}
		var nz []byte
		nz = protowire.AppendTag(nz, nonZeroTopicField, protowire.VarintType)
		nz = protowire.AppendVarint(nz, uint64(int64(h.Topic(i))))
		nz = protowire.AppendTag(nz, nonZeroCountField, protowire.VarintType)
		nz = protowire.AppendVarint(nz, uint64(h.Count(i)))

		b = protowire.AppendTag(b, sparseNonZeroField, protowire.BytesType)
		b = protowire.AppendBytes(b, nz)
	}
	return b
}

// UnmarshalOrderedSparse decodes a SparseTopicHistogram message into a
// new OrderedSparse of numTopics topics.  Non-zeros are applied one by
// one through Inc, so the order in data does not matter, but a topic
// may appear only once.
func UnmarshalOrderedSparse(data []byte, numTopics int) (*OrderedSparse, error) {
	o := NewOrderedSparse(numTopics)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if num != sparseNonZeroField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}
		nz, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		topic, count, e := unmarshalNonZero(nz)
		if e != nil {
			return nil, e
		}
		if topic < 0 || topic >= int64(numTopics) || count <= 0 {
			return nil, fmt.Errorf("%w: non-zero %d:%d with %d topics",
				ErrMalformed, topic, count, numTopics)
		}
		if o.At(int(topic)) > 0 {
			return nil, fmt.Errorf("%w: repeated topic %d", ErrMalformed, topic)
		}
		if count > math.MaxInt {
			return nil, fmt.Errorf("%w: count %d of topic %d too large",
				ErrMalformed, count, topic)
		}
		o.Inc(int(topic), int(count))
	}
	return o, nil
}

func unmarshalNonZero(b []byte) (topic, count int64, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, 0, protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.VarintType ||
			(num != nonZeroTopicField && num != nonZeroCountField) {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, 0, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, 0, protowire.ParseError(n)
		}
		b = b[n:]
		if num == nonZeroTopicField {
			topic = int64(int32(v))
		} else {
			count = int64(v)
		}
	}
	return topic, count, nil
}

// MarshalDense encodes d as a DenseTopicHistogram message.
func MarshalDense(d Dense) []byte {
	if len(d) == 0 {
		return nil
	}
	var packed []byte
	for _, c := range d {
		packed = protowire.AppendVarint(packed, uint64(c))
	}
	b := protowire.AppendTag(nil, denseCountField, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// UnmarshalDense decodes a DenseTopicHistogram message.  Both packed
// and unpacked encodings of the counts are accepted.
func UnmarshalDense(data []byte) (Dense, error) {
	d := Dense{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == denseCountField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return nil, protowire.ParseError(m)
				}
				packed = packed[m:]
				d = append(d, int64(v))
			}
		case num == denseCountField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			d = append(d, int64(v))
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	for topic, c := range d {
		if c < 0 {
			return nil, fmt.Errorf("%w: negative count %d of topic %d",
				ErrMalformed, c, topic)
		}
	}
	return d, nil
}
