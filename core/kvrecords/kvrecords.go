// Package kvrecords reads and writes streams of length-prefixed
// key/value records.  Each record is
//
//	int32 key_len | key | int32 value_len | value
//
// with lengths in native byte order and no padding.  Model files are
// made of such records.
package kvrecords

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var ErrNegativeLength = errors.New("kvrecords: negative record length")

type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next record.  It returns io.EOF only if the stream
// ends cleanly before a record starts.  A record cut short yields an
// error wrapping io.ErrUnexpectedEOF.
func (r *Reader) Read() (key, value []byte, err error) {
	keyLen, e := r.readLen()
	if e == io.EOF {
		return nil, nil, io.EOF
	}
	if e != nil {
		return nil, nil, fmt.Errorf("reading key length: %w", e)
	}
	if key, e = r.readBytes(keyLen); e != nil {
		return nil, nil, fmt.Errorf("reading key of %d bytes: %w", keyLen, e)
	}

	valueLen, e := r.readLen()
	if e != nil {
		return nil, nil, fmt.Errorf("reading value length of key %q: %w", key, unexpected(e))
	}
	if value, e = r.readBytes(valueLen); e != nil {
		return nil, nil, fmt.Errorf("reading value of key %q: %w", key, e)
	}
	return key, value, nil
}

// ForEach calls p for every remaining record and stops at the first
// error.  A clean end of stream is not an error.
func (r *Reader) ForEach(p func(key, value []byte) error) error {
	for {
		k, v, e := r.Read()
		if e == io.EOF {
			return nil
		}
		if e != nil {
			return e
		}
		if e := p(k, v); e != nil {
			return e
		}
	}
}

func (r *Reader) readLen() (int, error) {
	var n int32
	var buf [4]byte
	if _, e := io.ReadFull(r.r, buf[:]); e != nil {
		return 0, e
	}
	n = int32(binary.NativeEndian.Uint32(buf[:]))
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeLength, n)
	}
	return int(n), nil
}

// readBytes grows its buffer with the data actually read, so a corrupt
// length does not allocate up to 2GB before failing.
func (r *Reader) readBytes(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	if _, e := io.CopyN(&buf, r.r, int64(n)); e != nil {
		return nil, unexpected(e)
	}
	return buf.Bytes(), nil
}

func unexpected(e error) error {
	if e == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return e
}

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(key, value []byte) error {
	if e := w.writeLen(len(key)); e != nil {
		return fmt.Errorf("writing key length: %w", e)
	}
	if _, e := w.w.Write(key); e != nil {
		return fmt.Errorf("writing key: %w", e)
	}
	if e := w.writeLen(len(value)); e != nil {
		return fmt.Errorf("writing value length: %w", e)
	}
	if _, e := w.w.Write(value); e != nil {
		return fmt.Errorf("writing value: %w", e)
	}
	return nil
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeLen(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("record field of %d bytes too large", n)
	}
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(int32(n)))
	_, e := w.w.Write(buf[:])
	return e
}
