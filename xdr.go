package rdata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding"
)

const (
	// Longest vector R can represent (R_XLEN_T_MAX).
	maxVectorLen = 1<<52 - 1

	chunkLen = 1 << 16
)

// sexpReader reads the primitive values of a serialization stream.
// XDR streams are big-endian, native binary streams ("B") are read as
// little-endian.
type sexpReader struct {
	r         io.Reader
	ByteOrder binary.ByteOrder

	// Back-reference table, filled as symbols and environments are
	// read.
	refs []*robj

	// Decoder for strings in the writer's native encoding, nil when
	// that is UTF-8.
	native encoding.Encoding

	buf [8]byte
}

func (sr *sexpReader) readInt() (int32, error) {
	if _, err := io.ReadFull(sr.r, sr.buf[0:4]); err != nil {
		return 0, truncated(err)
	}
	return int32(sr.ByteOrder.Uint32(sr.buf[0:4])), nil
}

func (sr *sexpReader) readDouble() (float64, error) {
	if _, err := io.ReadFull(sr.r, sr.buf[0:8]); err != nil {
		return 0, truncated(err)
	}
	return math.Float64frombits(sr.ByteOrder.Uint64(sr.buf[0:8])), nil
}

// readBytes reads n bytes.  Storage grows as the bytes arrive, so a
// corrupt length fails as a truncated file rather than as a huge
// allocation.
func (sr *sexpReader) readBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative byte count %d", n)
	}
	if n <= chunkLen {
		b := make([]byte, n)
		if _, err := io.ReadFull(sr.r, b); err != nil {
			return nil, truncated(err)
		}
		return b, nil
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, sr.r, int64(n)); err != nil {
		return nil, truncated(err)
	}
	return buf.Bytes(), nil
}

// readLength reads a vector length, including the two-word form
// used for long vectors.
func (sr *sexpReader) readLength() (int, error) {
	n, err := sr.readInt()
	if err != nil {
		return 0, err
	}
	if n >= 0 {
		return int(n), nil
	}
	if n != -1 {
		return 0, fmt.Errorf("negative vector length %d", n)
	}
	upper, err := sr.readInt()
	if err != nil {
		return 0, err
	}
	lower, err := sr.readInt()
	if err != nil {
		return 0, err
	}
	n64 := uint64(uint32(upper))<<32 | uint64(uint32(lower))
	if n64 > maxVectorLen {
		return 0, fmt.Errorf("vector length %d out of range", n64)
	}
	return int(n64), nil
}

// initCap is the capacity to allocate up front for a vector of length
// n.  Longer vectors grow as their elements are read.
func initCap(n int) int {
	if n > chunkLen {
		return chunkLen
	}
	return n
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New("rdata file appears to be truncated")
	}
	return err
}

// sexpWriter writes XDR primitives.  The first error is kept and
// all later writes are skipped.
type sexpWriter struct {
	w   *bufio.Writer
	err error

	// Reference indices of the symbols and environments written so
	// far, starting at 1.
	refs map[interface{}]int

	buf [8]byte
}

func newSexpWriter(w io.Writer) *sexpWriter {
	return &sexpWriter{
		w:    bufio.NewWriter(w),
		refs: make(map[interface{}]int),
	}
}

func (sw *sexpWriter) write(b []byte) {
	if sw.err != nil {
		return
	}
	_, sw.err = sw.w.Write(b)
}

func (sw *sexpWriter) writeInt(v int32) {
	binary.BigEndian.PutUint32(sw.buf[0:4], uint32(v))
	sw.write(sw.buf[0:4])
}

func (sw *sexpWriter) writeDouble(v float64) {
	binary.BigEndian.PutUint64(sw.buf[0:8], math.Float64bits(v))
	sw.write(sw.buf[0:8])
}

func (sw *sexpWriter) writeLength(n int) {
	if n <= math.MaxInt32 {
		sw.writeInt(int32(n))
		return
	}
	sw.writeInt(-1)
	sw.writeInt(int32(uint64(n) >> 32))
	sw.writeInt(int32(uint32(n)))
}

// addRef registers key and reports the index it was given.  If key
// was already registered the existing index is returned with false.
func (sw *sexpWriter) addRef(key interface{}) (int, bool) {
	if i, ok := sw.refs[key]; ok {
		return i, false
	}
	i := len(sw.refs) + 1
	sw.refs[key] = i
	return i, true
}

func (sw *sexpWriter) writeRef(i int) {
	if i <= math.MaxInt32>>8 {
		sw.writeInt(int32(i<<8) | int32(refSxp))
		return
	}
	sw.writeInt(int32(refSxp))
	sw.writeInt(int32(i))
}

func (sw *sexpWriter) flush() error {
	if sw.err != nil {
		return sw.err
	}
	return sw.w.Flush()
}
