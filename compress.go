package rdata

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// Compression names the container compression of an RData file.
// R's save() writes gzip by default and can also write bzip2 and xz.
type Compression string

const (
	// CompressAuto keeps whatever compression the file was read with.
	CompressAuto  Compression = "auto"
	CompressNone  Compression = "none"
	CompressGzip  Compression = "gzip"
	CompressBzip2 Compression = "bzip2"
	CompressXz    Compression = "xz"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
)

// ParseCompression converts a configuration value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case CompressAuto, CompressNone, CompressGzip, CompressBzip2, CompressXz:
		return c, nil
	case "":
		return CompressAuto, nil
	}
	return "", fmt.Errorf("unknown compression %q", s)
}

// decompress sniffs the magic bytes of r and returns a reader for the
// uncompressed stream.
func decompress(r io.Reader) (io.Reader, Compression, error) {

	br := bufio.NewReader(r)
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, "", err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", err
		}
		return gz, CompressGzip, nil
	case bytes.HasPrefix(head, bzip2Magic):
		return bzip2.NewReader(br), CompressBzip2, nil
	case bytes.HasPrefix(head, xzMagic):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, "", err
		}
		return xr, CompressXz, nil
	}

	return br, CompressNone, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// compressor wraps w so that everything written to the returned
// writer is compressed.  Close must be called to flush the stream; it
// does not close w.
func compressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressNone:
		return nopWriteCloser{w}, nil
	case CompressGzip, CompressAuto, "":
		return gzip.NewWriter(w), nil
	case CompressXz:
		return xz.NewWriter(w)
	case CompressBzip2:
		return nil, fmt.Errorf("writing bzip2 compressed files is not supported: %w", ErrUnsupportedFormat)
	}
	return nil, fmt.Errorf("unknown compression %q", c)
}
