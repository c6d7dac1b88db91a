package csvio

// streaming.go wraps upload readers so CSV parsing never needs the whole
// file in memory: the BOM is skipped, invalid UTF-8 is replaced on the fly,
// and bytes are counted for progress reporting.

import (
	"bufio"
	"io"
	"sync/atomic"
	"unicode/utf8"
)

// WrapForStreaming applies BOM skipping and UTF-8 sanitization in the
// correct order for feeding a csv.Reader.
func WrapForStreaming(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}

// BOMSkippingReader removes a leading UTF-8 BOM (0xEF 0xBB 0xBF), which
// Windows tools commonly prepend.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader; the BOM check happens on the first call.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.br.Peek(3)
		if err == nil && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
			if _, err := b.br.Discard(3); err != nil {
				return 0, err
			}
		}
	}
	return b.br.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' as data streams
// through, holding back at most one incomplete multi-byte sequence between
// reads so sequences split across read boundaries survive intact.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place, replacing invalid bytes with '?'.
// Unless atEOF, an incomplete trailing sequence is saved for the next read.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && read+size >= len(data) && incompleteRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			// '?' keeps the output the same length; the replacement
			// character would expand it mid-stream.
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// allASCII is the fast path; most production CSVs are pure ASCII.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// incompleteRune reports whether data could be the prefix of a multi-byte
// sequence whose remainder has not arrived yet.
func incompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	b := data[0]
	var want int
	switch {
	case b < 0x80:
		want = 1
	case b < 0xC0:
		return false // continuation byte, not a sequence start
	case b < 0xE0:
		want = 2
	case b < 0xF0:
		want = 3
	default:
		want = 4
	}
	return want > len(data)
}

// CountingReader tracks bytes read for upload progress reporting. Safe for
// concurrent BytesRead calls while a read is in flight.
type CountingReader struct {
	reader io.Reader
	count  atomic.Int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.count.Add(int64(n))
	return n, err
}

// BytesRead returns the total bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.count.Load()
}
