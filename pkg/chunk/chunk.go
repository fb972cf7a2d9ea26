// Package chunk implements authored-text chunks: small, value-copy-cheap
// sequences of (author, text) segments that flow through operations during
// transformation (spec §3, §9 "chunks should be value-copy-cheap").
package chunk

import (
	"errors"
	"strings"
)

// Encoding is the text encoding label carried on the wire alongside a
// chunk's segments (spec §6). The reference buffer only ever produces
// UTF-8 chunks.
const Encoding = "UTF-8"

// ErrOutOfRange is returned by SubSlice when the requested character range
// does not fit within the chunk.
var ErrOutOfRange = errors.New("chunk: slice out of range")

// Segment is a contiguous run of text authored by a single participant.
type Segment struct {
	Author uint64
	Text   string
}

// RuneLen returns the number of Unicode code points in the segment.
func (s Segment) RuneLen() int {
	return len([]rune(s.Text))
}

// Chunk is an ordered sequence of authored segments. The zero value is an
// empty, usable chunk.
type Chunk struct {
	Segments []Segment
}

// New builds a chunk from a single author and string.
func New(author uint64, text string) Chunk {
	if text == "" {
		return Chunk{}
	}
	return Chunk{Segments: []Segment{{Author: author, Text: text}}}
}

// Empty reports whether the chunk carries no characters.
func (c Chunk) Empty() bool {
	return c.Len() == 0
}

// Len returns the total number of Unicode code points across all segments.
func (c Chunk) Len() int {
	n := 0
	for _, s := range c.Segments {
		n += s.RuneLen()
	}
	return n
}

// String concatenates all segment text, discarding authorship.
func (c Chunk) String() string {
	var b strings.Builder
	for _, s := range c.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Concat appends other's segments to c, merging adjacent same-author
// segments so the authored-segment list never carries spurious splits.
func (c Chunk) Concat(other Chunk) Chunk {
	segs := make([]Segment, 0, len(c.Segments)+len(other.Segments))
	segs = append(segs, c.Segments...)
	for _, s := range other.Segments {
		if s.Text == "" {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].Author == s.Author {
			segs[n-1].Text += s.Text
			continue
		}
		segs = append(segs, s)
	}
	return Chunk{Segments: segs}
}

// SubSlice returns the chunk covering the half-open character range
// [pos, pos+length), never splitting a Unicode code point.
func (c Chunk) SubSlice(pos, length int) (Chunk, error) {
	if pos < 0 || length < 0 || pos+length > c.Len() {
		return Chunk{}, ErrOutOfRange
	}
	var out []Segment
	offset := 0
	wantStart, wantEnd := pos, pos+length
	for _, s := range c.Segments {
		runes := []rune(s.Text)
		segStart := offset
		segEnd := offset + len(runes)
		offset = segEnd

		lo := max(segStart, wantStart)
		hi := min(segEnd, wantEnd)
		if lo < hi {
			out = append(out, Segment{
				Author: s.Author,
				Text:   string(runes[lo-segStart : hi-segStart]),
			})
		}
		if segEnd >= wantEnd {
			break
		}
	}
	return Chunk{Segments: out}, nil
}

// Iterate calls fn for each segment in order. Iteration stops early if fn
// returns false.
func (c Chunk) Iterate(fn func(Segment) bool) {
	for _, s := range c.Segments {
		if !fn(s) {
			return
		}
	}
}

