package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabotp/pkg/chunk"
)

func TestNewAndString(t *testing.T) {
	c := chunk.New(1, "hello")
	require.Equal(t, "hello", c.String())
	require.Equal(t, 5, c.Len())
}

func TestConcatMergesSameAuthor(t *testing.T) {
	a := chunk.New(1, "He")
	b := chunk.New(1, "llo")
	merged := a.Concat(b)
	require.Len(t, merged.Segments, 1)
	require.Equal(t, "Hello", merged.String())
}

func TestConcatKeepsDistinctAuthors(t *testing.T) {
	a := chunk.New(1, "He")
	b := chunk.New(2, "llo")
	merged := a.Concat(b)
	require.Len(t, merged.Segments, 2)
	require.Equal(t, "Hello", merged.String())
}

func TestSubSliceAcrossSegments(t *testing.T) {
	c := chunk.New(1, "He").Concat(chunk.New(2, "llo"))
	sub, err := c.SubSlice(1, 3)
	require.NoError(t, err)
	require.Equal(t, "ell", sub.String())
	require.Len(t, sub.Segments, 2)
	require.Equal(t, uint64(1), sub.Segments[0].Author)
	require.Equal(t, "e", sub.Segments[0].Text)
	require.Equal(t, uint64(2), sub.Segments[1].Author)
	require.Equal(t, "ll", sub.Segments[1].Text)
}

func TestSubSliceOutOfRange(t *testing.T) {
	c := chunk.New(1, "abc")
	_, err := c.SubSlice(2, 5)
	require.ErrorIs(t, err, chunk.ErrOutOfRange)
}

func TestSubSliceUnicodeAligned(t *testing.T) {
	c := chunk.New(1, "aéb") // 3 code points, é is 2 bytes
	sub, err := c.SubSlice(1, 1)
	require.NoError(t, err)
	require.Equal(t, "é", sub.String())
}

func TestIterateStopsEarly(t *testing.T) {
	c := chunk.New(1, "a").Concat(chunk.New(2, "b")).Concat(chunk.New(3, "c"))
	var seen []uint64
	c.Iterate(func(s chunk.Segment) bool {
		seen = append(seen, s.Author)
		return s.Author != 2
	})
	require.Equal(t, []uint64{1, 2}, seen)
}
