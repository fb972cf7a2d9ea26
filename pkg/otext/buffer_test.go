package otext_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabotp/pkg/otext"
)

func TestBufferInsertAndErase(t *testing.T) {
	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "hello"), 1))
	require.Equal(t, "hello", buf.Text())

	require.NoError(t, buf.InsertChunk(5, chunkText(2, " world"), 2))
	require.Equal(t, "hello world", buf.Text())

	require.NoError(t, buf.Erase(5, 6, 1))
	require.Equal(t, "hello", buf.Text())
	require.True(t, buf.Modified())
}

func TestBufferOutOfRange(t *testing.T) {
	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "abc"), 1))

	require.ErrorIs(t, buf.InsertChunk(10, chunkText(1, "x"), 1), otext.ErrOutOfRange)
	require.ErrorIs(t, buf.Erase(2, 5, 1), otext.ErrOutOfRange)
}

func TestBufferSubscribeReceivesEvents(t *testing.T) {
	buf := otext.NewBuffer()
	var events []otext.Event
	buf.Subscribe(func(e otext.Event) { events = append(events, e) })

	require.NoError(t, buf.InsertChunk(0, chunkText(1, "ab"), 1))
	require.NoError(t, buf.Erase(0, 1, 1))

	require.Len(t, events, 2)
	require.Equal(t, otext.EventInsert, events[0].Kind)
	require.Equal(t, otext.EventErase, events[1].Kind)
	require.Equal(t, 1, events[1].Len)
}

func TestBufferSlice(t *testing.T) {
	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "hello"), 1))

	c, err := buf.Slice(1, 3)
	require.NoError(t, err)
	require.Equal(t, "ell", c.String())
}
