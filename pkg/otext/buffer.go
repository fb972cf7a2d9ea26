package otext

import (
	"errors"

	"collabotp/pkg/chunk"
)

// ErrOutOfRange is returned by Buffer operations given a position or length
// that does not fit the current content.
var ErrOutOfRange = errors.New("otext: buffer index out of range")

// EventKind distinguishes the two notifications a Buffer emits.
type EventKind int

const (
	// EventInsert reports that text was inserted.
	EventInsert EventKind = iota
	// EventErase reports that text was removed.
	EventErase
)

// Event is the notification a Buffer emits after a mutation, carrying the
// affected range and the acting user (spec §4.2: insert_text/erase_text
// notifications).
type Event struct {
	Kind  EventKind
	Pos   int
	Len   int
	User  uint64
	Chunk chunk.Chunk // populated for EventInsert
}

// Buffer is the reference text content store: an ordered sequence of
// authored segments supporting slice/insert/erase (spec §3/§4.2).
//
// Buffer instances are owned exclusively by a Session and are only ever
// touched from the single cooperative task that owns that session (spec
// §5): no internal locking is performed, by design.
type Buffer struct {
	segments    []chunk.Segment
	modified    bool
	subscribers []func(Event)
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFromChunk seeds a buffer with existing authored content, e.g.
// when loading a persisted document (spec §9 design note: refcounted
// subgraphs become shared-ownership values; chunks are cheap to copy).
func NewBufferFromChunk(c chunk.Chunk) *Buffer {
	segs := make([]chunk.Segment, len(c.Segments))
	copy(segs, c.Segments)
	return &Buffer{segments: segs}
}

func (b *Buffer) whole() chunk.Chunk {
	return chunk.Chunk{Segments: b.segments}
}

// Length returns the number of Unicode code points currently stored.
func (b *Buffer) Length() int {
	return b.whole().Len()
}

// Text returns the buffer's content with authorship discarded.
func (b *Buffer) Text() string {
	return b.whole().String()
}

// Slice returns the chunk covering [pos, pos+length).
func (b *Buffer) Slice(pos, length int) (chunk.Chunk, error) {
	c, err := b.whole().SubSlice(pos, length)
	if err != nil {
		return chunk.Chunk{}, ErrOutOfRange
	}
	return c, nil
}

// InsertChunk splices c into the buffer at pos, splitting a segment if
// needed and merging adjacent same-author segments, then emits an
// EventInsert notification.
func (b *Buffer) InsertChunk(pos int, c chunk.Chunk, user uint64) error {
	if pos < 0 || pos > b.Length() {
		return ErrOutOfRange
	}
	whole := b.whole()
	before, err := whole.SubSlice(0, pos)
	if err != nil {
		return ErrOutOfRange
	}
	after, err := whole.SubSlice(pos, b.Length()-pos)
	if err != nil {
		return ErrOutOfRange
	}
	merged := before.Concat(c).Concat(after)
	b.segments = merged.Segments
	b.modified = true
	b.notify(Event{Kind: EventInsert, Pos: pos, Len: c.Len(), User: user, Chunk: c})
	return nil
}

// Erase removes length characters starting at pos, then emits an
// EventErase notification.
func (b *Buffer) Erase(pos, length int, user uint64) error {
	if pos < 0 || length < 0 || pos+length > b.Length() {
		return ErrOutOfRange
	}
	whole := b.whole()
	before, err := whole.SubSlice(0, pos)
	if err != nil {
		return ErrOutOfRange
	}
	after, err := whole.SubSlice(pos+length, b.Length()-pos-length)
	if err != nil {
		return ErrOutOfRange
	}
	merged := before.Concat(after)
	b.segments = merged.Segments
	b.modified = true
	b.notify(Event{Kind: EventErase, Pos: pos, Len: length, User: user})
	return nil
}

// Modified reports whether the buffer has ever been mutated.
func (b *Buffer) Modified() bool {
	return b.modified
}

// Subscribe registers fn to be called synchronously, from the owning task,
// after every mutation (spec §5: notifications are emitted synchronously;
// observers must not reenter session APIs).
func (b *Buffer) Subscribe(fn func(Event)) {
	b.subscribers = append(b.subscribers, fn)
}

func (b *Buffer) notify(e Event) {
	for _, fn := range b.subscribers {
		fn(e)
	}
}

// Iterate walks the buffer's authored segments in order.
func (b *Buffer) Iterate(fn func(chunk.Segment) bool) {
	b.whole().Iterate(fn)
}
