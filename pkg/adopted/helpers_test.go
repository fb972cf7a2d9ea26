package adopted_test

import (
	"collabotp/pkg/chunk"
	"collabotp/pkg/statevector"
)

func chunkText(text string) chunk.Chunk {
	return chunk.New(0, text)
}

func sv(uid, n uint64) *statevector.StateVector {
	v := statevector.New()
	_ = v.Set(uid, n)
	return v
}
