package wire_test

import "collabotp/pkg/chunk"

func chunkText(author uint64, text string) chunk.Chunk {
	return chunk.New(author, text)
}
