package writer

import (
	"github.com/omniscale/osmdoc/shape"
)

const bufferSize = 1024

// batchBuffer collects documents and passes them in batches of size to
// flush.
type batchBuffer struct {
	docs  []shape.Document
	size  int
	flush func([]shape.Document) error
}

func newBatchBuffer(size int, flush func([]shape.Document) error) *batchBuffer {
	if size <= 0 {
		size = bufferSize
	}
	return &batchBuffer{
		docs:  make([]shape.Document, 0, size),
		size:  size,
		flush: flush,
	}
}

func (b *batchBuffer) Add(doc shape.Document) error {
	b.docs = append(b.docs, doc)
	if len(b.docs) >= b.size {
		return b.Flush()
	}
	return nil
}

// Flush passes all pending documents to the flush func.
func (b *batchBuffer) Flush() error {
	if len(b.docs) == 0 {
		return nil
	}
	err := b.flush(b.docs)
	b.docs = make([]shape.Document, 0, b.size)
	return err
}
