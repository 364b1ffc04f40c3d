// Package writer provides the sinks for normalized documents.
package writer

import (
	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/shape"
)

// Sink receives the documents of a conversion run in input order.
type Sink interface {
	Write(doc shape.Document) error
	Close() error
}

// Multi writes each document to all sinks.
type Multi []Sink

func (m Multi) Write(doc shape.Document) error {
	for _, s := range m {
		if err := s.Write(doc); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return errors.Wrap(first, "closing output")
}

type aborter interface {
	Abort() error
}

// Abort discards pending writes of sinks that support it and closes all
// other sinks.
func (m Multi) Abort() {
	for _, s := range m {
		if a, ok := s.(aborter); ok {
			a.Abort()
		} else {
			s.Close()
		}
	}
}
