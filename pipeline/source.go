// Package pipeline drives the audit and the conversion of an OSM input.
//
// Both modes read the input one top level element at a time and never
// hold more than the current element in memory.
package pipeline

import (
	"context"
	"strings"

	"github.com/omniscale/osmdoc/element"
	"github.com/omniscale/osmdoc/parser/osmxml"
	"github.com/omniscale/osmdoc/parser/pbf"
)

// Source returns the top level elements of an input in document order.
// Next returns io.EOF after the last element.
type Source interface {
	Next() (*element.Element, error)
}

// SourceCloser is a Source backed by a file.
type SourceCloser interface {
	Source
	Close() error
}

// Open returns a source for fname. Files ending with .pbf are read as OSM
// PBF, all others as OSM XML (optionally .gz or .bz2 compressed).
func Open(ctx context.Context, fname string) (SourceCloser, error) {
	if strings.HasSuffix(fname, ".pbf") {
		return pbf.Open(ctx, fname)
	}
	return osmxml.Open(fname)
}
