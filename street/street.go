// Package street finds the street name of an element and applies
// approved street name corrections to shaped documents.
//
// The street identity of POI nodes is stored in addr:street, while roads
// are ways tagged with highway and name. Both Extract and Correct look at
// addr:street first and fall back to the name of highway ways, so that a
// correction always hits the field the name was audited from.
package street

import (
	"github.com/omniscale/osmdoc/element"
	"github.com/omniscale/osmdoc/shape"
)

const (
	streetKey  = "addr:street"
	highwayKey = "highway"
	nameKey    = "name"
	addrStreet = "street"
)

// Extract returns the street name of a node or way.
func Extract(e *element.Element) (string, bool) {
	if !e.Shapeable() {
		return "", false
	}
	tags := e.Tags()
	if name, ok := tags[streetKey]; ok {
		return name, true
	}
	if e.Kind == element.Way {
		_, isHighway := tags[highwayKey]
		name, hasName := tags[nameKey]
		if isHighway && hasName {
			return name, true
		}
	}
	return "", false
}

// Corrections maps a street name to its approved replacement.
type Corrections interface {
	Lookup(name string) (string, bool)
}

// Correct replaces the street name of doc with its approved correction.
// Names without a correction are left untouched. Returns the old and new
// name if the document was changed.
func Correct(doc shape.Document, corrections Corrections) (from, to string, changed bool) {
	if corrections == nil {
		return "", "", false
	}
	if addr, ok := doc.Address(); ok {
		if name, ok := addr[addrStreet]; ok {
			if fixed, ok := corrections.Lookup(name); ok && fixed != name {
				addr[addrStreet] = fixed
				return name, fixed, true
			}
			return "", "", false
		}
	}
	if doc.Type() != element.Way || !doc.Has(highwayKey) {
		return "", "", false
	}
	name, ok := doc.String(nameKey)
	if !ok {
		return "", "", false
	}
	if fixed, ok := corrections.Lookup(name); ok && fixed != name {
		doc[nameKey] = fixed
		return name, fixed, true
	}
	return "", "", false
}
