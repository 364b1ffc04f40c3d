// Package shape converts raw nodes and ways into nested output documents.
package shape

import (
	"strconv"
	"strings"

	"github.com/omniscale/osmdoc/element"
)

// Keys of the structural fields of a Document. All other fields are
// passed through from the source attributes and tags.
const (
	TypeKey     = "type"
	PosKey      = "pos"
	CreatedKey  = "created"
	AddressKey  = "address"
	NodeRefsKey = "node_refs"
)

const addrPrefix = "addr:"

// Created lists the provenance attributes collected into the created
// sub-document.
var Created = []string{"version", "changeset", "timestamp", "user", "uid"}

var created = map[string]bool{}

func init() {
	for _, k := range Created {
		created[k] = true
	}
}

// Document is one normalized element. Values are strings, except for
// pos ([]float64), node_refs ([]string), created and address
// (map[string]string) and fields rewritten by later passes.
type Document map[string]interface{}

// Type returns the source kind of the document.
func (d Document) Type() string {
	t, _ := d[TypeKey].(string)
	return t
}

// String returns the field key if it is a string.
func (d Document) String(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}

// Has returns whether the document contains the field key.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Address returns the address sub-document.
func (d Document) Address() (map[string]string, bool) {
	addr, ok := d[AddressKey].(map[string]string)
	return addr, ok
}

// Shape converts a node or way into a Document. ok is false for all other
// kinds.
//
// Provenance attributes are nested under created, lat/lon become pos,
// addr:* tags are nested under address and nd children are collected as
// node_refs. Everything else is copied as a flat field, later tags
// overwrite earlier fields with the same name. The structural fields
// always win over tags with the same name.
func Shape(e *element.Element) (Document, bool) {
	if !e.Shapeable() {
		return nil, false
	}
	doc := make(Document, len(e.Attrs)+len(e.Children)+2)
	meta := make(map[string]string)

	var lat, lon string
	var hasLat, hasLon bool
	for _, attr := range e.Attrs {
		switch {
		case created[attr.Name]:
			meta[attr.Name] = attr.Value
		case attr.Name == "lat":
			lat, hasLat = attr.Value, true
		case attr.Name == "lon":
			lon, hasLon = attr.Value, true
		default:
			doc[attr.Name] = attr.Value
		}
	}
	if pos, ok := position(lat, lon, hasLat, hasLon); ok {
		doc[PosKey] = pos
	} else {
		// keep what we got instead of silently dropping it
		if hasLat {
			doc["lat"] = lat
		}
		if hasLon {
			doc["lon"] = lon
		}
	}

	var address map[string]string
	var refs []string
	for _, c := range e.Children {
		switch c.Kind {
		case element.Tag:
			k, v, ok := c.KeyValue()
			if !ok {
				continue
			}
			if sub, isAddr := addressKey(k); isAddr {
				if sub == "" {
					continue
				}
				if address == nil {
					address = make(map[string]string)
				}
				address[sub] = v
				continue
			}
			doc[k] = v
		case element.NodeRef:
			if ref, ok := c.Attr("ref"); ok {
				refs = append(refs, ref)
			}
		}
	}

	if len(refs) > 0 {
		doc[NodeRefsKey] = refs
	}
	doc[TypeKey] = e.Kind
	if len(address) > 0 {
		doc[AddressKey] = address
	}
	doc[CreatedKey] = meta
	return doc, true
}

// position returns [lat, lon] if both are present and valid numbers.
func position(lat, lon string, hasLat, hasLon bool) ([]float64, bool) {
	if !hasLat || !hasLon {
		return nil, false
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, false
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, false
	}
	return []float64{la, lo}, true
}

// addressKey returns the sub-key of an addr:* tag key. isAddr is false
// for other keys. sub is empty for keys with more than one colon after the
// prefix (addr:street:type) and for a bare "addr:", these are dropped.
func addressKey(k string) (sub string, isAddr bool) {
	if !strings.HasPrefix(k, addrPrefix) {
		return "", false
	}
	sub = k[len(addrPrefix):]
	if sub == "" || isQualified(sub) {
		return "", true
	}
	return sub, true
}

// isQualified returns whether sub contains a colon with at least one
// character on both sides, e.g. street:type.
func isQualified(sub string) bool {
	for i := 1; i < len(sub)-1; i++ {
		if sub[i] == ':' {
			return true
		}
	}
	return false
}
