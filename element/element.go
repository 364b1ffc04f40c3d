// Package element contains the raw, untyped OSM element model the
// pipeline works on.
//
// Unlike the typed osm.Node/osm.Way structs, an Element keeps every
// attribute and every child of the source, so that unknown attributes
// (visible, action, ...) can be passed through into the output documents.
package element

import "fmt"

const (
	Node     = "node"
	Way      = "way"
	Relation = "relation"
	Tag      = "tag"
	NodeRef  = "nd"
	Member   = "member"
)

// Attr is a single name/value attribute of an element.
type Attr struct {
	Name  string
	Value string
}

// Element is one record of the source dataset, or a nested child of one
// (tag, nd, member).
type Element struct {
	Kind     string
	Attrs    []Attr
	Children []*Element
}

// New returns an element of kind with the attributes given as name/value
// pairs.
func New(kind string, nameValues ...string) *Element {
	if len(nameValues)%2 != 0 {
		panic("element.New: odd number of name/value arguments")
	}
	e := &Element{Kind: kind}
	for i := 0; i < len(nameValues); i += 2 {
		e.SetAttr(nameValues[i], nameValues[i+1])
	}
	return e
}

// NewTag returns a tag child with key k and value v.
func NewTag(k, v string) *Element {
	return New(Tag, "k", k, "v", v)
}

// NewNodeRef returns a nd child referencing node ref.
func NewNodeRef(ref string) *Element {
	return New(NodeRef, "ref", ref)
}

func (e *Element) String() string {
	id, _ := e.Attr("id")
	return fmt.Sprintf("%s(%s)", e.Kind, id)
}

// Attr returns the value of the attribute name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets attribute name, replacing an existing value.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Add appends children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Shapeable returns whether e is a node or a way. Only these are
// converted into output documents.
func (e *Element) Shapeable() bool {
	return e.Kind == Node || e.Kind == Way
}

// HasMetadata returns whether e is one of the top level OSM primitives
// that carry user and changeset metadata.
func (e *Element) HasMetadata() bool {
	return e.Kind == Node || e.Kind == Way || e.Kind == Relation
}

// KeyValue returns the k and v attributes of a tag element. ok is false
// for other kinds and for tags without a key.
func (e *Element) KeyValue() (k, v string, ok bool) {
	if e.Kind != Tag {
		return "", "", false
	}
	k, ok = e.Attr("k")
	if !ok {
		return "", "", false
	}
	v, _ = e.Attr("v")
	return k, v, true
}

// Tags flattens all tag children into a map. Later tags with the same
// key overwrite earlier ones.
func (e *Element) Tags() map[string]string {
	tags := make(map[string]string)
	for _, c := range e.Children {
		if k, v, ok := c.KeyValue(); ok {
			tags[k] = v
		}
	}
	return tags
}

// Refs returns the ref attributes of all nd children in document order.
func (e *Element) Refs() []string {
	var refs []string
	for _, c := range e.Children {
		if c.Kind != NodeRef {
			continue
		}
		if ref, ok := c.Attr("ref"); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Walk calls fn for e and then for all descendants, depth first and in
// document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}
