// Package osmxml is a stream based reader for OSM XML files (.osm, .osc).
package osmxml

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/element"
)

// containers are wrapper elements that are never returned themselves.
// Their children are returned as top level elements.
var containers = map[string]bool{
	"osm":       true,
	"osmChange": true,
	"create":    true,
	"modify":    true,
	"delete":    true,
}

// Parser returns one top level element (node, way, relation, bounds, ...)
// with all its children at a time. Only the element currently being read
// is kept in memory.
type Parser struct {
	decoder *xml.Decoder
	stack   []*element.Element
	done    bool
	onClose func() error
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{decoder: xml.NewDecoder(r)}
}

// Open returns a parser for the file fname. Files ending with .gz or .bz2
// are decompressed on the fly.
func Open(fname string) (*Parser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "opening osm file")
	}
	var r io.Reader = bufio.NewReaderSize(f, 1<<16)
	switch {
	case strings.HasSuffix(fname, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening gzip stream of %s", fname)
		}
		r = gz
	case strings.HasSuffix(fname, ".bz2"):
		r = bzip2.NewReader(r)
	}
	p := NewParser(r)
	p.onClose = f.Close
	return p, nil
}

// Close releases the underlying file, if the parser was created with Open.
func (p *Parser) Close() error {
	if p.onClose != nil {
		err := p.onClose()
		p.onClose = nil
		return err
	}
	return nil
}

// Next returns the next top level element. Returns io.EOF after the last
// element.
func (p *Parser) Next() (*element.Element, error) {
	if p.done {
		return nil, io.EOF
	}
	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			p.done = true
			if len(p.stack) > 0 {
				return nil, errors.Errorf("unexpected end of file inside <%s>", p.stack[len(p.stack)-1].Kind)
			}
			return nil, io.EOF
		}
		if err != nil {
			p.done = true
			return nil, errors.Wrap(err, "parsing osm xml")
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if len(p.stack) == 0 && containers[tok.Name.Local] {
				continue
			}
			elem := &element.Element{Kind: tok.Name.Local}
			if len(tok.Attr) > 0 {
				elem.Attrs = make([]element.Attr, 0, len(tok.Attr))
				for _, attr := range tok.Attr {
					elem.SetAttr(attr.Name.Local, attr.Value)
				}
			}
			if n := len(p.stack); n > 0 {
				parent := p.stack[n-1]
				parent.Children = append(parent.Children, elem)
			}
			p.stack = append(p.stack, elem)
		case xml.EndElement:
			n := len(p.stack)
			if n == 0 {
				// end of a container
				continue
			}
			elem := p.stack[n-1]
			p.stack[n-1] = nil
			p.stack = p.stack[:n-1]
			if n == 1 {
				return elem, nil
			}
		}
	}
}
