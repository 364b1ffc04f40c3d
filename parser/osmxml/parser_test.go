package osmxml

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/omniscale/osmdoc/element"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <bounds minlat="51.5" minlon="9.9" maxlat="51.6" maxlon="10.0"/>
 <node id="1" lat="51.5" lon="9.9" user="alice" uid="7" version="3">
  <tag k="addr:street" v="Hauptstraße"/>
  <tag k="phone" v="+49 551 12345"/>
 </node>
 <node id="2" lat="51.51" lon="9.91"/>
 <way id="10" visible="true">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="highway" v="residential"/>
  <tag k="name" v="Weender Straße"/>
 </way>
 <relation id="20">
  <member type="way" ref="10" role="outer"/>
 </relation>
</osm>
`

func readAll(t *testing.T, p *Parser) []*element.Element {
	t.Helper()
	var elems []*element.Element
	for {
		e, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		elems = append(elems, e)
	}
	return elems
}

func TestParse(t *testing.T) {
	elems := readAll(t, NewParser(strings.NewReader(sample)))

	var kinds []string
	for _, e := range elems {
		kinds = append(kinds, e.Kind)
	}
	if !reflect.DeepEqual(kinds, []string{"bounds", "node", "node", "way", "relation"}) {
		t.Fatalf("unexpected elements %v", kinds)
	}

	node := elems[1]
	if v, _ := node.Attr("uid"); v != "7" {
		t.Error("uid not parsed", node.Attrs)
	}
	if tags := node.Tags(); tags["addr:street"] != "Hauptstraße" || tags["phone"] != "+49 551 12345" {
		t.Error("tags not parsed", tags)
	}
	if len(elems[2].Children) != 0 {
		t.Error("unexpected children", elems[2].Children)
	}

	way := elems[3]
	if refs := way.Refs(); !reflect.DeepEqual(refs, []string{"1", "2"}) {
		t.Error("refs not parsed", refs)
	}
	if len(way.Children) != 4 {
		t.Error("expected 4 children", way.Children)
	}
	if v, _ := way.Attr("visible"); v != "true" {
		t.Error("visible not parsed", way.Attrs)
	}

	rel := elems[4]
	if len(rel.Children) != 1 || rel.Children[0].Kind != element.Member {
		t.Error("member not parsed", rel.Children)
	}

	// further calls keep returning EOF
	p := NewParser(strings.NewReader(sample))
	readAll(t, p)
	if _, err := p.Next(); err != io.EOF {
		t.Error("expected EOF, got", err)
	}
}

func TestParseOsmChange(t *testing.T) {
	doc := `<osmChange version="0.6">
 <create><node id="1" lat="1" lon="2"/></create>
 <modify><way id="2"><nd ref="1"/></way></modify>
 <delete><node id="3"/></delete>
</osmChange>`
	elems := readAll(t, NewParser(strings.NewReader(doc)))
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements, got %v", elems)
	}
	if elems[1].Kind != element.Way || len(elems[1].Refs()) != 1 {
		t.Error("way not parsed", elems[1])
	}
}

func TestParseTruncated(t *testing.T) {
	p := NewParser(strings.NewReader(`<osm><node id="1"><tag k="a" v="b"/>`))
	_, err := p.Next()
	if err == nil || err == io.EOF {
		t.Fatal("expected error for truncated document, got", err)
	}
	if _, err := p.Next(); err != io.EOF {
		t.Error("expected EOF after error, got", err)
	}
}

func TestOpenGzip(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.osm.gz")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(sample)); err != nil {
		t.Fatal(err)
	}
	gz.Close()
	f.Close()

	p, err := Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if elems := readAll(t, p); len(elems) != 5 {
		t.Errorf("expected 5 elements, got %d", len(elems))
	}
}
