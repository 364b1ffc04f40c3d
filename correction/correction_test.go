package correction

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	m, err := Read(strings.NewReader(`OSM,Gottingen
Weender Straße,Weender Strasse,True
Goetheallee,Göttheallee,False
Am Markt,Markt,True
Am Markt,Marktplatz,True
Nikolausberger Weg,Nikolausberger Weg 1,true
`))
	if err != nil {
		t.Fatal(err)
	}
	expected := Map{
		"Weender Straße": "Weender Strasse",
		"Am Markt":       "Marktplatz",
	}
	if !reflect.DeepEqual(m, expected) {
		t.Errorf("unexpected map %v", m)
	}
	if v, ok := m.Lookup("Goetheallee"); ok {
		t.Error("unapproved row in map", v)
	}
}

func TestReadHeaderOnly(t *testing.T) {
	for _, doc := range []string{"OSM,Gottingen\n", "OSM,Gottingen"} {
		m, err := Read(strings.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}
		if len(m) != 0 {
			t.Error("expected empty map", m)
		}
	}
}

func TestReadMalformed(t *testing.T) {
	for _, doc := range []string{
		"",
		"OSM\n",
		"OSM,Gottingen\nWeender Straße,Weender Strasse\n",
		"OSM,Gottingen\nA,B,True\nC\n",
	} {
		_, err := Read(strings.NewReader(doc))
		if err == nil {
			t.Errorf("%q: expected error", doc)
			continue
		}
		if !IsMalformed(err) {
			t.Errorf("%q: unexpected error %v", doc, err)
		}
	}
}

func TestReadEntries(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader("OSM,Ref,approved\nA,B,True\nC,D,False\n"))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Entry{{"A", "B", true}, {"C", "D", false}}
	if !reflect.DeepEqual(entries, expected) {
		t.Errorf("unexpected entries %v", entries)
	}
	if m := NewMap(entries); len(m) != 1 {
		t.Errorf("expected one approved entry, got %v", m)
	}
}

func TestLoad(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "to_correct_edited.csv")
	if err := os.WriteFile(fname, []byte("OSM,Gottingen\nA,B,True\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(fname)
	if err != nil {
		t.Fatal(err)
	}
	if m["A"] != "B" {
		t.Error("unexpected map", m)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProposalRoundTrip(t *testing.T) {
	proposals := []Proposal{
		{Name: "Weender Strasse", Match: "Weender Straße"},
		{Name: "Am, Markt", Match: "Am Markt"},
	}
	buf := &bytes.Buffer{}
	if err := WriteProposals(buf, "Gottingen", proposals); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "OSM,Gottingen\n") {
		t.Errorf("unexpected header in %q", buf.String())
	}

	entries, err := ReadEntries(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[1].Dirty != "Am, Markt" || entries[0].OK {
		t.Errorf("unexpected entries %v", entries)
	}
	// nothing approved yet
	if m := NewMap(entries); len(m) != 0 {
		t.Errorf("unexpected approved entries %v", m)
	}
}
