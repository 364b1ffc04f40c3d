package pbf

import (
	"context"
	"reflect"
	"testing"
	"time"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/osmdoc/element"
)

func TestFromNode(t *testing.T) {
	n := &osm.Node{
		Element: osm.Element{
			ID:   1,
			Tags: osm.Tags{"phone": "0551 1", "amenity": "cafe"},
			Metadata: &osm.Metadata{
				UserID:    7,
				UserName:  "alice",
				Version:   3,
				Changeset: 42,
				Timestamp: time.Date(2016, 1, 2, 3, 4, 5, 0, time.UTC),
			},
		},
		Lat:  51.5,
		Long: 9.9,
	}
	e := FromNode(n)

	expected := []element.Attr{
		{Name: "id", Value: "1"}, {Name: "lat", Value: "51.5"}, {Name: "lon", Value: "9.9"},
		{Name: "version", Value: "3"}, {Name: "changeset", Value: "42"}, {Name: "timestamp", Value: "2016-01-02T03:04:05Z"},
		{Name: "user", Value: "alice"}, {Name: "uid", Value: "7"},
	}
	if !reflect.DeepEqual(e.Attrs, expected) {
		t.Errorf("unexpected attrs %v", e.Attrs)
	}
	// sorted by key
	if k, _, _ := e.Children[0].KeyValue(); k != "amenity" {
		t.Errorf("unexpected first tag %v", e.Children[0])
	}
	if len(e.Tags()) != 2 {
		t.Errorf("unexpected tags %v", e.Tags())
	}
}

func TestFromWay(t *testing.T) {
	w := &osm.Way{
		Element: osm.Element{ID: 10, Tags: osm.Tags{"highway": "residential"}},
		Refs:    []int64{3, 1, 2},
	}
	e := FromWay(w)
	if e.Kind != element.Way {
		t.Fatal("not a way", e)
	}
	if refs := e.Refs(); !reflect.DeepEqual(refs, []string{"3", "1", "2"}) {
		t.Errorf("unexpected refs %v", refs)
	}
	if _, ok := e.Attr("uid"); ok {
		t.Error("uid without metadata", e.Attrs)
	}
}

func TestFromRelation(t *testing.T) {
	r := &osm.Relation{
		Element: osm.Element{ID: 20},
		Members: []osm.Member{{ID: 10, Type: osm.WayMember, Role: "outer"}},
	}
	e := FromRelation(r)
	if len(e.Children) != 1 {
		t.Fatal("member missing", e.Children)
	}
	m := e.Children[0]
	if typ, _ := m.Attr("type"); typ != element.Way {
		t.Error("unexpected member type", m.Attrs)
	}
	if role, _ := m.Attr("role"); role != "outer" {
		t.Error("unexpected role", m.Attrs)
	}
}

func TestForwardKeepsOrder(t *testing.T) {
	nodes := make(chan []osm.Node)
	ways := make(chan []osm.Way)
	rels := make(chan []osm.Relation)
	out := make(chan *element.Element, 10)

	go func() {
		nodes <- []osm.Node{{Element: osm.Element{ID: 1}}, {Element: osm.Element{ID: 2}}}
		ways <- []osm.Way{{Element: osm.Element{ID: 3}}}
		close(nodes)
		close(ways)
		close(rels)
	}()
	forward(context.Background(), nodes, ways, rels, out)
	close(out)

	var got []string
	for e := range out {
		got = append(got, e.String())
	}
	if !reflect.DeepEqual(got, []string{"node(1)", "node(2)", "way(3)"}) {
		t.Errorf("unexpected order %v", got)
	}
}

func TestForwardDrainsAfterCancel(t *testing.T) {
	nodes := make(chan []osm.Node)
	ways := make(chan []osm.Way)
	rels := make(chan []osm.Relation)
	out := make(chan *element.Element) // nobody reads

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	go func() {
		nodes <- []osm.Node{{Element: osm.Element{ID: 1}}}
		nodes <- []osm.Node{{Element: osm.Element{ID: 2}}}
		close(nodes)
		close(ways)
		close(rels)
	}()
	done := make(chan struct{})
	go func() {
		forward(ctx, nodes, ways, rels, out)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forward did not drain after cancel")
	}
}
