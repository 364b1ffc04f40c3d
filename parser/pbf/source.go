// Package pbf reads OSM PBF files into the raw element model.
//
// Decoding is done by github.com/omniscale/go-osm. Typed nodes, ways and
// relations are converted back into elements with the same attributes and
// children an equivalent .osm file would produce, so that the rest of the
// pipeline does not need to care about the input format.
package pbf

import (
	"context"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	osm "github.com/omniscale/go-osm"
	osmpbf "github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmdoc/element"
)

// Parser returns the elements of a PBF file one at a time. Decoding runs
// in background goroutines, but elements are returned in file order.
type Parser struct {
	elems  chan *element.Element
	g      *errgroup.Group
	cancel context.CancelFunc
	file   io.Closer
	err    error
}

// Open starts parsing the PBF file fname.
func Open(ctx context.Context, fname string) (*Parser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "opening pbf file")
	}
	p := newParser(ctx, f)
	p.file = f
	return p, nil
}

// NewParser starts parsing PBF data from r.
func NewParser(ctx context.Context, r io.Reader) *Parser {
	return newParser(ctx, r)
}

func newParser(ctx context.Context, r io.Reader) *Parser {
	ctx, cancel := context.WithCancel(ctx)
	nodes := make(chan []osm.Node)
	ways := make(chan []osm.Way)
	rels := make(chan []osm.Relation)

	parser := osmpbf.New(r, osmpbf.Config{
		IncludeMetadata: true,
		Nodes:           nodes,
		Ways:            ways,
		Relations:       rels,
		// A single block worker keeps the blocks in file order.
		Concurrency: 1,
	})

	p := &Parser{
		elems:  make(chan *element.Element, 256),
		cancel: cancel,
	}
	g, gctx := errgroup.WithContext(ctx)
	p.g = g
	g.Go(func() error {
		if err := parser.Parse(gctx); err != nil && err != context.Canceled {
			return errors.Wrap(err, "parsing pbf")
		}
		return nil
	})
	g.Go(func() error {
		defer close(p.elems)
		forward(gctx, nodes, ways, rels, p.elems)
		return nil
	})
	return p
}

// forward converts everything received from the go-osm channels and sends
// it to out. After ctx is done, remaining batches are drained and dropped
// so that the decoder can shut down.
func forward(ctx context.Context, nodes chan []osm.Node, ways chan []osm.Way, rels chan []osm.Relation, out chan<- *element.Element) {
	discard := false
	send := func(e *element.Element) {
		if discard {
			return
		}
		select {
		case out <- e:
		case <-ctx.Done():
			discard = true
		}
	}
	for nodes != nil || ways != nil || rels != nil {
		select {
		case batch, ok := <-nodes:
			if !ok {
				nodes = nil
				continue
			}
			for i := range batch {
				send(FromNode(&batch[i]))
			}
		case batch, ok := <-ways:
			if !ok {
				ways = nil
				continue
			}
			for i := range batch {
				send(FromWay(&batch[i]))
			}
		case batch, ok := <-rels:
			if !ok {
				rels = nil
				continue
			}
			for i := range batch {
				send(FromRelation(&batch[i]))
			}
		}
	}
}

// Next returns the next element. Returns io.EOF after the last element.
func (p *Parser) Next() (*element.Element, error) {
	if p.err != nil {
		return nil, p.err
	}
	e, ok := <-p.elems
	if ok {
		return e, nil
	}
	if err := p.g.Wait(); err != nil {
		p.err = err
		return nil, err
	}
	p.err = io.EOF
	return nil, io.EOF
}

// Close stops the decoding and releases the file.
func (p *Parser) Close() error {
	p.cancel()
	for range p.elems {
	}
	err := p.g.Wait()
	if p.file != nil {
		if cerr := p.file.Close(); err == nil {
			err = cerr
		}
		p.file = nil
	}
	return err
}

// FromNode converts a parsed node.
func FromNode(n *osm.Node) *element.Element {
	e := element.New(element.Node,
		"id", strconv.FormatInt(n.ID, 10),
		"lat", strconv.FormatFloat(n.Lat, 'f', -1, 64),
		"lon", strconv.FormatFloat(n.Long, 'f', -1, 64),
	)
	addMetadata(e, n.Metadata)
	addTags(e, n.Tags)
	return e
}

// FromWay converts a parsed way. Node refs become nd children.
func FromWay(w *osm.Way) *element.Element {
	e := element.New(element.Way, "id", strconv.FormatInt(w.ID, 10))
	addMetadata(e, w.Metadata)
	for _, ref := range w.Refs {
		e.Add(element.NewNodeRef(strconv.FormatInt(ref, 10)))
	}
	addTags(e, w.Tags)
	return e
}

var memberTypes = map[osm.MemberType]string{
	osm.NodeMember:     element.Node,
	osm.WayMember:      element.Way,
	osm.RelationMember: element.Relation,
}

// FromRelation converts a parsed relation. Members become member children.
func FromRelation(r *osm.Relation) *element.Element {
	e := element.New(element.Relation, "id", strconv.FormatInt(r.ID, 10))
	addMetadata(e, r.Metadata)
	for _, m := range r.Members {
		e.Add(element.New(element.Member,
			"type", memberTypes[m.Type],
			"ref", strconv.FormatInt(m.ID, 10),
			"role", m.Role,
		))
	}
	addTags(e, r.Tags)
	return e
}

func addMetadata(e *element.Element, md *osm.Metadata) {
	if md == nil {
		return
	}
	e.SetAttr("version", strconv.Itoa(int(md.Version)))
	e.SetAttr("changeset", strconv.FormatInt(md.Changeset, 10))
	if !md.Timestamp.IsZero() {
		e.SetAttr("timestamp", md.Timestamp.UTC().Format(time.RFC3339))
	}
	if md.UserName != "" {
		e.SetAttr("user", md.UserName)
	}
	e.SetAttr("uid", strconv.Itoa(int(md.UserID)))
}

// addTags appends tags sorted by key, PBF does not keep the source order.
func addTags(e *element.Element, tags osm.Tags) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Add(element.NewTag(k, tags[k]))
	}
}
