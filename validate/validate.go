// Package validate checks OSM XML files against an XML schema, e.g. the
// API_v0.6.xsd of the OSM API.
package validate

import (
	"io"
	"io/fs"
	"os"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
	"github.com/pkg/errors"
)

type Validator struct {
	schema *xsd.Schema
}

// Load compiles the schema file fname. Included schemas are resolved
// relative to fname.
func Load(fname string) (*Validator, error) {
	schema, err := xsd.LoadFile(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "loading schema %s", fname)
	}
	return &Validator{schema: schema}, nil
}

// LoadFS compiles the schema name from fsys.
func LoadFS(fsys fs.FS, name string) (*Validator, error) {
	schema, err := xsd.Load(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "loading schema %s", name)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns all schema violations of the document read from r.
// The error is only set if the document could not be validated at all,
// e.g. for malformed XML.
func (v *Validator) Validate(r io.Reader) ([]string, error) {
	err := v.schema.Validate(r)
	if err == nil {
		return nil, nil
	}
	violations, ok := xsderrors.AsValidations(err)
	if !ok {
		return nil, errors.Wrap(err, "validating document")
	}
	msgs := make([]string, 0, len(violations))
	for i := range violations {
		msgs = append(msgs, violations[i].Error())
	}
	return msgs, nil
}

// ValidateFile validates the file fname.
func (v *Validator) ValidateFile(fname string) ([]string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "opening osm file")
	}
	defer f.Close()
	return v.Validate(f)
}
