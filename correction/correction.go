// Package correction reads the human-approved street name corrections
// and proposes correction candidates for review.
//
// The workflow has two stages connected by CSV files: the audit writes
// proposals (OSM name, closest reference name, approval flag) and a
// reviewer sets the flag of the rows to apply to True. Only approved rows
// end up in the Map used during the conversion.
package correction

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ErrMalformed is the cause of all errors for correction files without
// header or with short rows.
var ErrMalformed = errors.New("malformed correction file")

// Approved is the approval flag value of rows that should be applied.
const Approved = "True"

// Entry is a single row of a correction file.
type Entry struct {
	Dirty    string
	Approved string
	OK       bool
}

// Map maps dirty street names to their approved replacement.
type Map map[string]string

// Lookup returns the approved replacement for name.
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// NewMap builds a Map from all approved entries. Later entries overwrite
// earlier entries with the same dirty name.
func NewMap(entries []Entry) Map {
	m := make(Map)
	for _, e := range entries {
		if e.OK {
			m[e.Dirty] = e.Approved
		}
	}
	return m
}

// ReadEntries reads all rows of a correction file. The first row is the
// header and must contain at least the two name columns.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMalformed, "missing header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	if len(header) < 2 {
		return nil, errors.Wrapf(ErrMalformed, "header %q needs at least two columns", header)
	}

	var entries []Entry
	line := 1
	for {
		row, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading line %d", line)
		}
		if len(row) < 3 {
			return nil, errors.Wrapf(ErrMalformed, "line %d has %d fields, expected 3", line, len(row))
		}
		entries = append(entries, Entry{
			Dirty:    row[0],
			Approved: row[1],
			OK:       row[2] == Approved,
		})
	}
	return entries, nil
}

// Read reads a correction file and returns the Map of approved rows.
func Read(r io.Reader) (Map, error) {
	entries, err := ReadEntries(r)
	if err != nil {
		return nil, err
	}
	return NewMap(entries), nil
}

// Load reads the correction file fname.
func Load(fname string) (Map, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "opening correction file")
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", fname)
	}
	return m, nil
}

// IsMalformed returns whether err was caused by a malformed file.
func IsMalformed(err error) bool {
	return errors.Cause(err) == ErrMalformed
}
