package writer

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/shape"
)

// JSONLines writes one JSON document per line. With pretty, documents are
// indented and span multiple lines.
type JSONLines struct {
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLines returns a JSONLines sink writing to w.
func NewJSONLines(w io.Writer, pretty bool) *JSONLines {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	jl := &JSONLines{w: bw, enc: enc}
	if c, ok := w.(io.Closer); ok && w != os.Stdout {
		jl.closer = c
	}
	return jl
}

// CreateJSONLines creates fname. "-" writes to stdout.
func CreateJSONLines(fname string, pretty bool) (*JSONLines, error) {
	if fname == "-" {
		return NewJSONLines(os.Stdout, pretty), nil
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, errors.Wrap(err, "creating output")
	}
	return NewJSONLines(f, pretty), nil
}

func (jl *JSONLines) Write(doc shape.Document) error {
	return errors.Wrap(jl.enc.Encode(doc), "writing document")
}

func (jl *JSONLines) Close() error {
	if err := jl.w.Flush(); err != nil {
		return errors.Wrap(err, "writing output")
	}
	if jl.closer != nil {
		return jl.closer.Close()
	}
	return nil
}
