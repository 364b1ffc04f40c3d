package pipeline

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/phone"
	"github.com/omniscale/osmdoc/shape"
	"github.com/omniscale/osmdoc/stats"
	"github.com/omniscale/osmdoc/street"
	"github.com/omniscale/osmdoc/tracing"
)

// Sink receives the converted documents in input order.
type Sink interface {
	Write(doc shape.Document) error
}

type ConvertOptions struct {
	// Corrections of street names, can be nil.
	Corrections street.Corrections
	// Phones normalizes the phone fields. Defaults to a normalizer with
	// the default phone.Options.
	Phones *phone.Normalizer
	// Progress is optional.
	Progress *stats.Statistics
}

type ConvertStats struct {
	Elements      int `yaml:"elements" json:"elements"`
	Documents     int `yaml:"documents" json:"documents"`
	Corrections   int `yaml:"corrections" json:"corrections"`
	PhoneFailures int `yaml:"phone_failures" json:"phone_failures"`
	PhoneDropped  int `yaml:"phone_dropped" json:"phone_dropped"`
}

// Convert shapes all nodes and ways of src, corrects their street names,
// normalizes their phone numbers and writes them to sink. All other
// elements are skipped.
//
// With the phone.Abort policy, Convert stops at the first unparsable
// number and returns the *phone.UnparsableError as cause. The document
// is not written.
func Convert(ctx context.Context, src Source, sink Sink, opts ConvertOptions) (st ConvertStats, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "pipeline.convert")
	defer func() {
		span.SetAttributes(
			attribute.Int("elements", st.Elements),
			attribute.Int("documents", st.Documents),
		)
		tracing.End(span, err)
	}()

	phones := opts.Phones
	if phones == nil {
		phones, err = phone.NewNormalizer(phone.Options{})
		if err != nil {
			return st, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		e, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return st, errors.Wrap(err, "reading input")
		}
		st.Elements++
		stats.ElementsRead.WithLabelValues(e.Kind).Inc()
		if opts.Progress != nil {
			opts.Progress.AddElement(e.Kind)
		}

		doc, ok := shape.Shape(e)
		if !ok {
			continue
		}

		if from, to, changed := street.Correct(doc, opts.Corrections); changed {
			log.Printf("[debug] corrected street name of %s: %q -> %q", e, from, to)
			st.Corrections++
			stats.CorrectionsApplied.Inc()
		}

		for _, f := range phones.Normalize(doc) {
			st.PhoneFailures++
			stats.PhoneFailures.WithLabelValues(string(phones.Policy())).Inc()
			switch phones.Policy() {
			case phone.Abort:
				return st, errors.Wrapf(f, "converting %s", e)
			case phone.Drop:
				st.PhoneDropped++
				log.Printf("[warn] %s: dropped %s: %v", e, f.Key, f)
			default:
				log.Printf("[warn] %s: kept raw %s: %v", e, f.Key, f)
			}
		}

		if err := sink.Write(doc); err != nil {
			return st, err
		}
		st.Documents++
		stats.DocumentsWritten.Inc()
		if opts.Progress != nil {
			opts.Progress.AddDocuments(1)
		}
	}
	return st, nil
}
