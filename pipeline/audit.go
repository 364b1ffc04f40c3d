package pipeline

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/omniscale/osmdoc/element"
	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/phone"
	"github.com/omniscale/osmdoc/stats"
	"github.com/omniscale/osmdoc/street"
	"github.com/omniscale/osmdoc/taxonomy"
	"github.com/omniscale/osmdoc/tracing"
)

type AuditOptions struct {
	// PhoneKeys and PhonePattern configure the phone format check, empty
	// values select the defaults of phone.NewAuditor.
	PhoneKeys    []string
	PhonePattern string
	// Progress is optional.
	Progress *stats.Statistics
}

// PhoneValue is a phone value that does not match the expected format.
type PhoneValue struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

// AuditReport is the result of an audit run.
type AuditReport struct {
	// Elements is the number of top level elements read.
	Elements    int                `yaml:"elements" json:"elements"`
	Tags        taxonomy.TagCounts `yaml:"tags" json:"tags"`
	Keys        taxonomy.KeyCounts `yaml:"keys" json:"keys"`
	ProblemKeys map[string]int     `yaml:"problem_keys" json:"problem_keys"`
	Users       []string           `yaml:"users" json:"users"`
	Streets     []string           `yaml:"streets" json:"streets"`
	Phones      phone.FormatCounts `yaml:"phones" json:"phones"`
	OtherPhones []PhoneValue       `yaml:"other_phones" json:"other_phones"`
}

type audit struct {
	report  *AuditReport
	users   map[string]struct{}
	streets map[string]struct{}
	phones  *phone.Auditor
}

// Audit reads all elements of src and collects the counters. The
// counters include nested elements (tags, node refs, members). On
// cancellation Audit returns the counters of all elements read so far
// together with the context error.
func Audit(ctx context.Context, src Source, opts AuditOptions) (report *AuditReport, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "pipeline.audit")
	defer func() { tracing.End(span, err) }()

	phones, err := phone.NewAuditor(opts.PhoneKeys, opts.PhonePattern)
	if err != nil {
		return nil, err
	}
	a := &audit{
		report: &AuditReport{
			Tags:        taxonomy.TagCounts{},
			Keys:        taxonomy.KeyCounts{},
			ProblemKeys: map[string]int{},
		},
		users:   make(map[string]struct{}),
		streets: make(map[string]struct{}),
		phones:  phones,
	}
	phones.OnOther = func(key, value string) {
		a.report.OtherPhones = append(a.report.OtherPhones, PhoneValue{key, value})
	}

	for {
		if err := ctx.Err(); err != nil {
			return a.snapshot(), err
		}
		e, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return a.snapshot(), errors.Wrap(err, "reading input")
		}
		a.add(e)
		stats.ElementsRead.WithLabelValues(e.Kind).Inc()
		if opts.Progress != nil {
			opts.Progress.AddElement(e.Kind)
		}
	}
	span.SetAttributes(attribute.Int("elements", a.report.Elements))
	return a.snapshot(), nil
}

func (a *audit) add(e *element.Element) {
	a.report.Elements++
	e.Walk(func(c *element.Element) {
		taxonomy.CountTags(c, a.report.Tags)
		taxonomy.KeyTypes(c, a.report.Keys, func(key string) {
			log.Printf("[debug] problematic key %q in %s", key, e)
			a.report.ProblemKeys[key]++
		})
		if uid, ok := taxonomy.ExtractUser(c); ok {
			a.users[uid] = struct{}{}
		}
		if name, ok := street.Extract(c); ok {
			a.streets[name] = struct{}{}
		}
	})
	a.phones.Audit(e)
}

func (a *audit) snapshot() *AuditReport {
	r := *a.report
	r.Users = sortedKeys(a.users)
	r.Streets = sortedKeys(a.streets)
	r.Phones = a.phones.Counts
	return &r
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
