// Package phone audits and normalizes phone and fax numbers.
package phone

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/element"
)

// Format categories counted by the Auditor.
const (
	International = "international_format"
	OtherFormat   = "other"
)

// DefaultPattern matches numbers already written in the German
// international format, e.g. +49 551 12345.
const DefaultPattern = `^\+49 [0-9]{3,4} [ 0-9]*$`

// DefaultAuditKeys are the tag keys checked by the Auditor.
var DefaultAuditKeys = []string{"phone", "fax"}

// FormatCounts counts phone values by format category.
type FormatCounts map[string]int

func (c FormatCounts) Inc(format string) { c[format]++ }

// Auditor counts phone values that match the expected international
// format. It never changes the elements.
type Auditor struct {
	Counts FormatCounts
	// OnOther is called for each value that does not match. Can be nil.
	OnOther func(key, value string)

	keys    map[string]bool
	pattern *regexp.Regexp
}

// NewAuditor returns an Auditor for the tag keys. Empty keys or pattern
// select the defaults.
func NewAuditor(keys []string, pattern string) (*Auditor, error) {
	if len(keys) == 0 {
		keys = DefaultAuditKeys
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling phone pattern %q", pattern)
	}
	a := &Auditor{
		Counts:  FormatCounts{},
		keys:    make(map[string]bool, len(keys)),
		pattern: re,
	}
	for _, k := range keys {
		a.keys[k] = true
	}
	return a, nil
}

// Matches returns whether value is in the expected format.
func (a *Auditor) Matches(value string) bool {
	return a.pattern.MatchString(value)
}

// Audit checks all phone tags of e.
func (a *Auditor) Audit(e *element.Element) {
	for _, c := range e.Children {
		k, v, ok := c.KeyValue()
		if !ok || !a.keys[k] {
			continue
		}
		if a.Matches(v) {
			a.Counts.Inc(International)
			continue
		}
		a.Counts.Inc(OtherFormat)
		if a.OnOther != nil {
			a.OnOther(k, v)
		}
	}
}
