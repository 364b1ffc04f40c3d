package phone

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nyaruka/phonenumbers"
	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/shape"
)

// Policy defines what happens with fields that contain unparsable numbers.
type Policy string

const (
	// Drop removes the field from the document.
	Drop = Policy("drop")
	// Keep leaves the raw value in the document.
	Keep = Policy("keep")
	// Abort keeps the raw value and the caller should stop the run.
	Abort = Policy("abort")
)

// ParsePolicy returns the Policy named s.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case Drop, Keep, Abort:
		return p, nil
	}
	return "", errors.Errorf("unknown phone failure policy %q (drop, keep or abort)", s)
}

const thinSpace = "\u2009"

// Defaults of Options.
var (
	DefaultKeys      = []string{"phone", "fax", "contact:phone"}
	DefaultSentinels = []string{"keine"}
)

const (
	DefaultRegion    = "DE"
	DefaultCacheSize = 4096
)

// Options configures a Normalizer. Zero values select the defaults.
type Options struct {
	// Region is the region hint for numbers without country code.
	Region string
	// CountryCode is prefixed with + for numbers that start with the
	// country code but without the plus. Defaults to the code of Region.
	CountryCode string
	Keys        []string
	// Sentinels are values meaning "no number", fields with these values
	// are removed.
	Sentinels []string
	Policy    Policy
	CacheSize int
}

// UnparsableError is returned for each field with a number that cannot be
// converted into the international format.
type UnparsableError struct {
	Key       string
	Value     string
	Candidate string
	Err       error
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("unparsable phone number %q in %s=%q: %v", e.Candidate, e.Key, e.Value, e.Err)
}

// AsUnparsable returns the *UnparsableError that caused err.
func AsUnparsable(err error) (*UnparsableError, bool) {
	u, ok := errors.Cause(err).(*UnparsableError)
	return u, ok
}

// Normalizer rewrites phone fields of documents into the international
// format, e.g. +49 551 12345.
type Normalizer struct {
	region      string
	countryCode string
	keys        []string
	sentinels   map[string]bool
	policy      Policy
	cache       *lru.Cache[string, string]
}

// NewNormalizer returns a Normalizer for opts.
func NewNormalizer(opts Options) (*Normalizer, error) {
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}
	opts.Region = strings.ToUpper(opts.Region)
	if opts.CountryCode == "" {
		code := phonenumbers.GetCountryCodeForRegion(opts.Region)
		if code == 0 {
			return nil, errors.Errorf("unknown phone region %q", opts.Region)
		}
		opts.CountryCode = fmt.Sprint(code)
	}
	if len(opts.Keys) == 0 {
		opts.Keys = DefaultKeys
	}
	if opts.Sentinels == nil {
		opts.Sentinels = DefaultSentinels
	}
	if opts.Policy == "" {
		opts.Policy = Drop
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating phone cache")
	}
	n := &Normalizer{
		region:      opts.Region,
		countryCode: opts.CountryCode,
		keys:        opts.Keys,
		sentinels:   make(map[string]bool, len(opts.Sentinels)),
		policy:      opts.Policy,
		cache:       cache,
	}
	for _, s := range opts.Sentinels {
		n.sentinels[s] = true
	}
	return n, nil
}

// Policy returns the failure policy of n.
func (n *Normalizer) Policy() Policy {
	return n.policy
}

// Format returns a single number in the international format.
func (n *Normalizer) Format(number string) (string, error) {
	if formatted, ok := n.cache.Get(number); ok {
		return formatted, nil
	}
	raw := number
	// numbers with country code but without the leading +
	// would be parsed as national numbers
	if strings.HasPrefix(number, n.countryCode) {
		number = "+" + number
	}
	number = strings.Replace(number, thinSpace, " ", -1)
	parsed, err := phonenumbers.Parse(number, n.region)
	if err != nil {
		return "", err
	}
	formatted := phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
	n.cache.Add(raw, formatted)
	return formatted, nil
}

// Normalize rewrites all phone fields of doc. Fields with a sentinel value
// are removed. Fields with multiple comma separated numbers become a list.
// Fields with numbers that cannot be parsed are handled according to the
// policy and reported as *UnparsableError.
func (n *Normalizer) Normalize(doc shape.Document) []*UnparsableError {
	var failures []*UnparsableError
	for _, key := range n.keys {
		value, ok := doc[key]
		if !ok {
			continue
		}
		var candidates []string
		var raw string
		switch v := value.(type) {
		case string:
			if n.sentinels[strings.TrimSpace(v)] {
				delete(doc, key)
				continue
			}
			raw = v
			candidates = splitNumbers(v)
		case []string:
			// already normalized
			raw = strings.Join(v, ", ")
			candidates = v
		default:
			continue
		}

		formatted, err := n.formatAll(key, raw, candidates)
		if err != nil {
			failures = append(failures, err)
			if n.policy == Drop {
				delete(doc, key)
			}
			continue
		}
		if len(formatted) == 1 {
			doc[key] = formatted[0]
		} else {
			doc[key] = formatted
		}
	}
	return failures
}

func (n *Normalizer) formatAll(key, raw string, candidates []string) ([]string, *UnparsableError) {
	if len(candidates) == 0 {
		return nil, &UnparsableError{Key: key, Value: raw, Err: errors.New("no phone number")}
	}
	formatted := make([]string, 0, len(candidates))
	for _, c := range candidates {
		f, err := n.Format(c)
		if err != nil {
			return nil, &UnparsableError{Key: key, Value: raw, Candidate: c, Err: err}
		}
		formatted = append(formatted, f)
	}
	return formatted, nil
}

// splitNumbers splits comma separated numbers. Empty parts are skipped.
func splitNumbers(v string) []string {
	var numbers []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			numbers = append(numbers, part)
		}
	}
	return numbers
}
