// Package taxonomy profiles raw elements: element kinds, tag key
// categories and contributor ids.
package taxonomy

import (
	"regexp"

	"github.com/omniscale/osmdoc/element"
)

// KeyCategory classifies a tag key by its characters.
type KeyCategory string

const (
	// Lower keys contain only lowercase letters and underscores.
	Lower = KeyCategory("lower")
	// LowerColon keys are two lower segments joined by a single colon.
	LowerColon = KeyCategory("lower_colon")
	// ProblemChars keys contain characters that are not usable as field
	// names in the output documents.
	ProblemChars = KeyCategory("problemchars")
	Other        = KeyCategory("other")
)

// Categories lists all categories in classification order.
var Categories = []KeyCategory{Lower, LowerColon, ProblemChars, Other}

var (
	lower        = regexp.MustCompile(`^([a-z]|_)*$`)
	lowerColon   = regexp.MustCompile(`^([a-z]|_)*:([a-z]|_)*$`)
	problemChars = regexp.MustCompile(`[=\+/&<>;'"\?%#$@\,\. \t\r\n]`)
)

// ClassifyKey returns the category of key. The patterns are checked in
// the order of Categories, the first match wins.
func ClassifyKey(key string) KeyCategory {
	switch {
	case lower.MatchString(key):
		return Lower
	case lowerColon.MatchString(key):
		return LowerColon
	case problemChars.MatchString(key):
		return ProblemChars
	default:
		return Other
	}
}

// TagCounts counts elements by kind.
type TagCounts map[string]int

func (c TagCounts) Inc(kind string) { c[kind]++ }

// Total returns the sum of all counts.
func (c TagCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// KeyCounts counts tag keys by category.
type KeyCounts map[KeyCategory]int

func (c KeyCounts) Inc(cat KeyCategory) { c[cat]++ }

// Total returns the sum of all counts.
func (c KeyCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// CountTags increments the counter for the kind of e.
func CountTags(e *element.Element, counts TagCounts) TagCounts {
	counts.Inc(e.Kind)
	return counts
}

// KeyTypes classifies the key of the tag element e. Other kinds are
// ignored. onProblem is called with each problematic key, it can be nil.
func KeyTypes(e *element.Element, counts KeyCounts, onProblem func(key string)) KeyCounts {
	k, _, ok := e.KeyValue()
	if !ok {
		return counts
	}
	cat := ClassifyKey(k)
	counts.Inc(cat)
	if cat == ProblemChars && onProblem != nil {
		onProblem(k)
	}
	return counts
}

// ExtractUser returns the user id (uid) of nodes, ways and relations.
func ExtractUser(e *element.Element) (string, bool) {
	if !e.HasMetadata() {
		return "", false
	}
	uid, ok := e.Attr("uid")
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}
