package correction

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCutoff is the minimal similarity ratio of a proposal.
const DefaultCutoff = 0.6

// Proposal is a correction candidate for an OSM street name.
type Proposal struct {
	Name  string
	Match string
	Score float64
}

// Matcher finds the closest reference street name for OSM street names.
type Matcher struct {
	Cutoff float64
	refs   []reference
}

type reference struct {
	name  string
	runes []string
}

// NewMatcher returns a Matcher for the reference street names.
func NewMatcher(references []string) *Matcher {
	m := &Matcher{Cutoff: DefaultCutoff}
	seen := make(map[string]bool, len(references))
	for _, name := range references {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		m.refs = append(m.refs, reference{name: name, runes: split(fold(name))})
	}
	return m
}

// Closest returns the most similar reference name and its similarity ratio
// (0..1). ok is false if no reference reaches the cutoff. On equal ratios
// the lexically greater reference wins.
func (m *Matcher) Closest(name string) (match string, score float64, ok bool) {
	word := split(fold(name))
	sm := difflib.NewMatcher(nil, word)
	for _, ref := range m.refs {
		sm.SetSeq1(ref.runes)
		if sm.RealQuickRatio() < m.Cutoff || sm.QuickRatio() < m.Cutoff {
			continue
		}
		r := sm.Ratio()
		if r < m.Cutoff {
			continue
		}
		if !ok || r > score || (r == score && ref.name > match) {
			match, score, ok = ref.name, r, true
		}
	}
	return match, score, ok
}

// Propose returns a proposal for every name whose closest reference is not
// the name itself. Names without any close reference are skipped. The
// result is sorted by name.
func (m *Matcher) Propose(names []string) []Proposal {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var proposals []Proposal
	for _, name := range sorted {
		match, score, ok := m.Closest(name)
		if !ok || match == name {
			continue
		}
		proposals = append(proposals, Proposal{Name: name, Match: match, Score: score})
	}
	return proposals
}

// WriteProposals writes proposals as a correction file. The header names
// the reference source, all rows start unapproved.
func WriteProposals(w io.Writer, source string, proposals []Proposal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"OSM", source}); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, p := range proposals {
		if err := cw.Write([]string{p.Name, p.Match, "False"}); err != nil {
			return errors.Wrapf(err, "writing proposal for %q", p.Name)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "writing proposals")
}

// SaveProposals writes proposals to the file fname.
func SaveProposals(fname, source string, proposals []Proposal) error {
	f, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "creating proposal file")
	}
	if err := WriteProposals(f, source, proposals); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing proposal file")
}

// fold returns name in lower case without diacritics, with ß written as
// ss, so that spelling variants of the same street compare as similar.
func fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)
	return strings.Replace(folded, "ß", "ss", -1)
}

func split(s string) []string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, string(r))
	}
	return parts
}
