// Package report writes audit reports and conversion summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmdoc/pipeline"
	"github.com/omniscale/osmdoc/taxonomy"
)

type Format string

const (
	Text = Format("text")
	YAML = Format("yaml")
	JSON = Format("json")
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, YAML, JSON:
		return f, nil
	}
	return "", errors.Errorf("unknown report format %q (text, yaml or json)", s)
}

// WriteAudit writes r in format f.
func WriteAudit(w io.Writer, r *pipeline.AuditReport, f Format) error {
	switch f {
	case YAML:
		return writeYAML(w, r)
	case JSON:
		return writeJSON(w, r)
	}
	return writeText(w, auditText(r))
}

// WriteConvert writes the statistics of a conversion run in format f.
func WriteConvert(w io.Writer, st pipeline.ConvertStats, f Format) error {
	switch f {
	case YAML:
		return writeYAML(w, st)
	case JSON:
		return writeJSON(w, st)
	}
	return writeText(w, table([][]string{
		{"elements read", strconv.Itoa(st.Elements)},
		{"documents written", strconv.Itoa(st.Documents)},
		{"corrections applied", strconv.Itoa(st.Corrections)},
		{"phone failures", strconv.Itoa(st.PhoneFailures)},
		{"phone fields dropped", strconv.Itoa(st.PhoneDropped)},
	}))
}

func writeYAML(w io.Writer, v interface{}) error {
	buf, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	_, err = w.Write(buf)
	return errors.Wrap(err, "writing report")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "writing report")
}

func writeText(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return errors.Wrap(err, "writing report")
		}
	}
	return nil
}

func auditText(r *pipeline.AuditReport) []string {
	var lines []string
	section := func(title string, rows [][]string) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, title)
		if len(rows) == 0 {
			lines = append(lines, "  (none)")
			return
		}
		for _, l := range table(rows) {
			lines = append(lines, "  "+l)
		}
	}

	section(fmt.Sprintf("Elements (%d top level)", r.Elements), countRows(r.Tags))

	var keys [][]string
	for _, c := range taxonomy.Categories {
		keys = append(keys, []string{string(c), strconv.Itoa(r.Keys[c])})
	}
	section("Tag keys", keys)
	section("Problematic keys", countRows(r.ProblemKeys))

	section("Phone formats", countRows(r.Phones))
	var phones [][]string
	for _, p := range r.OtherPhones {
		phones = append(phones, []string{p.Key, p.Value})
	}
	section("Phone values in other formats", phones)

	section("Contributors", [][]string{{"distinct users", strconv.Itoa(len(r.Users))}})
	var streets [][]string
	for _, s := range r.Streets {
		streets = append(streets, []string{s})
	}
	section(fmt.Sprintf("Street names (%d)", len(r.Streets)), streets)
	return lines
}

// countRows returns name/count rows of m, largest count first.
func countRows[K ~string, M ~map[K]int](m M) [][]string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, string(k))
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := m[K(names[i])], m[K(names[j])]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n, strconv.Itoa(m[K(n)])}
	}
	return rows
}

// table aligns the columns of rows by their display width. Columns that
// contain only numbers are right aligned.
func table(rows [][]string) []string {
	var widths []int
	numeric := map[int]bool{}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
				numeric[i] = true
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
			if _, err := strconv.Atoi(cell); err != nil {
				numeric[i] = false
			}
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			if numeric[i] {
				sb.WriteString(pad + cell)
			} else if i == len(row)-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(cell + pad)
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}
