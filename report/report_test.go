package report

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmdoc/phone"
	"github.com/omniscale/osmdoc/pipeline"
	"github.com/omniscale/osmdoc/taxonomy"
)

func sampleReport() *pipeline.AuditReport {
	return &pipeline.AuditReport{
		Elements:    3,
		Tags:        taxonomy.TagCounts{"node": 2, "way": 1, "tag": 12},
		Keys:        taxonomy.KeyCounts{taxonomy.Lower: 10, taxonomy.LowerColon: 2},
		ProblemKeys: map[string]int{},
		Users:       []string{"1", "2"},
		Streets:     []string{"Weender Straße", "Albaniplatz"},
		Phones:      phone.FormatCounts{phone.International: 1, phone.OtherFormat: 1},
		OtherPhones: []pipeline.PhoneValue{{Key: "phone", Value: "0551 12345"}},
	}
}

func TestTable(t *testing.T) {
	lines := table([][]string{
		{"Weender Straße", "12"},
		{"Albaniplatz", "3"},
	})
	want := []string{
		"Weender Straße  12",
		"Albaniplatz      3",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("unexpected table %q", lines)
	}
}

func TestCountRows(t *testing.T) {
	rows := countRows(taxonomy.TagCounts{"node": 2, "tag": 12, "way": 2})
	want := [][]string{{"tag", "12"}, {"node", "2"}, {"way", "2"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestWriteAuditText(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteAudit(buf, sampleReport(), Text); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Elements (3 top level)\n  tag   12\n  node   2\n  way    1\n",
		"  problemchars   0\n",
		"Problematic keys\n  (none)\n",
		"  phone  0551 12345\n",
		"  distinct users  2\n",
		"Street names (2)\n  Weender Straße\n  Albaniplatz\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("%q not in report:\n%s", want, out)
		}
	}
}

func TestWriteAuditSnapshots(t *testing.T) {
	r := sampleReport()

	buf := &bytes.Buffer{}
	if err := WriteAudit(buf, r, JSON); err != nil {
		t.Fatal(err)
	}
	var decoded pipeline.AuditReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded.Streets, r.Streets) || decoded.Tags["tag"] != 12 {
		t.Errorf("unexpected json report %+v", decoded)
	}

	buf.Reset()
	if err := WriteAudit(buf, r, YAML); err != nil {
		t.Fatal(err)
	}
	var y map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &y); err != nil {
		t.Fatal(err)
	}
	if y["elements"] != 3 {
		t.Errorf("unexpected yaml report %v", y)
	}
}

func TestWriteConvert(t *testing.T) {
	buf := &bytes.Buffer{}
	st := pipeline.ConvertStats{Elements: 120, Documents: 100, Corrections: 4}
	if err := WriteConvert(buf, st, Text); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "documents written     100\n") {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("yaml"); err != nil || f != YAML {
		t.Error(f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error")
	}
}
