package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/omniscale/osmdoc/phone"
	"github.com/omniscale/osmdoc/reference"
	"github.com/omniscale/osmdoc/report"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "osmdoc.yaml")
	if err := os.WriteFile(fname, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestParseConvertDefaults(t *testing.T) {
	o, err := Parse(Convert, []string{"-input", "goettingen.osm"})
	if err != nil {
		t.Fatal(err)
	}
	if o.Output != "goettingen.osm.json" {
		t.Errorf("unexpected output %q", o.Output)
	}
	if o.PhonePolicy != phone.Drop || o.PhoneRegion != "DE" {
		t.Errorf("unexpected phone options %v %v", o.PhonePolicy, o.PhoneRegion)
	}
	if !reflect.DeepEqual(o.PhoneKeys, phone.DefaultKeys) || !reflect.DeepEqual(o.PhoneSentinels, phone.DefaultSentinels) {
		t.Errorf("unexpected phone keys %v %v", o.PhoneKeys, o.PhoneSentinels)
	}
	if o.Postgres != "" || o.Mongo != "" {
		t.Error("database output enabled by default")
	}
}

func TestParseConfigFile(t *testing.T) {
	fname := writeConfig(t, `
input: goettingen.osm
output: from-config.json
corrections: to_correct_edited.csv
phone:
  region: AT
  keys: [phone]
  policy: keep
postgres:
  connection: postgres://osm@localhost/osm
  table: docs
`)
	o, err := Parse(Convert, []string{"-config", fname, "-output", "from-flag.json", "-phone-keys", "phone, fax"})
	if err != nil {
		t.Fatal(err)
	}
	if o.Input != "goettingen.osm" {
		t.Errorf("input not read from config: %q", o.Input)
	}
	if o.Output != "from-flag.json" {
		t.Errorf("flag did not override config: %q", o.Output)
	}
	if !reflect.DeepEqual(o.PhoneKeys, []string{"phone", "fax"}) {
		t.Errorf("unexpected phone keys %v", o.PhoneKeys)
	}
	if o.PhoneRegion != "AT" || o.PhonePolicy != phone.Keep || o.Corrections != "to_correct_edited.csv" {
		t.Errorf("unexpected options %+v", o)
	}
	if o.Postgres != "postgres://osm@localhost/osm" || o.PostgresTable != "docs" || o.PostgresSchema != "public" {
		t.Errorf("unexpected postgres options %q %q %q", o.Postgres, o.PostgresSchema, o.PostgresTable)
	}
}

func TestParseInvalidConfigFile(t *testing.T) {
	fname := writeConfig(t, "unknown_option: 1\n")
	if _, err := Parse(Audit, []string{"-config", fname, "-input", "a.osm"}); err == nil {
		t.Error("expected error for unknown option")
	}
	if _, err := Parse(Audit, []string{"-config", "/does/not/exist.yaml"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParsePropose(t *testing.T) {
	o, err := Parse(Propose, []string{"-input", "a.osm", "-proposals", "to_correct.csv", "-refresh"})
	if err != nil {
		t.Fatal(err)
	}
	if o.ReferenceURL != reference.DefaultURL || o.ReferenceSource != reference.DefaultSource {
		t.Errorf("unexpected reference %q %q", o.ReferenceURL, o.ReferenceSource)
	}
	if o.ReferenceTimeout != 30*time.Second || o.CacheDir != defaultCacheDir || !o.Refresh {
		t.Errorf("unexpected options %+v", o)
	}
}

func TestParseAudit(t *testing.T) {
	o, err := Parse(Audit, []string{"-report", "yaml", "a.osm"})
	if err != nil {
		t.Fatal(err)
	}
	if o.Input != "a.osm" || o.Report != report.YAML {
		t.Errorf("unexpected options %+v", o)
	}
	if o.PhonePattern != phone.DefaultPattern || !reflect.DeepEqual(o.PhoneAudit, phone.DefaultAuditKeys) {
		t.Errorf("unexpected phone audit options %q %v", o.PhonePattern, o.PhoneAudit)
	}
	if _, err := Parse(Audit, []string{"-report", "xml", "a.osm"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
		errs int
	}{
		{Audit, nil, 1},
		{Propose, nil, 2},
		{Validate, []string{"-input", "a.osm"}, 1},
		{Validate, []string{"-input", "a.osm", "-schema", "API_v0.6.xsd"}, 0},
		{Convert, []string{"-input", "a.osm", "-output", "a.osm"}, 1},
		{Convert, []string{"-input", "a.osm", "-phone-policy", "ignore"}, -1},
	}
	for _, tt := range tests {
		_, err := Parse(tt.cmd, tt.args)
		switch {
		case tt.errs == 0:
			if err != nil {
				t.Errorf("%s %v: %v", tt.cmd, tt.args, err)
			}
		case tt.errs < 0:
			if err == nil {
				t.Errorf("%s %v: expected error", tt.cmd, tt.args)
			}
		default:
			errs, ok := err.(Errors)
			if !ok || len(errs) != tt.errs {
				t.Errorf("%s %v: expected %d errors, got %v", tt.cmd, tt.args, tt.errs, err)
			}
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := Parse("import", nil); err == nil {
		t.Error("expected error")
	}
}
