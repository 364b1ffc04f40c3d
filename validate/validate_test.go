package validate

import (
	"strings"
	"testing"
	"testing/fstest"
)

const schema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="osm">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="node" minOccurs="0" maxOccurs="unbounded">
          <xs:complexType>
            <xs:sequence>
              <xs:element name="tag" minOccurs="0" maxOccurs="unbounded">
                <xs:complexType>
                  <xs:attribute name="k" type="xs:string" use="required"/>
                  <xs:attribute name="v" type="xs:string" use="required"/>
                </xs:complexType>
              </xs:element>
            </xs:sequence>
            <xs:attribute name="id" type="xs:long" use="required"/>
            <xs:attribute name="lat" type="xs:decimal"/>
            <xs:attribute name="lon" type="xs:decimal"/>
          </xs:complexType>
        </xs:element>
      </xs:sequence>
      <xs:attribute name="version" type="xs:string"/>
    </xs:complexType>
  </xs:element>
</xs:schema>`

func loadValidator(t *testing.T) *Validator {
	t.Helper()
	fsys := fstest.MapFS{"osm.xsd": &fstest.MapFile{Data: []byte(schema)}}
	v, err := LoadFS(fsys, "osm.xsd")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestValidate(t *testing.T) {
	v := loadValidator(t)

	msgs, err := v.Validate(strings.NewReader(`<osm version="0.6">
  <node id="1" lat="51.5" lon="9.9"><tag k="name" v="A"/></node>
</osm>`))
	if err != nil || len(msgs) != 0 {
		t.Errorf("valid document: %v %v", msgs, err)
	}

	msgs, err = v.Validate(strings.NewReader(`<osm version="0.6">
  <node id="abc" lat="51.5" lon="9.9"><tag k="name"/></node>
</osm>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) == 0 {
		t.Error("expected violations")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/does/not/exist.xsd"); err == nil {
		t.Error("expected error")
	}
}
