package pipeline

import (
	"encoding/json"
	"testing"
)

func TestRowUnmarshalKeepsOrderAndScalars(t *testing.T) {
	var row Row
	err := json.Unmarshal([]byte(`{"Firma":"Acme","PLZ":80331,"Aktiv":true,"Fax":null}`), &row)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	headers := row.Headers()
	want := []string{"Firma", "PLZ", "Aktiv", "Fax"}
	for i := range want {
		if headers[i] != want[i] {
			t.Fatalf("headers = %v, want %v", headers, want)
		}
	}
	if v, _ := row.Get("PLZ"); v != "80331" {
		t.Fatalf("expected number as string, got %q", v)
	}
	if v, _ := row.Get("Aktiv"); v != "true" {
		t.Fatalf("expected bool as string, got %q", v)
	}
	if _, ok := row.Get("Fax"); ok {
		t.Fatal("null must be an empty cell")
	}
}

func TestRowUnmarshalRejectsNonObjects(t *testing.T) {
	var row Row
	for _, input := range []string{`[1,2]`, `"x"`, `42`} {
		if err := json.Unmarshal([]byte(input), &row); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

func TestRowUnmarshalKeepsNestedValuesAsText(t *testing.T) {
	var row Row
	if err := json.Unmarshal([]byte(`{"meta": {"x": 1}, "tags": [1, "a"]}`), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, _ := row.Get("meta"); v != `{"x":1}` {
		t.Fatalf("meta = %q", v)
	}
	if v, _ := row.Get("tags"); v != `[1,"a"]` {
		t.Fatalf("tags = %q", v)
	}
}

func TestDecodeRowsKeepsPositionOfMalformedElements(t *testing.T) {
	rows, err := DecodeRows([]byte(`[{"Firma":"Alpha"},42,null,"x",{}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for _, i := range []int{1, 2, 3} {
		if rows[i] != nil {
			t.Errorf("row %d should be nil, got %v", i, rows[i])
		}
	}
	if rows[0] == nil || rows[4] == nil {
		t.Fatalf("objects must decode to rows, got %v", rows)
	}

	if _, err := DecodeRows([]byte(`{"Firma":"Alpha"}`)); err == nil {
		t.Fatal("expected error for a non-array")
	}
}

func TestRowMarshalRoundTrip(t *testing.T) {
	acme := "Acme"
	row := Row{{Header: "Z", Value: &acme}, {Header: "A"}}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"Z":"Acme","A":null}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
}

func TestProject(t *testing.T) {
	var row Row
	_ = json.Unmarshal([]byte(`{"Firma":"  Acme GmbH ","Telefon":"089 123","Mobil":"0171 999","Notiz":"x","Ort":"  "}`), &row)

	fields := Project(row, Mapping{"Firma": FieldCompanyName, "Telefon": FieldPhone, "Mobil": FieldPhone, "Ort": FieldCity})
	if fields[FieldCompanyName] != "Acme GmbH" {
		t.Fatalf("expected trimmed company, got %q", fields[FieldCompanyName])
	}
	if fields[FieldPhone] != "089 123" {
		t.Fatalf("expected first mapped phone column, got %q", fields[FieldPhone])
	}
	if _, ok := fields[FieldCity]; ok {
		t.Fatal("blank values must be dropped")
	}
	if len(fields) != 2 {
		t.Fatalf("unmapped headers must be ignored, got %v", fields)
	}
}
