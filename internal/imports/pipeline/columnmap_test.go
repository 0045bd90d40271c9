package pipeline

import "testing"

func TestSuggestFieldSynonyms(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		header string
		want   Field
	}{
		{"Firma", FieldCompanyName},
		{"company name", FieldCompanyName},
		{"Company_Name", FieldCompanyName},
		{"Firmenname", FieldCompanyName},
		{"Ansprechpartner", FieldContactName},
		{"Contact-Person", FieldContactName},
		{"Anrede", FieldSalutation},
		{"Telefon", FieldPhone},
		{"Tel.", FieldPhone},
		{"Mobile", FieldPhone},
		{"E-Mail", FieldEmail},
		{"  EMAIL  ", FieldEmail},
		{"Webseite", FieldWebsite},
		{"Branche", FieldIndustry},
		{"Kategorie", FieldIndustry},
		{"Ort", FieldCity},
		{"PLZ", FieldCity},
		{"Stadt", FieldCity},
	}

	for _, tt := range tests {
		got, ok := m.SuggestField(tt.header)
		if !ok || got != tt.want {
			t.Errorf("SuggestField(%q) = %q, %v; want %q", tt.header, got, ok, tt.want)
		}
	}
}

func TestSuggestFieldNoMatch(t *testing.T) {
	m := NewMapper()
	for _, header := range []string{"xyz123", "", "   ", "__"} {
		if got, ok := m.SuggestField(header); ok {
			t.Errorf("SuggestField(%q) = %q, want no suggestion", header, got)
		}
	}
}

func TestSuggestFieldFirstFieldWins(t *testing.T) {
	// "name" is a synonym of both company and contact name.
	got, ok := NewMapper().SuggestField("Name")
	if !ok || got != FieldCompanyName {
		t.Fatalf("expected companyName, got %q", got)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"  Company_Name ": "company name",
		"E-Mail":          "e mail",
		"Tel.\t Nr":       "tel. nr",
		"A__B--C":         "a b c",
	}
	for in, want := range tests {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSuggestSkipsUnknownHeaders(t *testing.T) {
	mapping := NewMapper().Suggest([]string{"Firma", "Telefon", "Umsatz 2024"})
	if len(mapping) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", mapping)
	}
	if mapping["Firma"] != FieldCompanyName || mapping["Telefon"] != FieldPhone {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestWithSynonymsKeepsBuiltins(t *testing.T) {
	base := NewMapper()
	m := base.WithSynonyms(map[Field][]string{FieldPhone: {"Rufnummer"}})

	if got, ok := m.SuggestField("Rufnummer"); !ok || got != FieldPhone {
		t.Fatalf("expected extra synonym to match phone, got %q", got)
	}
	if got, ok := m.SuggestField("Firma"); !ok || got != FieldCompanyName {
		t.Fatalf("built-in synonym lost, got %q", got)
	}
	if _, ok := base.SuggestField("Rufnummer"); ok {
		t.Fatal("WithSynonyms must not modify the receiver")
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
		ok   bool
	}{
		{"companyName", FieldCompanyName, true},
		{"telefon", FieldPhone, true},
		{"Firmenname", FieldCompanyName, true},
		{"ort", FieldCity, true},
		{"street", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseField(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseField(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIdentityMapping(t *testing.T) {
	mapping := IdentityMapping([]string{"firmenname", "phone", "Umsatz"})
	if len(mapping) != 2 || mapping["firmenname"] != FieldCompanyName || mapping["phone"] != FieldPhone {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}
