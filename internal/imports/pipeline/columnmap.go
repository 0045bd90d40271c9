// Package pipeline turns spreadsheet rows into leads: header suggestions,
// mapping projection and row-by-row reconciliation against the lead store.
package pipeline

import (
	"regexp"
	"strings"
)

// Field is a canonical lead field an import column can map to.
type Field string

const (
	FieldCompanyName Field = "companyName"
	FieldContactName Field = "contactName"
	FieldSalutation  Field = "salutation"
	FieldPhone       Field = "phone"
	FieldEmail       Field = "email"
	FieldWebsite     Field = "website"
	FieldIndustry    Field = "industry"
	FieldCity        Field = "city"
)

// Fields lists the canonical fields in matching order. The first matching field wins.
var Fields = []Field{
	FieldCompanyName,
	FieldContactName,
	FieldSalutation,
	FieldPhone,
	FieldEmail,
	FieldWebsite,
	FieldIndustry,
	FieldCity,
}

// legacyFieldNames are the German keys older clients send.
var legacyFieldNames = map[string]Field{
	"firmenname":      FieldCompanyName,
	"ansprechpartner": FieldContactName,
	"anrede":          FieldSalutation,
	"telefon":         FieldPhone,
	"branche":         FieldIndustry,
	"ort":             FieldCity,
}

var defaultSynonyms = map[Field][]string{
	FieldCompanyName: {"firmenname", "firma", "unternehmen", "company", "company name", "name"},
	FieldContactName: {"ansprechpartner", "kontakt", "contact", "contact person", "vorname nachname", "name", "kontaktperson"},
	FieldSalutation:  {"anrede", "salutation", "titel", "title"},
	FieldPhone:       {"telefon", "telefonnummer", "phone", "tel", "tel.", "telephone", "mobil", "mobile"},
	FieldEmail:       {"email", "e-mail", "mail", "e mail"},
	FieldWebsite:     {"website", "webseite", "web", "url", "homepage"},
	FieldIndustry:    {"branche", "industry", "sector", "kategorie", "category"},
	FieldCity:        {"ort", "stadt", "city", "location", "plz", "postleitzahl"},
}

// ParseField resolves a canonical field name or a legacy German key.
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	f, ok := legacyFieldNames[strings.ToLower(name)]
	return f, ok
}

// Mapping assigns source headers to canonical fields. Unmapped headers are ignored on import.
type Mapping map[string]Field

var (
	separatorRegex  = regexp.MustCompile(`[_-]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeHeader lower-cases and trims a header and folds separators and whitespace runs into one space.
func NormalizeHeader(header string) string {
	s := separatorRegex.ReplaceAllString(strings.ToLower(header), " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// Mapper suggests fields for spreadsheet headers.
type Mapper struct {
	synonyms map[Field][]string
}

// NewMapper returns a mapper with the built-in German and English synonyms.
func NewMapper() *Mapper {
	m := &Mapper{synonyms: make(map[Field][]string, len(Fields))}
	for _, f := range Fields {
		m.synonyms[f] = normalizeAll(defaultSynonyms[f])
	}
	return m
}

// WithSynonyms returns a copy of m with extra synonyms appended per field.
// Field order and the built-in synonyms stay unchanged.
func (m *Mapper) WithSynonyms(extra map[Field][]string) *Mapper {
	out := &Mapper{synonyms: make(map[Field][]string, len(m.synonyms))}
	for _, f := range Fields {
		merged := append([]string(nil), m.synonyms[f]...)
		out.synonyms[f] = append(merged, normalizeAll(extra[f])...)
	}
	return out
}

// SuggestField returns the first field whose synonyms contain the normalized
// header, or are contained in it.
func (m *Mapper) SuggestField(header string) (Field, bool) {
	normalized := NormalizeHeader(header)
	if normalized == "" {
		return "", false
	}

	for _, f := range Fields {
		for _, synonym := range m.synonyms[f] {
			if strings.Contains(normalized, synonym) || strings.Contains(synonym, normalized) {
				return f, true
			}
		}
	}
	return "", false
}

// Suggest maps every recognizable header. Headers without a match are left out.
func (m *Mapper) Suggest(headers []string) Mapping {
	mapping := make(Mapping, len(headers))
	for _, h := range headers {
		if f, ok := m.SuggestField(h); ok {
			mapping[h] = f
		}
	}
	return mapping
}

// IdentityMapping maps headers that already are field names (canonical or legacy) onto themselves.
func IdentityMapping(headers []string) Mapping {
	mapping := make(Mapping, len(headers))
	for _, h := range headers {
		if f, ok := ParseField(h); ok {
			mapping[h] = f
		}
	}
	return mapping
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := NormalizeHeader(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
