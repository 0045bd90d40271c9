// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	// CountryPrefix is prepended to national and bare numbers.
	CountryPrefix = "+49"

	defaultRegion  = "DE"
	minDigits      = 6
	minCanonLength = 10
)

// Normalize converts free-text phone input into the canonical "+<country><number>" form.
// It returns false when the input cannot be a plausible number.
//
// Every character other than digits is dropped; a plus sign survives only in first position.
// An international "00" prefix becomes "+", a single national trunk zero becomes "+49", and
// numbers without a country code are assumed to be German.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(raw))
	digits := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	if digits < minDigits {
		return "", false
	}

	cleaned := b.String()
	switch {
	case strings.HasPrefix(cleaned, "00"):
		cleaned = "+" + cleaned[2:]
	case strings.HasPrefix(cleaned, "0"):
		cleaned = CountryPrefix + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = CountryPrefix + cleaned
	}

	if len(cleaned) < minCanonLength {
		return "", false
	}
	return cleaned, true
}

// IsCanonical reports whether s is already in canonical form, i.e. Normalize(s) returns s.
func IsCanonical(s string) bool {
	normalized, ok := Normalize(s)
	return ok && normalized == s
}

// Display formats a canonical number for humans (international format).
// Numbers the metadata does not recognise are returned unchanged.
func Display(canonical string) string {
	number, err := phonenumbers.Parse(canonical, defaultRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(number) {
		return canonical
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

// Region returns the main ISO 3166 region of a canonical number's country code, or "" when unknown.
func Region(canonical string) string {
	number, err := phonenumbers.Parse(canonical, defaultRegion)
	if err != nil {
		return ""
	}
	region := phonenumbers.GetRegionCodeForCountryCode(int(number.GetCountryCode()))
	if region == "ZZ" {
		return ""
	}
	return region
}
