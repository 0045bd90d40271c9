package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSynonyms reads extra header synonyms from a YAML file keyed by field name:
//
//	phone: [rufnummer, durchwahl]
//	city: [gemeinde]
func LoadSynonyms(path string) (map[Field][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}
	return ParseSynonyms(data)
}

// ParseSynonyms decodes the synonyms YAML document.
func ParseSynonyms(data []byte) (map[Field][]string, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}

	out := make(map[Field][]string, len(raw))
	for key, values := range raw {
		field, ok := ParseField(key)
		if !ok {
			return nil, fmt.Errorf("parse synonyms: unknown field %q", key)
		}
		out[field] = append(out[field], values...)
	}
	return out, nil
}
