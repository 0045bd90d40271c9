package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Cell is one column of a row. A nil Value means the cell is empty.
type Cell struct {
	Header string
	Value  *string
}

// Row is an ordered header to value sequence; spreadsheets have no fixed schema.
type Row []Cell

// Get returns the value under header.
func (r Row) Get(header string) (string, bool) {
	for _, c := range r {
		if c.Header == header && c.Value != nil {
			return *c.Value, true
		}
	}
	return "", false
}

// Headers returns the headers in column order.
func (r Row) Headers() []string {
	out := make([]string, 0, len(r))
	for _, c := range r {
		out = append(out, c.Header)
	}
	return out
}

// UnmarshalJSON decodes a JSON object keeping key order. Numbers and booleans
// become strings, nested objects and arrays keep their compact JSON text, and
// null becomes an empty cell.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	row := Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		header, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		cell := Cell{Header: header}
		if v, ok := cellText(raw); ok {
			cell.Value = &v
		}
		row = append(row, cell)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = row
	return nil
}

func cellText(raw json.RawMessage) (string, bool) {
	switch raw[0] {
	case 'n':
		return "", false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw), true
		}
		return buf.String(), true
	default:
		return string(raw), true
	}
}

// ErrNotObject is returned for a row that is not a JSON object.
var ErrNotObject = errors.New("row must be an object")

// DecodeRows decodes a JSON array of rows. Elements that are not objects
// decode to a nil Row in their position; the reconciler skips them.
func DecodeRows(data []byte) ([]Row, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	rows := make([]Row, len(elems))
	for i, elem := range elems {
		var row Row
		if err := json.Unmarshal(elem, &row); err != nil {
			continue
		}
		rows[i] = row
	}
	return rows, nil
}

// MarshalJSON encodes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Header)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if c.Value == nil {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(*c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project applies mapping to row. Unmapped headers, empty cells and blank values are dropped.
// When two headers map to the same field the first non-blank one wins.
func Project(row Row, mapping Mapping) map[Field]string {
	out := make(map[Field]string, len(mapping))
	for _, c := range row {
		field, ok := mapping[c.Header]
		if !ok || c.Value == nil {
			continue
		}
		if _, taken := out[field]; taken {
			continue
		}
		if v := strings.TrimSpace(*c.Value); v != "" {
			out[field] = v
		}
	}
	return out
}
