package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// ErrTooManyRows is returned when a file exceeds the row limit.
var ErrTooManyRows = errors.New("too many rows")

// ParseResult is a decoded spreadsheet with header suggestions.
type ParseResult struct {
	Headers          []string
	Rows             []Row
	SuggestedMapping Mapping
}

// Parse decodes a CSV or XLSX file chosen by extension. The first row holds the headers.
// maxRows <= 0 disables the row limit.
func Parse(fileName string, r io.Reader, mapper *Mapper, maxRows int) (ParseResult, error) {
	var (
		headers []string
		rows    []Row
		err     error
	)

	switch ext := strings.ToLower(path.Ext(fileName)); ext {
	case ".csv":
		headers, rows, err = parseCSV(r, maxRows)
	case ".xlsx":
		headers, rows, err = parseXLSX(r, maxRows)
	default:
		return ParseResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, strings.TrimPrefix(ext, "."))
	}
	if err != nil {
		return ParseResult{}, err
	}

	return ParseResult{
		Headers:          headers,
		Rows:             rows,
		SuggestedMapping: mapper.Suggest(headers),
	}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(r io.Reader, maxRows int) ([]string, []Row, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	firstLine, _ := br.Peek(peekSize(br))
	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(firstLine)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, []Row{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	headers := uniqueHeaders(header)

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if blankRecord(record) {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			row[i] = Cell{Header: h}
			if i < len(record) {
				v := record[i]
				row[i].Value = &v
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func parseXLSX(r io.Reader, maxRows int) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []string{}, []Row{}, nil
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read xlsx sheet: %w", err)
	}
	defer func() { _ = iter.Close() }()

	var headers []string
	rows := []Row{}
	for iter.Next() {
		record, err := iter.Columns()
		if err != nil {
			return nil, nil, fmt.Errorf("read xlsx row: %w", err)
		}
		if headers == nil {
			if blankRecord(record) {
				continue
			}
			headers = uniqueHeaders(record)
			continue
		}
		if blankRecord(record) {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			row[i] = Cell{Header: h}
			if i < len(record) && record[i] != "" {
				v := record[i]
				row[i].Value = &v
			}
		}
		rows = append(rows, row)
	}
	if err := iter.Error(); err != nil {
		return nil, nil, fmt.Errorf("read xlsx rows: %w", err)
	}

	// A sheet with only a header row has no data to infer headers from.
	if len(rows) == 0 {
		return []string{}, []Row{}, nil
	}
	return headers, rows, nil
}

// sniffDelimiter picks the most frequent of ; , and tab in the header line. Comma on ties.
func sniffDelimiter(line []byte) rune {
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte{byte(d)}); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func peekSize(br *bufio.Reader) int {
	if n := br.Buffered(); n > 0 {
		return n
	}
	_, _ = br.Peek(1)
	return br.Buffered()
}

// uniqueHeaders trims headers, names blank ones __EMPTY and suffixes repeats
// with _1, _2, skipping suffixes that are already taken.
func uniqueHeaders(record []string) []string {
	trimmed := make([]string, len(record))
	used := make(map[string]bool, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "__EMPTY"
		}
		trimmed[i] = h
	}

	seen := make(map[string]int, len(record))
	out := make([]string, 0, len(record))
	for _, h := range trimmed {
		name := h
		if used[name] {
			for n := seen[h]; ; n++ {
				name = fmt.Sprintf("%s_%d", h, n)
				if !used[name] && !contains(trimmed, name) {
					seen[h] = n + 1
					break
				}
			}
		} else if seen[h] == 0 {
			seen[h] = 1
		}
		used[name] = true
		out = append(out, name)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
