package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Table is a raw tabular file before normalization: a header plus string
// cell values, one slice per row.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV parses a CSV file with a header row into a Table. Short rows are
// padded so every row matches the header width.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &Table{Header: header, Rows: rows}, nil
}

// ReadJSON parses a JSON array of flat objects into a Table. Column order
// follows the key order of the first object; keys first seen in later
// objects are appended in sorted order.
func ReadJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if len(objects) == 0 {
		return nil, ErrEmptyDataset
	}

	header := jsonHeader(data, objects)
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	rows := make([][]string, 0, len(objects))
	for _, obj := range objects {
		row := make([]string, len(header))
		for k, v := range obj {
			row[index[k]] = stringifyValue(v)
		}
		rows = append(rows, row)
	}
	return &Table{Header: header, Rows: rows}, nil
}

// jsonHeader recovers column order: the first object's keys in document
// order, then any remaining keys sorted.
func jsonHeader(data []byte, objects []map[string]any) []string {
	var header []string
	seen := make(map[string]bool)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.Token() // opening [
	if dec.More() {
		var first json.RawMessage
		if dec.Decode(&first) == nil {
			for _, key := range objectKeys(first) {
				if !seen[key] {
					seen[key] = true
					header = append(header, key)
				}
			}
		}
	}

	var rest []string
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)
	return append(header, rest...)
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(obj json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

// stringifyValue renders a decoded JSON value as the cell string the
// normalizers expect.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
