// Package decode turns raw input documents into models.RawTable values.
// Decoders keep cells as they appear in the source; column resolution and
// typing happen later in the parser package.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/transfergraph/core/internal/models"
)

type jsonTable struct {
	Header []string          `json:"header"`
	Rows   []json.RawMessage `json:"rows"`
}

// JSON decodes a table document of the form
//
//	{"header": ["from", "to", "amount"], "rows": [["A", "B", 10], {"from": "B", "to": "A"}]}
//
// Rows are either positional arrays or objects keyed by header name. Numbers
// are kept as json.Number so amounts never pass through float64.
func JSON(r io.Reader) (*models.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty table data")
	}

	var doc jsonTable
	if err := unmarshalNumbers(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table: %w", err)
	}
	if len(doc.Header) == 0 {
		return nil, fmt.Errorf("invalid table: missing header field")
	}

	header := uniqueHeader(doc.Header)
	keys := headerKeys(doc.Header, header)
	table := &models.RawTable{Header: header, Rows: make([]models.Row, 0, len(doc.Rows))}
	for i, raw := range doc.Rows {
		row, err := jsonRow(raw, header, keys)
		if err != nil {
			return nil, fmt.Errorf("invalid table: row %d: %w", i+1, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// headerKeys maps the names an object row may use, as written in the
// document or trimmed, to the table's header names. A repeated name maps to
// its first column.
func headerKeys(raw, header []string) map[string]string {
	keys := make(map[string]string, 2*len(raw))
	for i, name := range raw {
		for _, k := range []string{name, strings.TrimSpace(name)} {
			if _, ok := keys[k]; !ok {
				keys[k] = header[i]
			}
		}
	}
	return keys
}

func jsonRow(raw json.RawMessage, header []string, keys map[string]string) (models.Row, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty row")
	}

	switch trimmed[0] {
	case '[':
		var cells []any
		if err := unmarshalNumbers(trimmed, &cells); err != nil {
			return nil, err
		}
		row := make(models.Row, len(header))
		for i, cell := range cells {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		return row, nil
	case '{':
		var obj map[string]any
		if err := unmarshalNumbers(trimmed, &obj); err != nil {
			return nil, err
		}
		row := make(models.Row, len(obj))
		for k, v := range obj {
			name, ok := keys[k]
			if !ok {
				name, ok = keys[strings.TrimSpace(k)]
			}
			if !ok {
				name = strings.TrimSpace(k)
			}
			if _, taken := row[name]; taken && name != k {
				continue
			}
			row[name] = v
		}
		return row, nil
	default:
		return nil, fmt.Errorf("row must be an array or an object")
	}
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
