// Package decode turns raw input documents into models.RawTable values.
// Decoders keep cells as they appear in the source; column resolution and
// typing happen later in the parser package.
package decode

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/transfergraph/core/internal/models"
)

// delimiters are tried in order against the header line; the first one that
// splits it into at least two columns wins.
var delimiters = []rune{',', ';', '\t', '|', ' '}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV decodes delimited text. The delimiter is sniffed from the header line,
// a leading UTF-8 byte order mark is skipped and duplicate header names get
// a ".N" suffix. Short rows simply lack the trailing cells.
func CSV(r io.Reader) (*models.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty table data")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = reader.Comma != ' ' && reader.Comma != '\t'

	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := uniqueHeader(record)

	table := &models.RawTable{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(models.Row, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func sniffDelimiter(data []byte) rune {
	line, err := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if err != nil && err != io.EOF {
		return ','
	}
	line = strings.TrimRight(line, "\r\n")
	for _, d := range delimiters {
		r := csv.NewReader(strings.NewReader(line))
		r.Comma = d
		r.LazyQuotes = true
		fields, err := r.Read()
		if err == nil && len(fields) >= 2 {
			return d
		}
	}
	return ','
}

// uniqueHeader trims names, fills blanks and renames repeats so that every
// column can be addressed by name.
func uniqueHeader(record []string) []string {
	header := make([]string, len(record))
	seen := make(map[string]bool, len(record))
	for i, name := range record {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = true
		header[i] = candidate
	}
	return header
}
