package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNoValues is returned when input contains no parsable numbers.
var ErrNoValues = errors.New("timeseries: no numeric values found")

// CSVOptions controls how a value column is picked out of CSV input.
type CSVOptions struct {
	// Column is the header name of the value column. When empty the
	// column named y, value or Value is used, falling back to the last one.
	Column    string
	Delimiter rune
}

// DefaultCSVOptions returns comma-delimited options with automatic column
// detection.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ','}
}

// LoadCSV reads a series from a CSV file.
func LoadCSV(filename string, opts CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s, err := ReadCSV(file, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	s.Name = filename
	return s, nil
}

// ReadCSV reads one numeric column. A first row whose value cell is not a
// number is treated as a header. Empty, NA and unparsable cells are dropped.
func ReadCSV(r io.Reader, opts CSVOptions) (*Series, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	valueIdx := -1
	var values []float64
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}

		if first {
			first = false
			valueIdx = pickColumn(record, opts.Column)
			if _, ok := parseCell(record, valueIdx); !ok {
				continue
			}
		}

		if v, ok := parseCell(record, valueIdx); ok {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return nil, ErrNoValues
	}
	return &Series{Values: values}, nil
}

// ParseValues parses a comma, semicolon or whitespace separated list.
func ParseValues(text string) (*Series, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", f, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	return &Series{Values: values}, nil
}

func pickColumn(header []string, name string) int {
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		if name != "" && h == name {
			return i
		}
		if name == "" && (h == "y" || h == "value" || h == "Value") {
			return i
		}
	}
	return len(header) - 1
}

func parseCell(record []string, idx int) (float64, bool) {
	if idx < 0 || idx >= len(record) {
		return 0, false
	}
	cell := strings.TrimSpace(strings.Trim(record[idx], "\""))
	switch cell {
	case "", "NA", "NaN", "nan", "null":
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
