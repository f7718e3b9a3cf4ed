package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signalsfoundry/tle-generator/model"
)

// CSVSource reads a join export whose first record is the header row. Empty
// cells load as nil so they surface as missing values during normalization.
type CSVSource struct {
	Path  string
	Comma rune
}

// NewCSVSource returns a comma-separated source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Comma: ','}
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) (model.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return model.Table{}, fmt.Errorf("open csv source: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(ctx, f, s.Comma)
	if err != nil {
		return model.Table{}, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return table, nil
}

// ReadCSV decodes a header row followed by data rows. Rows may be ragged;
// short rows are rejected later with the offending column named.
func ReadCSV(ctx context.Context, r io.Reader, comma rune) (model.Table, error) {
	rs := csv.NewReader(r)
	rs.Comment = '#'
	if comma != 0 {
		rs.Comma = comma
	}
	rs.FieldsPerRecord = -1

	header, err := rs.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, nil
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	table := model.Table{Columns: columns}
	for {
		if err := ctx.Err(); err != nil {
			return model.Table{}, err
		}
		record, err := rs.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("read row %d: %w", len(table.Rows), err)
		}
		row := make([]any, len(record))
		for i, cell := range record {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[i] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
