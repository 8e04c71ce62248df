package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Table is a titled grid of string cells; every row has len(Columns) cells.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Renderer encodes a table.
type Renderer interface {
	Render(t Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ParseFormat normalises a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// RendererFor returns the renderer registered for f.
func RendererFor(f Format) (Renderer, error) {
	switch f {
	case FormatCSV:
		return CSVRenderer{}, nil
	case FormatPDF:
		return PDFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Title)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
