package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth = 277.0 // A4 landscape minus margins
	pdfMaxCell   = 60
)

// PDFRenderer lays the table out on landscape A4 pages with a repeated header.
type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Extension() string { return "pdf" }

func (PDFRenderer) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	// Core fonts are cp1252; translate so Azerbaijani letters degrade instead of garbling.
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1254")
	colWidth := pdfPageWidth / float64(len(t.Columns))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range t.Columns {
			pdf.CellFormat(colWidth, 7, tr(col), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if t.Title != "" {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 9, tr(t.Title), "", 1, "L", false, 0, "")
		}
		header()
	})

	pdf.AddPage()
	for _, row := range t.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 6, tr(truncate(cell, pdfMaxCell)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
