package analysis

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF lays the report out as a printable A4 document.
func RenderPDF(r Report, name string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Gut Health Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Your Gut Health Report", "", 1, "C", false, 0, "")
	if name != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Prepared for %s", name), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Overall Score: %d / 100 (%s)", r.Score, r.Label), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, r.Narrative, "", "L", false)
	pdf.Ln(3)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	section("Priority Areas")
	for _, a := range r.PriorityAreas {
		pdf.CellFormat(0, 6, "- "+a, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	section("Category Breakdown")
	for _, c := range r.Categories {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d / 100", c.Name, c.Score), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, c.Description, "", "L", false)
		for _, rec := range c.Recommendations {
			pdf.CellFormat(0, 6, "  - "+rec, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	section("Recommendations")
	for _, rec := range r.Recommendations {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s priority)", rec.Title, rec.Priority), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, rec.Description, "", "L", false)
		pdf.Ln(1)
	}

	if len(r.Products) > 0 {
		section("Suggested Products")
		for _, p := range r.Products {
			pdf.CellFormat(0, 6, fmt.Sprintf("- %s (%s) - %s", p.Name, p.Price, p.MatchReason), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	section("Your 90-Day Plan")
	for _, phase := range r.Timeline {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, phase.Label, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, a := range phase.Actions {
			pdf.CellFormat(0, 6, "  - "+a, "", 1, "L", false, 0, "")
		}
		pdf.Ln(1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
