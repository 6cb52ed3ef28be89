package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// boxColor represents an RGB color for a box or family.
type boxColor struct {
	R, G, B int
}

// familyColors is indexed by family ID.
var familyColors = []boxColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

var independentColor = boxColor{R: 190, G: 190, B: 190}

func colorFor(familyID int) boxColor {
	if familyID == model.NoFamily {
		return independentColor
	}
	return familyColors[familyID%len(familyColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	rowHeight    = 6.0

	sketchCols = 4
	sketchRows = 2
)

// reportColWidths match model.RowHeaders.
var reportColWidths = []float64{40, 22, 18, 34, 38, 18, 22, 22, 26, 17}

// pdfReplacer maps glyphs the core fonts cannot render.
var pdfReplacer = strings.NewReplacer("\u26a0\ufe0f", "!", "\u26a0", "!", "\ufe0f", "", "\u274c", "-")

// ExportPDF writes a packing report: the result table, a summary page with
// the box families, and one cross-section sketch per packed profile.
func ExportPDF(path string, result model.BatchResult) error {
	if len(result.Outcomes) == 0 {
		return fmt.Errorf("no profiles to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfReplacer.Replace(s)) }

	renderResultTable(pdf, result, text)
	pdf.AddPage()
	renderSummaryPage(pdf, result, text)
	renderSketchPages(pdf, result, text)

	return pdf.OutputFileAndClose(path)
}

// renderResultTable draws the report rows, starting a new page whenever the
// current one is full.
func renderResultTable(pdf *fpdf.Fpdf, result model.BatchResult, text func(string) string) {
	rows := result.Rows()
	y := pageHeight

	for i, row := range rows {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 14)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetXY(marginLeft, marginTop)
			title := fmt.Sprintf("Packing Report %s (%d profiles)", result.ID, len(rows))
			pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")
			y = marginTop + headerHeight + 2
			y = drawTableHeader(pdf, y, text)
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		if !row.OK {
			pdf.SetTextColor(200, 0, 0)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		pdf.SetFont("Helvetica", "", 7)
		xPos := marginLeft
		for j, cell := range row.Cells() {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(reportColWidths[j], rowHeight, text(fit(pdf, cell, reportColWidths[j]-1)), "1", 0, "C", true, 0, "")
			xPos += reportColWidths[j]
		}
		y += rowHeight
	}
	pdf.SetTextColor(0, 0, 0)
}

func drawTableHeader(pdf *fpdf.Fpdf, y float64, text func(string) string) float64 {
	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetTextColor(0, 0, 0)
	xPos := marginLeft
	for i, header := range model.RowHeaders {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(reportColWidths[i], rowHeight, text(header), "1", 0, "C", true, 0, "")
		xPos += reportColWidths[i]
	}
	return y + rowHeight
}

// fit shortens a cell value so it stays inside its column.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	return truncate(pdf, s, width)
}

// renderSummaryPage draws run statistics, the container envelope and the
// family table.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.BatchResult, text func(string) string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Profiles", fmt.Sprintf("%d", len(result.Outcomes))},
		{"Packed", fmt.Sprintf("%d", result.Packed())},
		{"Not Packed", fmt.Sprintf("%d", len(result.Failed()))},
		{"Average Density", fmt.Sprintf("%.1f%%", result.AverageDensity())},
		{"Distinct Footprints", fmt.Sprintf("%d", result.DistinctFootprints())},
		{"Container", fmt.Sprintf("%.0f kg, %.0f x %.0f x %.0f mm",
			result.Limits.MaxWeight, result.Limits.MaxWidth, result.Limits.MaxHeight, result.Limits.MaxLength)},
		{"Pallet", fmt.Sprintf("%.0f x %.0f mm, stack %.0f mm",
			result.Pallet.Width, result.Pallet.Length, result.Pallet.MaxHeight)},
		{"Search Policy", fmt.Sprintf("%s, aspect %s %g", result.Settings.Policy, result.Settings.AspectMode, result.Settings.MaxAspectRatio)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 6, text(item.value), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if len(result.Families) > 0 {
		y += 5
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Box Families", "", 0, "L", false, 0, "")
		y += 9

		colWidths := []float64{20, 50, 25, 150}
		headers := []string{"Family", "Footprint", "Members", "Profiles"}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += 6

		names := profileNames(result)
		pdf.SetFont("Helvetica", "", 9)
		for _, f := range result.Families {
			if y+6 > pageHeight-marginBottom-6 {
				break
			}
			members := make([]string, 0, len(f.Members))
			for _, id := range f.Members {
				members = append(members, names[id])
			}
			col := colorFor(f.ID)
			rowData := []string{
				f.Tag(),
				fmt.Sprintf("%d x %d mm", f.Width, f.Height),
				fmt.Sprintf("%d", len(f.Members)),
				fit(pdf, strings.Join(members, ", "), colWidths[3]-2),
			}
			xPos = marginLeft
			for j, cell := range rowData {
				if j == 0 {
					pdf.SetFillColor(col.R, col.G, col.B)
				} else {
					pdf.SetFillColor(255, 255, 255)
				}
				pdf.SetXY(xPos, y)
				pdf.CellFormat(colWidths[j], 6, text(cell), "1", 0, "C", true, 0, "")
				xPos += colWidths[j]
			}
			y += 6
		}
	}

	if failed := result.Failed(); len(failed) > 0 && y < pageHeight-marginBottom-20 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Profiles Not Packed", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, o := range failed {
			if y > pageHeight-marginBottom-8 {
				break
			}
			pdf.SetXY(marginLeft+5, y)
			line := fmt.Sprintf("- %s: %s", o.Profile.Name, o.Kind)
			if o.Oversize != nil {
				line += fmt.Sprintf(" (needs %s mm)", o.Oversize.Dimensions())
			}
			pdf.CellFormat(250, 5, text(line), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := fmt.Sprintf("Generated by ProfilePack on %s", result.CreatedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func profileNames(result model.BatchResult) map[string]string {
	names := make(map[string]string, len(result.Outcomes))
	for _, o := range result.Outcomes {
		names[o.Profile.ID] = o.Profile.Name
	}
	return names
}

// renderSketchPages draws the box cross-section of every packed profile, a
// grid of item rectangles inside the box outline, several per page.
func renderSketchPages(pdf *fpdf.Fpdf, result model.BatchResult, text func(string) string) {
	cellW := (pageWidth - marginLeft - marginRight) / sketchCols
	cellH := (pageHeight - marginTop - marginBottom - headerHeight) / sketchRows

	n := 0
	for _, o := range result.Outcomes {
		if o.Box == nil {
			continue
		}
		pos := n % (sketchCols * sketchRows)
		if pos == 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 14)
			pdf.SetXY(marginLeft, marginTop)
			pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Box Cross-Sections", "", 0, "L", false, 0, "")
		}
		x := marginLeft + float64(pos%sketchCols)*cellW
		y := marginTop + headerHeight + float64(pos/sketchCols)*cellH
		drawCrossSection(pdf, o, x, y, cellW-4, cellH-4, text)
		n++
	}
}

// maxSketchLines caps the number of grid lines drawn per axis.
const maxSketchLines = 40

func drawCrossSection(pdf *fpdf.Fpdf, o model.ProfileOutcome, x, y, w, h float64, text func(string) string) {
	box := o.Box

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y)
	pdf.CellFormat(w, 5, text(fit(pdf, o.Profile.Name, w)), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(x, y+5)
	info := fmt.Sprintf("%d x %d grid, %d deep, %d pcs, %.1f%%",
		box.WidthCount, box.HeightCount, box.LengthCount, box.ItemCount, o.Density()*100)
	pdf.CellFormat(w, 4, text(info), "", 0, "L", false, 0, "")

	drawTop := y + 11
	drawH := h - 16
	scale := math.Min(w/float64(box.Width), drawH/float64(box.Height))
	bw := float64(box.Width) * scale
	bh := float64(box.Height) * scale
	bx := x + (w-bw)/2

	col := colorFor(o.FamilyID)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.4)
	pdf.Rect(bx, drawTop, bw, bh, "FD")

	// Item grid; dense grids are thinned to keep the sketch readable.
	pdf.SetLineWidth(0.1)
	pdf.SetDrawColor(30, 30, 30)
	iw := o.Profile.CrossWidth * scale
	ih := o.Profile.CrossHeight * scale
	for i, step := 1, gridStep(box.WidthCount); i < box.WidthCount; i += step {
		lx := bx + float64(i)*iw
		pdf.Line(lx, drawTop, lx, drawTop+float64(box.HeightCount)*ih)
	}
	for j, step := 1, gridStep(box.HeightCount); j < box.HeightCount; j += step {
		ly := drawTop + float64(j)*ih
		pdf.Line(bx, ly, bx+float64(box.WidthCount)*iw, ly)
	}

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	dims := fmt.Sprintf("%d x %d x %d mm  %s", box.Width, box.Height, box.Length, model.FamilyTag(o.FamilyID))
	pdf.SetXY(x, drawTop+bh+1)
	pdf.CellFormat(w, 4, text(dims), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func gridStep(count int) int {
	if count <= maxSketchLines {
		return 1
	}
	return (count + maxSketchLines - 1) / maxSketchLines
}
