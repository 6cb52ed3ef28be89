package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ProfilePack/internal/model"
)

const (
	resultsSheet  = "Results"
	familiesSheet = "Families"
)

var familyHeaders = []string{"Family", "Width (mm)", "Height (mm)", "Members", "Profiles"}

// ExportXLSX writes the result table and the box families to an Excel
// workbook. Numeric columns are stored as numbers.
func ExportXLSX(path string, result model.BatchResult) error {
	if len(result.Outcomes) == 0 {
		return fmt.Errorf("no profiles to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "C80000"},
	})
	if err != nil {
		return fmt.Errorf("failed to create row style: %w", err)
	}

	if err := writeHeader(f, resultsSheet, model.RowHeaders, headerStyle); err != nil {
		return err
	}
	for i, row := range result.Rows() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.ProfileName,
			row.CutLength,
			row.ItemsPerBox,
			row.BoxDimensions,
			row.DensityComment,
			row.Density,
			row.BoxWeight,
			row.BoxesPerPallet,
			row.PalletArrangement,
			row.Family,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		if !row.OK {
			last, _ := excelize.CoordinatesToCellName(len(values), i+2)
			if err := f.SetCellStyle(resultsSheet, cell, last, failStyle); err != nil {
				return fmt.Errorf("failed to style row %d: %w", i+1, err)
			}
		}
	}
	if err := f.SetColWidth(resultsSheet, "A", "J", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.NewSheet(familiesSheet); err != nil {
		return fmt.Errorf("failed to add families sheet: %w", err)
	}
	if err := writeHeader(f, familiesSheet, familyHeaders, headerStyle); err != nil {
		return err
	}
	names := profileNames(result)
	for i, fam := range result.Families {
		members := make([]string, 0, len(fam.Members))
		for _, id := range fam.Members {
			members = append(members, names[id])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{fam.Tag(), fam.Width, fam.Height, len(fam.Members), strings.Join(members, ", ")}
		if err := f.SetSheetRow(familiesSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write family %s: %w", fam.Tag(), err)
		}
	}

	return f.SaveAs(path)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}
