package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const standardCSV = "Profile Name,Unit Weight (kg/m),Profile Width (mm),Profile Height (mm),Cut Length,Cut Unit\n" +
	"Profile A,1.5,50,60,2500,mm\n" +
	"Profile B,2.0,60,70,3,m\n"

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		delim rune
	}{
		{"comma", ','},
		{"semicolon", ';'},
		{"tab", '\t'},
		{"pipe", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(strings.ReplaceAll(standardCSV, ",", string(tt.delim)))
			if got := DetectCSVDelimiter(data); got != tt.delim {
				t.Errorf("expected %q delimiter, got %q", tt.delim, got)
			}
		})
	}
}

func TestDetectCSVDelimiter_DecimalCommaWithSemicolons(t *testing.T) {
	data := []byte("Name;Weight;Width;Height;Length\nA;1,5;50;60;2500\nB;2,25;60;70;3000\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Profile Name", "Unit Weight (kg/m)", "Profile Width (mm)", "Profile Height (mm)", "Cut Length", "Cut Unit"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Name: 0, Weight: 1, Width: 2, Height: 3, Length: 4, Unit: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_CaseInsensitiveAndReordered(t *testing.T) {
	row := []string{"CUT LENGTH", "unit", "WIDTH", "Height", "Weight [kg/m]", "name"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Name: 5, Weight: 4, Width: 2, Height: 3, Length: 0, Unit: 1}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"A", "1.5", "50", "60", "2500", "mm"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Name != 0 || mapping.Weight != 1 || mapping.Length != 4 || mapping.Unit != 5 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(standardCSV), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(result.Profiles))
	}

	a := result.Profiles[0]
	if a.Name != "Profile A" || a.LinearWeight != 1.5 || a.CrossWidth != 50 || a.CrossHeight != 60 || a.CutLength != 2500 {
		t.Errorf("unexpected profile A: %+v", a)
	}
	if a.ID == "" {
		t.Error("expected an ID")
	}
	if got := result.Profiles[1].CutLength; got != 3000 {
		t.Errorf("expected 3 m to become 3000 mm, got %f", got)
	}
}

func TestImportCSVFromReader_UnitConversion(t *testing.T) {
	tests := []struct {
		unit string
		want float64
	}{
		{"mm", 100},
		{"cm", 1000},
		{"m", 100000},
		{"inches", 2540},
		{"IN", 2540},
		{"", 100},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			data := "Name,Weight,Width,Height,Length,Unit\nA,1,10,10,100," + tt.unit + "\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')
			if len(result.Profiles) != 1 {
				t.Fatalf("expected 1 profile, got %d (errors: %v)", len(result.Profiles), result.Errors)
			}
			if got := result.Profiles[0].CutLength; got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("expected %f mm, got %f", tt.want, got)
			}
		})
	}
}

func TestImportCSVFromReader_InvalidUnit(t *testing.T) {
	data := "Name,Weight,Width,Height,Length,Unit\nA,1,10,10,100,furlong\nB,1,10,10,100,mm\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "invalid unit") || !strings.Contains(result.Errors[0], "Line 2") {
		t.Errorf("unexpected error message %q", result.Errors[0])
	}
	if len(result.Profiles) != 1 || result.Profiles[0].Name != "B" {
		t.Errorf("expected only B imported, got %+v", result.Profiles)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "A,1.5,50,60,2500,mm\nB,2,60,70,300,cm\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(result.Profiles))
	}
	if result.Profiles[1].CutLength != 3000 {
		t.Errorf("expected 3000 mm, got %f", result.Profiles[1].CutLength)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	data := "Artikel,Gewicht,Breite,Hoehe,Laenge\nA,1.5,50,60,2500\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d (errors: %v)", len(result.Profiles), result.Errors)
	}
	if result.Profiles[0].CutLength != 2500 {
		t.Errorf("expected positional cut length 2500, got %f", result.Profiles[0].CutLength)
	}
}

func TestImportCSVFromReader_DecimalComma(t *testing.T) {
	data := "Name;Weight;Width;Height;Length\nA;1,5;50;60;2500\n"
	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d (errors: %v)", len(result.Profiles), result.Errors)
	}
	if result.Profiles[0].LinearWeight != 1.5 {
		t.Errorf("expected weight 1.5, got %f", result.Profiles[0].LinearWeight)
	}
}

func TestImportCSVFromReader_NonPositiveWeightOrLengthSkipped(t *testing.T) {
	data := "Name,Weight,Width,Height,Length\nZero,0,50,60,2500\nShort,1,50,60,-5\nOK,1,50,60,2500\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("skipped rows are not errors: %v", result.Errors)
	}
	if len(result.Profiles) != 1 || result.Profiles[0].Name != "OK" {
		t.Fatalf("expected only OK imported, got %+v", result.Profiles)
	}
	skips := 0
	for _, w := range result.Warnings {
		if strings.Contains(w, "Skipping") {
			skips++
		}
	}
	if skips != 2 {
		t.Errorf("expected 2 skip warnings, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_NonPositiveCrossSection(t *testing.T) {
	data := "Name,Weight,Width,Height,Length\nFlat,1,0,60,2500\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if len(result.Profiles) != 0 {
		t.Errorf("expected no profiles, got %d", len(result.Profiles))
	}
}

func TestImportCSVFromReader_InvalidNumber(t *testing.T) {
	data := "Name,Weight,Width,Height,Length\nA,heavy,50,60,2500\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid unit weight 'heavy'") {
		t.Errorf("unexpected errors %v", result.Errors)
	}
}

func TestImportCSVFromReader_NonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name, row, want string
	}{
		{"NaN weight", "X,NaN,50,60,1000,mm", "Invalid unit weight 'NaN'"},
		{"infinite width", "X,1.5,Inf,60,1000,mm", "Invalid width 'Inf'"},
		{"negative infinite height", "X,1.5,50,-inf,1000,mm", "Invalid height '-inf'"},
		{"length overflows after conversion", "X,1.5,50,60,1e306,m", "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "Name,Weight,Width,Height,Length,Unit\n" + tt.row + "\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')

			if len(result.Profiles) != 0 {
				t.Errorf("expected no profiles, got %+v", result.Profiles)
			}
			if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], tt.want) {
				t.Errorf("expected one error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestImportCSVFromReader_MissingValue(t *testing.T) {
	data := "Name,Weight,Width,Height,Length\nA,1,50,,2500\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Missing height") {
		t.Errorf("unexpected errors %v", result.Errors)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "Name,Weight,Width,Height\nA,1,50,60\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Cut Length") {
		t.Errorf("expected missing Cut Length column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyNameAndRows(t *testing.T) {
	data := "Name,Weight,Width,Height,Length\n,1,50,60,2500\n,,,,\n\n,1,50,60,1000\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d (errors: %v)", len(result.Profiles), result.Errors)
	}
	if result.Profiles[0].Name != "Profile 1" || result.Profiles[1].Name != "Profile 2" {
		t.Errorf("unexpected generated names %q, %q", result.Profiles[0].Name, result.Profiles[1].Name)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── File Import Tests ─────────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.csv")
	content := strings.ReplaceAll(standardCSV, ",", ";")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Profiles) != 2 {
		t.Errorf("expected 2 profiles, got %d (errors: %v)", len(result.Profiles), result.Errors)
	}
	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/file.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Profile Name", "Unit Weight (kg/m)", "Profile Width (mm)", "Profile Height (mm)", "Cut Length", "Cut Unit"},
		{"Profile A", 1.5, 50, 60, 2500, "mm"},
		{"Profile B", 2, 60, 70, 300, "cm"},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(result.Profiles))
	}
	if result.Profiles[0].Name != "Profile A" || result.Profiles[0].CrossWidth != 50 {
		t.Errorf("unexpected first profile %+v", result.Profiles[0])
	}
	if result.Profiles[1].CutLength != 3000 {
		t.Errorf("expected 3000 mm, got %f", result.Profiles[1].CutLength)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel("/nonexistent/profiles.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportFile_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "profiles.csv")
	if err := os.WriteFile(csvPath, []byte(standardCSV), 0644); err != nil {
		t.Fatal(err)
	}
	xlsxPath := createTestExcel(t, [][]interface{}{
		{"Name", "Weight", "Width", "Height", "Length"},
		{"X", 1, 10, 10, 500},
	})

	if got := len(ImportFile(csvPath).Profiles); got != 2 {
		t.Errorf("expected 2 profiles from CSV, got %d", got)
	}
	if got := len(ImportFile(xlsxPath).Profiles); got != 1 {
		t.Errorf("expected 1 profile from XLSX, got %d", got)
	}
	if result := ImportFile(filepath.Join(dir, "profiles.pdf")); len(result.Errors) == 0 {
		t.Error("expected error for unsupported extension")
	}
}
