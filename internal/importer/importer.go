// Package importer provides CSV and Excel import of profile tables.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Profiles []model.ProfileSpec
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name   int
	Weight int
	Width  int
	Height int
	Length int
	Unit   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase,
// with any bracketed unit such as "(mm)" removed).
var headerAliases = map[string][]string{
	"name":   {"profile name", "name", "profile", "label", "description", "desc", "item"},
	"weight": {"unit weight", "weight", "linear weight", "weight per meter", "weight per metre", "kg/m"},
	"width":  {"profile width", "width", "w", "cross width"},
	"height": {"profile height", "height", "h", "cross height"},
	"length": {"cut length", "length", "len", "l"},
	"unit":   {"cut unit", "unit", "length unit", "units"},
}

var bracketed = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)

// normalizeHeader lowercases a header cell and strips unit annotations.
func normalizeHeader(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	s = bracketed.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the default
// positional mapping (Name, Unit Weight, Width, Height, Cut Length, Cut Unit)
// and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Weight: -1, Width: -1, Height: -1, Length: -1, Unit: -1}

	isHeader := false
	for i, cell := range row {
		normalized := normalizeHeader(cell)
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				var slot *int
				switch role {
				case "name":
					slot = &mapping.Name
				case "weight":
					slot = &mapping.Weight
				case "width":
					slot = &mapping.Width
				case "height":
					slot = &mapping.Height
				case "length":
					slot = &mapping.Length
				case "unit":
					slot = &mapping.Unit
				}
				if *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Weight: 1, Width: 2, Height: 3, Length: 4, Unit: 5}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts a decimal comma when the value has no decimal point.
func parseNumber(s string) (float64, error) {
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// rowOutcome is what parseRow decided about one table row.
type rowOutcome struct {
	profile model.ProfileSpec
	err     string
	warning string
	skip    bool
}

// parseRow extracts a ProfileSpec from a row using the given column mapping.
// The cut length is converted to millimetres.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, profileCount int) rowOutcome {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Profile %d", profileCount+1)
	}

	values := make(map[string]float64, 4)
	for _, f := range []struct {
		key   string
		title string
		idx   int
	}{
		{"weight", "unit weight", mapping.Weight},
		{"width", "width", mapping.Width},
		{"height", "height", mapping.Height},
		{"length", "cut length", mapping.Length},
	} {
		raw := getCell(row, f.idx)
		if raw == "" {
			return rowOutcome{err: fmt.Sprintf("%s: Missing %s value", rowLabel, f.title)}
		}
		v, err := parseNumber(raw)
		if err != nil {
			return rowOutcome{err: fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, f.title, raw)}
		}
		values[f.key] = v
	}

	unit, err := model.ParseUnit(getCell(row, mapping.Unit))
	if err != nil {
		return rowOutcome{err: fmt.Sprintf("%s: %v", rowLabel, err)}
	}
	length, err := model.ToMillimeters(values["length"], unit)
	if err != nil {
		return rowOutcome{err: fmt.Sprintf("%s: %v", rowLabel, err)}
	}
	if math.IsInf(length, 0) {
		return rowOutcome{err: fmt.Sprintf("%s: Cut length %s %s is out of range", rowLabel, getCell(row, mapping.Length), unit)}
	}

	if values["weight"] <= 0 || length <= 0 {
		return rowOutcome{
			skip:    true,
			warning: fmt.Sprintf("%s: Skipping '%s', unit weight and cut length must be positive", rowLabel, name),
		}
	}
	if values["width"] <= 0 || values["height"] <= 0 {
		return rowOutcome{err: fmt.Sprintf("%s: Width and height must be positive", rowLabel)}
	}

	return rowOutcome{
		profile: model.NewProfileSpec(name, values["weight"], values["width"], values["height"], length),
	}
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile imports profiles from a CSV or Excel file, chosen by extension.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return ImportExcel(path)
	case ".csv", ".tsv", ".txt", "":
		return ImportCSV(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", filepath.Ext(path))}}
	}
}

// ImportCSV imports profiles from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports profiles from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports profiles from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into profiles.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Weight == -1 {
			missing = append(missing, "Unit Weight")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Profile Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Profile Height")
		}
		if mapping.Length == -1 {
			missing = append(missing, "Cut Length")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 5 {
		// An unrecognized header still has text where the weight should be
		if _, err := parseNumber(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		out := parseRow(row, mapping, rowLabel, len(result.Profiles))
		if out.err != "" {
			result.Errors = append(result.Errors, out.err)
			continue
		}
		if out.warning != "" {
			result.Warnings = append(result.Warnings, out.warning)
		}
		if out.skip {
			continue
		}
		result.Profiles = append(result.Profiles, out.profile)
	}

	return result
}
