package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// ImportField describes one column of the element import sheet.
type ImportField struct {
	Key          string // PocketBase field name
	Label        string // header shown in the sheet
	Description  string // shown on the Instructions sheet
	FormatRule   string
	ExampleValue string
	Required     bool
}

// ElementImportFields returns the ordered columns of an element import file.
func ElementImportFields() []ImportField {
	return []ImportField{
		{Key: "name", Label: "Name", Description: "Element name, unique in the catalog", ExampleValue: "Tile Flooring", Required: true},
		{Key: "description", Label: "Description", Description: "Shown on proposals", ExampleValue: "Porcelain tile, set and grouted"},
		{Key: "formula", Label: "Formula", Description: "Material cost from parameters", FormatRule: "Numbers, parameter names, + - * / ( )", ExampleValue: "length * width * 6"},
		{Key: "labor_formula", Label: "Labor Formula", Description: "Labor cost from parameters", FormatRule: "Numbers, parameter names, + - * / ( )", ExampleValue: "length * width * 4"},
		{Key: "markup", Label: "Markup", Description: "Default markup percentage, blank for the standard default", FormatRule: "Number >= 0", ExampleValue: "15"},
	}
}

// ImportError is a single field-level problem on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult summarises an element import. Nothing is written unless every
// row is valid.
type ImportResult struct {
	TotalRows int                 `json:"total_rows"`
	ValidRows int                 `json:"valid_rows"`
	ErrorRows int                 `json:"error_rows"`
	Imported  int                 `json:"imported"`
	Errors    []ImportError       `json:"errors"`
	Rows      []map[string]string `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// ParseImportFile dispatches on the file extension (.csv or .xlsx).
func ParseImportFile(file io.Reader, fileName string) ([]string, [][]string, error) {
	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		return parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		return parseExcel(file)
	default:
		return nil, nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
}

// mapHeadersToFields maps uploaded column headers to field keys. Unknown
// columns map to "".
func mapHeadersToFields(headers []string, fields []ImportField) []string {
	labelToKey := make(map[string]string, len(fields)*2)
	for _, f := range fields {
		labelToKey[strings.ToLower(f.Label)] = f.Key
		labelToKey[f.Key] = f.Key
	}

	mapped := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that the import template adds for required fields
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))
		mapped[i] = labelToKey[norm]
	}
	return mapped
}

// ValidateElementRows checks every row and collects field errors. existing
// holds the lower-cased names already in the catalog.
func ValidateElementRows(headers []string, dataRows [][]string, existing map[string]bool) *ImportResult {
	fields := ElementImportFields()
	columnKeys := mapHeadersToFields(headers, fields)

	result := &ImportResult{
		TotalRows: len(dataRows),
		Errors:    []ImportError{},
		Rows:      make([]map[string]string, 0, len(dataRows)),
	}
	seen := make(map[string]int)

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string, len(fields))
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			rowData[key] = strings.TrimSpace(row[colIdx])
		}

		var rowErrors []ImportError
		name := rowData["name"]
		lower := strings.ToLower(name)
		switch {
		case name == "":
			rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: "Name", Message: "Name is required"})
		case existing[lower]:
			rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: "Name", Message: fmt.Sprintf("Element %q already exists in the catalog", name)})
		case seen[lower] > 0:
			rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: "Name", Message: fmt.Sprintf("Duplicate of row %d", seen[lower])})
		default:
			seen[lower] = rowNum
		}

		if err := checkFormulaSyntax(rowData["formula"]); err != nil {
			rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: "Formula", Message: err.Error()})
		}
		if err := checkFormulaSyntax(rowData["labor_formula"]); err != nil {
			rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: "Labor Formula", Message: err.Error()})
		}
		if m := rowData["markup"]; m != "" {
			if v, err := cast.ToFloat64E(m); err != nil || v < 0 {
				rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: "Markup", Message: "Markup must be a number >= 0"})
			}
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
		}
		result.Rows = append(result.Rows, rowData)
	}

	result.ValidRows = result.TotalRows - result.ErrorRows
	return result
}

// checkFormulaSyntax evaluates formula with every referenced name bound to 1,
// so only syntax problems remain. Non-finite results are not syntax errors.
func checkFormulaSyntax(formula string) error {
	names := FormulaReferences(formula)
	params := make([]Parameter, 0, len(names))
	for _, n := range names {
		params = append(params, Parameter{Name: n, Value: 1.0, Type: ParamNumber})
	}
	if _, err := ComputeFormula(formula, params); err != nil && !errors.Is(err, ErrNonFiniteResult) {
		return err
	}
	return nil
}

// ImportElements parses, validates and inserts catalog elements from an
// uploaded .csv or .xlsx file. Rows are inserted in one transaction, and only
// when no row has errors.
func ImportElements(app core.App, file io.Reader, fileName string) (*ImportResult, error) {
	headers, dataRows, err := ParseImportFile(file, fileName)
	if err != nil {
		return nil, err
	}

	records, err := app.FindAllRecords("elements")
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}
	existing := make(map[string]bool, len(records))
	for _, r := range records {
		existing[strings.ToLower(r.GetString("name"))] = true
	}

	result := ValidateElementRows(headers, dataRows, existing)
	if result.ErrorRows > 0 {
		return result, nil
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("elements")
		if err != nil {
			return fmt.Errorf("elements collection not found: %w", err)
		}
		for i, rowData := range result.Rows {
			record := core.NewRecord(col)
			for _, f := range ElementImportFields() {
				record.Set(f.Key, rowData[f.Key])
			}
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save failed at row %d: %w", i+2, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("element_import: insert rolled back: %v", err)
		return nil, err
	}

	result.Imported = len(result.Rows)
	return result, nil
}

// GenerateErrorReport creates a downloadable .xlsx file from import errors.
func GenerateErrorReport(errors []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
