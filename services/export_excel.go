package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateExcel creates an Excel workbook from the given ExportData and
// returns the file contents. The first sheet holds the priced elements, the
// second the parameters they were computed from.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars).
	sheetName := data.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Proposal"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Columns A through F.
	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 40, 16, 16, 10, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// Module rows: bold with borders.
	moduleStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create module style: %w", err)
	}

	elementStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create element style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if data.ClientName != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge client: %w", err)
		}
		f.SetCellValue(sheetName, "A2", sanitizeExcelCell("Client: "+data.ClientName))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Description", "Material", "Labor", "Markup", "Total"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		desc := r.Description
		if r.Level == 1 {
			desc = "  " + desc
		}
		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(desc))
		f.SetCellValue(sheetName, "C"+rowStr, FormatMoney(r.MaterialCost, data.CurrencySymbol))
		f.SetCellValue(sheetName, "D"+rowStr, FormatMoney(r.LaborCost, data.CurrencySymbol))
		if r.Level == 1 {
			f.SetCellValue(sheetName, "E"+rowStr, FormatPercent(r.Markup))
		}
		f.SetCellValue(sheetName, "F"+rowStr, FormatMoney(r.Total, data.CurrencySymbol))

		style := elementStyle
		if r.Level == 0 {
			style = moduleStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)

		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++

	summary := []struct {
		label string
		value float64
	}{
		{"Material:", data.MaterialCost},
		{"Labor:", data.LaborCost},
		{markupLabel(data.GlobalMarkup) + ":", data.MarkupAmount},
		{"Grand Total:", data.GrandTotal},
	}
	for _, s := range summary {
		summaryRow := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "E"+summaryRow, s.label)
		f.SetCellStyle(sheetName, "E"+summaryRow, "E"+summaryRow, summaryLabelStyle)
		f.SetCellValue(sheetName, "F"+summaryRow, FormatMoney(s.value, data.CurrencySymbol))
		f.SetCellStyle(sheetName, "F"+summaryRow, "F"+summaryRow, summaryValueStyle)
		row++
	}

	// ── Parameters sheet ────────────────────────────────────────────────

	if len(data.Parameters) > 0 {
		const paramSheet = "Parameters"
		if _, err := f.NewSheet(paramSheet); err != nil {
			return nil, fmt.Errorf("create parameters sheet: %w", err)
		}
		for i, h := range []string{"Name", "Value", "Type"} {
			f.SetCellValue(paramSheet, fmt.Sprintf("%s1", columns[i]), h)
		}
		f.SetCellStyle(paramSheet, "A1", "C1", headerStyle)
		for i, p := range data.Parameters {
			r := fmt.Sprintf("%d", i+2)
			f.SetCellValue(paramSheet, "A"+r, sanitizeExcelCell(p.Name))
			f.SetCellValue(paramSheet, "B"+r, sanitizeExcelCell(p.ValueString()))
			f.SetCellValue(paramSheet, "C"+r, string(p.Type))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// markupLabel describes the markup line of the summary.
func markupLabel(g GlobalMarkup) string {
	if g.Enabled {
		return fmt.Sprintf("Markup (global %s)", FormatPercent(g.Percentage))
	}
	return "Markup"
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
