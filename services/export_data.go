package services

import "fmt"

// ExportRow represents a single row in the proposal export: a module header
// or an element line.
type ExportRow struct {
	Level        int    // 0 = module, 1 = element
	Index        string // "1", "1.1", "1.2" etc
	Description  string
	MaterialCost float64
	LaborCost    float64
	Markup       float64 // effective percentage; unused on module rows
	Total        float64
}

// ExportData holds all data needed for export.
type ExportData struct {
	Title          string
	ClientName     string
	ClientAddress  string
	CreatedDate    string
	CurrencySymbol string
	GlobalMarkup   GlobalMarkup
	Parameters     []Parameter
	Rows           []ExportRow
	MaterialCost   float64
	LaborCost      float64
	MarkupAmount   float64
	GrandTotal     float64
}

// BuildExportRows flattens quote totals into module rows followed by their
// element rows, in aggregation order.
func BuildExportRows(totals QuoteTotals) []ExportRow {
	var rows []ExportRow
	for mi, m := range totals.Modules {
		rows = append(rows, ExportRow{
			Level:        0,
			Index:        fmt.Sprintf("%d", mi+1),
			Description:  m.Name,
			MaterialCost: m.MaterialCost,
			LaborCost:    m.LaborCost,
			Total:        m.Total,
		})
		n := 0
		for _, e := range totals.Elements {
			if e.ModuleID != m.ModuleID {
				continue
			}
			n++
			rows = append(rows, ExportRow{
				Level:        1,
				Index:        fmt.Sprintf("%d.%d", mi+1, n),
				Description:  e.Name,
				MaterialCost: e.MaterialCost,
				LaborCost:    e.LaborCost,
				Markup:       e.Markup,
				Total:        e.Total,
			})
		}
	}
	return rows
}
