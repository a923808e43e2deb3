package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfInk    = &props.Color{Red: 31, Green: 41, Blue: 55}
	pdfMuted  = &props.Color{Red: 107, Green: 114, Blue: 128}
	pdfWhite  = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfBand   = &props.Color{Red: 29, Green: 78, Blue: 216}
	pdfStripe = &props.Color{Red: 239, Green: 246, Blue: 255}
	pdfTotals = &props.Color{Red: 229, Green: 231, Blue: 235}
)

// pdfColumn is one column of the cost table. Widths add up to the 12-unit grid.
type pdfColumn struct {
	title string
	width int
	align align.Type
	value func(r ExportRow, symbol string) string
}

var pdfCostColumns = []pdfColumn{
	{"No.", 1, align.Left, func(r ExportRow, _ string) string { return r.Index }},
	{"Item", 4, align.Left, func(r ExportRow, _ string) string {
		if r.Level == 1 {
			return "   " + r.Description
		}
		return r.Description
	}},
	{"Material", 2, align.Right, func(r ExportRow, s string) string { return FormatMoney(r.MaterialCost, s) }},
	{"Labor", 2, align.Right, func(r ExportRow, s string) string { return FormatMoney(r.LaborCost, s) }},
	{"Markup", 1, align.Right, func(r ExportRow, _ string) string {
		if r.Level == 0 {
			return ""
		}
		return FormatPercent(r.Markup)
	}},
	{"Total", 2, align.Right, func(r ExportRow, s string) string { return FormatMoney(r.Total, s) }},
}

// proposalPDF lays out one proposal document.
type proposalPDF struct {
	m    core.Maroto
	data ExportData
}

// GeneratePDF renders the proposal as an A4 PDF.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "{current} / {total}",
			Place:   props.Bottom,
			Size:    7,
			Color:   pdfMuted,
		}).
		Build()

	doc := &proposalPDF{m: maroto.New(cfg), data: data}
	doc.title()
	doc.parameters()
	doc.costTable()
	doc.totals()
	doc.footnote()

	out, err := doc.m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate proposal pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func (p *proposalPDF) line(height float64, cols ...core.Col) {
	p.m.AddRows(row.New(height).Add(cols...))
}

func (p *proposalPDF) title() {
	p.line(14, col.New(12).Add(text.New(p.data.Title, props.Text{
		Size:  18,
		Style: fontstyle.Bold,
		Color: pdfInk,
	})))

	meta := props.Text{Size: 9, Color: pdfMuted}
	metaRight := meta
	metaRight.Align = align.Right
	p.line(6,
		col.New(8).Add(text.New("Prepared for "+p.data.ClientName, meta)),
		col.New(4).Add(text.New(p.data.CreatedDate, metaRight)),
	)
	if p.data.ClientAddress != "" {
		p.line(5, col.New(12).Add(text.New(p.data.ClientAddress, meta)))
	}
	p.m.AddRows(row.New(5))
}

// parameters prints the measurements the costs were computed from.
func (p *proposalPDF) parameters() {
	if len(p.data.Parameters) == 0 {
		return
	}
	p.line(7, col.New(12).Add(text.New("Measurements", props.Text{Size: 10, Style: fontstyle.Bold, Color: pdfInk})))

	label := props.Text{Size: 8, Color: pdfMuted}
	value := props.Text{Size: 8, Color: pdfInk}
	for _, param := range p.data.Parameters {
		p.line(5,
			col.New(4).Add(text.New(param.Name, label)),
			col.New(8).Add(text.New(param.ValueString(), value)),
		)
	}
	p.m.AddRows(row.New(5))
}

func (p *proposalPDF) costTable() {
	band := &props.Cell{BackgroundColor: pdfBand}
	header := make([]core.Col, 0, len(pdfCostColumns))
	for _, c := range pdfCostColumns {
		header = append(header, col.New(c.width).
			Add(text.New(c.title, props.Text{Size: 8, Style: fontstyle.Bold, Align: c.align, Color: pdfWhite, Top: 1.5})).
			WithStyle(band))
	}
	p.line(8, header...)

	for _, r := range p.data.Rows {
		style := fontstyle.Normal
		size := 7.5
		var cell *props.Cell
		if r.Level == 0 {
			style = fontstyle.Bold
			size = 8.5
		} else {
			cell = &props.Cell{BackgroundColor: pdfStripe}
		}

		cols := make([]core.Col, 0, len(pdfCostColumns))
		for _, c := range pdfCostColumns {
			cl := col.New(c.width).Add(text.New(c.value(r, p.data.CurrencySymbol), props.Text{
				Size:  size,
				Style: style,
				Align: c.align,
				Color: pdfInk,
				Top:   1,
			}))
			if cell != nil {
				cl = cl.WithStyle(cell)
			}
			cols = append(cols, cl)
		}
		p.line(7, cols...)
	}
}

func (p *proposalPDF) totals() {
	p.m.AddRows(row.New(6))

	cell := &props.Cell{BackgroundColor: pdfTotals}
	label := props.Text{Size: 9, Align: align.Right, Color: pdfInk, Top: 1.5}
	amount := label
	amount.Style = fontstyle.Bold

	sym := p.data.CurrencySymbol
	for _, l := range []struct {
		name  string
		value float64
	}{
		{"Material", p.data.MaterialCost},
		{"Labor", p.data.LaborCost},
		{markupLabel(p.data.GlobalMarkup), p.data.MarkupAmount},
		{"Grand Total", p.data.GrandTotal},
	} {
		p.line(8,
			col.New(6),
			col.New(3).Add(text.New(l.name, label)).WithStyle(cell),
			col.New(3).Add(text.New(FormatMoney(l.value, sym), amount)).WithStyle(cell),
		)
	}
}

func (p *proposalPDF) footnote() {
	p.m.AddRows(row.New(8))
	note := "Prices include the markup shown per item."
	if p.data.GlobalMarkup.Enabled {
		note = fmt.Sprintf("Prices include a %s markup on every item.", FormatPercent(p.data.GlobalMarkup.Percentage))
	}
	p.line(5, col.New(12).Add(text.New(note, props.Text{Size: 7, Color: pdfMuted})))
}
