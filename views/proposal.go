// Package views renders server-side HTML with the templ runtime.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"proposalbuilder/services"
)

// ProposalData is everything the proposal summary page shows.
type ProposalData struct {
	Proposal       services.StoredProposal
	CurrencySymbol string
}

// ProposalPage renders a standalone summary of a stored proposal: client
// details, a module/element cost table and the totals.
func ProposalPage(data ProposalData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := data.Proposal
		sym := data.CurrencySymbol
		money := func(v float64) string { return templ.EscapeString(services.FormatMoney(v, sym)) }

		title := p.Title
		if title == "" {
			title = p.Name
		}

		bw := &errWriter{w: w}
		bw.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body>`, templ.EscapeString(title))
		bw.printf(`<main class="proposal" id="proposal-%s">`, templ.EscapeString(p.ID))
		bw.printf(`<h1>%s</h1>`, templ.EscapeString(title))
		if p.Description != "" {
			bw.printf(`<p class="description">%s</p>`, templ.EscapeString(p.Description))
		}

		bw.printf(`<section class="client"><h2>Client</h2><dl>`)
		for _, f := range []struct{ label, value string }{
			{"Name", p.ClientName},
			{"Email", p.ClientEmail},
			{"Phone", p.ClientPhone},
			{"Address", p.ClientAddress},
		} {
			bw.printf(`<dt>%s</dt><dd>%s</dd>`, f.label, templ.EscapeString(f.value))
		}
		bw.printf(`</dl></section>`)

		if len(p.Parameters) > 0 {
			bw.printf(`<section class="parameters"><h2>Parameters</h2><ul>`)
			for _, param := range p.Parameters {
				bw.printf(`<li><span class="name">%s</span> = <span class="value">%s</span> <span class="type">%s</span></li>`,
					templ.EscapeString(param.Name), templ.EscapeString(param.ValueString()), templ.EscapeString(string(param.Type)))
			}
			bw.printf(`</ul></section>`)
		}

		bw.printf(`<table class="costs"><thead><tr><th>#</th><th>Description</th><th>Material</th><th>Labor</th><th>Markup</th><th>Total</th></tr></thead><tbody>`)
		for _, r := range services.BuildExportRows(p.Totals) {
			if r.Level == 0 {
				bw.printf(`<tr class="module"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td></td><td>%s</td></tr>`,
					r.Index, templ.EscapeString(r.Description), money(r.MaterialCost), money(r.LaborCost), money(r.Total))
				continue
			}
			bw.printf(`<tr class="element"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				r.Index, templ.EscapeString(r.Description), money(r.MaterialCost), money(r.LaborCost),
				services.FormatPercent(r.Markup), money(r.Total))
		}
		bw.printf(`</tbody></table>`)

		markupLabel := "Markup"
		if p.GlobalMarkup != nil && p.GlobalMarkup.Enabled {
			markupLabel = fmt.Sprintf("Markup (global %s)", services.FormatPercent(p.GlobalMarkup.Percentage))
		}
		bw.printf(`<dl class="totals">`)
		bw.printf(`<dt>Material</dt><dd>%s</dd>`, money(p.Totals.MaterialCost))
		bw.printf(`<dt>Labor</dt><dd>%s</dd>`, money(p.Totals.LaborCost))
		bw.printf(`<dt>%s</dt><dd>%s</dd>`, markupLabel, money(p.Totals.MarkupAmount))
		bw.printf(`<dt>Grand Total</dt><dd class="grand-total">%s</dd>`, money(p.Totals.GrandTotal))
		bw.printf(`</dl>`)

		bw.printf(`<nav class="exports"><a href="/proposals/%[1]s/export/excel">Excel</a> <a href="/proposals/%[1]s/export/pdf">PDF</a></nav>`,
			templ.EscapeString(p.ID))
		bw.printf(`</main></body></html>`)
		return bw.err
	})
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
