package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"proposalbuilder/services"
)

func sampleProposal() services.StoredProposal {
	sub := services.ProposalSubmission{
		ProposalDetails: services.ProposalDetails{
			Name:          "Smith Kitchen",
			Title:         "Kitchen <Remodel>",
			ClientName:    "Jane Smith",
			ClientEmail:   "jane@example.com",
			ClientPhone:   "555-0100",
			ClientAddress: "1 Main St",
		},
		Parameters: []services.Parameter{
			{Name: "length", Value: 5.0, Type: services.ParamLinearFeet},
		},
		TemplateElements: []services.SubmittedElement{
			{
				ID:           "x1",
				MaterialCost: 100,
				LaborCost:    50,
				Markup:       10,
				Element:      services.ElementDefinition{ID: "e1", Name: "Tile"},
				Module:       services.Module{ID: "m1", Name: "Flooring"},
			},
		},
	}
	return services.StoredProposal{
		ID:                 "abc123",
		ProposalSubmission: sub,
		Totals:             sub.Totals(),
	}
}

func TestProposalPage_RendersTotals(t *testing.T) {
	var buf bytes.Buffer
	err := ProposalPage(ProposalData{Proposal: sampleProposal(), CurrencySymbol: "$"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	body := buf.String()

	for _, frag := range []string{
		"Kitchen &lt;Remodel&gt;",
		"Jane Smith",
		"Flooring",
		"Tile",
		"$165.00",
		`class="grand-total">$165.00`,
		"/proposals/abc123/export/pdf",
		"length",
	} {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q", frag)
		}
	}
	if strings.Contains(body, "<Remodel>") {
		t.Error("title was not escaped")
	}
}

func TestProposalPage_GlobalMarkupLabel(t *testing.T) {
	p := sampleProposal()
	p.GlobalMarkup = &services.GlobalMarkup{Enabled: true, Percentage: 15}
	p.Totals = p.ProposalSubmission.Totals()

	var buf bytes.Buffer
	if err := ProposalPage(ProposalData{Proposal: p, CurrencySymbol: "$"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, "Markup (global 15%)") {
		t.Error("expected global markup label")
	}
	if !strings.Contains(body, "$172.50") {
		t.Error("expected total with 15% global markup")
	}
}
