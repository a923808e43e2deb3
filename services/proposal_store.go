package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// StoredProposal is a persisted proposal read back with its parameters and
// elements.
type StoredProposal struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	ProposalSubmission
	Totals QuoteTotals `json:"totals"`
}

// SaveProposal persists a validated submission with its parameters and
// elements in one transaction and returns the new proposal id. Costs must
// already be recomputed by the caller.
func SaveProposal(app core.App, sub ProposalSubmission) (string, error) {
	totals := sub.Totals()
	var proposalID string

	err := app.RunInTransaction(func(txApp core.App) error {
		proposalsCol, err := txApp.FindCollectionByNameOrId("proposals")
		if err != nil {
			return fmt.Errorf("could not find proposals collection: %w", err)
		}
		paramsCol, err := txApp.FindCollectionByNameOrId("proposal_parameters")
		if err != nil {
			return fmt.Errorf("could not find proposal_parameters collection: %w", err)
		}
		elementsCol, err := txApp.FindCollectionByNameOrId("proposal_elements")
		if err != nil {
			return fmt.Errorf("could not find proposal_elements collection: %w", err)
		}

		rec := core.NewRecord(proposalsCol)
		rec.Set("name", sub.Name)
		rec.Set("title", sub.Title)
		rec.Set("description", sub.Description)
		rec.Set("client_name", sub.ClientName)
		rec.Set("client_email", sub.ClientEmail)
		rec.Set("client_phone", sub.ClientPhone)
		rec.Set("client_address", sub.ClientAddress)
		rec.Set("image", sub.Image)
		if sub.GlobalMarkup != nil {
			rec.Set("global_markup_enabled", sub.GlobalMarkup.Enabled)
			rec.Set("global_markup_percentage", sub.GlobalMarkup.Percentage)
		}
		rec.Set("grand_total", totals.GrandTotal)
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save proposal: %w", err)
		}

		for i, p := range sub.Parameters {
			pr := core.NewRecord(paramsCol)
			pr.Set("proposal", rec.Id)
			pr.Set("parameter_id", p.ID)
			pr.Set("name", p.Name)
			pr.Set("value", p.ValueString())
			pr.Set("type", string(p.Type))
			pr.Set("sort_order", i+1)
			if err := txApp.Save(pr); err != nil {
				return fmt.Errorf("save parameter %s: %w", p.Name, err)
			}
		}

		for i, e := range sub.TemplateElements {
			er := core.NewRecord(elementsCol)
			er.Set("proposal", rec.Id)
			er.Set("element_id", e.Element.ID)
			er.Set("element_name", e.Element.Name)
			er.Set("element_description", e.Element.Description)
			er.Set("element_formula", e.Element.Formula)
			er.Set("element_labor_formula", e.Element.LaborFormula)
			er.Set("module_id", e.Module.ID)
			er.Set("module_name", e.Module.Name)
			er.Set("module_description", e.Module.Description)
			er.Set("formula", e.Formula)
			er.Set("labor_formula", e.LaborFormula)
			er.Set("material_cost", e.MaterialCost)
			er.Set("labor_cost", e.LaborCost)
			er.Set("markup", e.Markup)
			er.Set("sort_order", i+1)
			if err := txApp.Save(er); err != nil {
				return fmt.Errorf("save element %s: %w", e.Element.Name, err)
			}
		}

		proposalID = rec.Id
		return nil
	})
	if err != nil {
		return "", err
	}
	return proposalID, nil
}

// LoadProposal reads a stored proposal and aggregates its elements.
func LoadProposal(app core.App, id string) (StoredProposal, error) {
	rec, err := app.FindRecordById("proposals", id)
	if err != nil {
		return StoredProposal{}, fmt.Errorf("proposal %s not found: %w", id, err)
	}

	sp := StoredProposal{
		ID:      rec.Id,
		Created: rec.GetDateTime("created").Time(),
		ProposalSubmission: ProposalSubmission{
			ProposalDetails: ProposalDetails{
				Name:          rec.GetString("name"),
				Title:         rec.GetString("title"),
				Description:   rec.GetString("description"),
				ClientName:    rec.GetString("client_name"),
				ClientEmail:   rec.GetString("client_email"),
				ClientPhone:   rec.GetString("client_phone"),
				ClientAddress: rec.GetString("client_address"),
				Image:         rec.GetString("image"),
			},
			Parameters:       []Parameter{},
			TemplateElements: []SubmittedElement{},
		},
	}
	if rec.GetBool("global_markup_enabled") {
		sp.GlobalMarkup = &GlobalMarkup{
			Enabled:    true,
			Percentage: rec.GetFloat("global_markup_percentage"),
		}
	}

	params, err := app.FindRecordsByFilter("proposal_parameters", "proposal = {:id}", "sort_order", 0, 0, dbx.Params{"id": rec.Id})
	if err != nil {
		return sp, fmt.Errorf("load proposal parameters: %w", err)
	}
	for _, p := range params {
		sp.Parameters = append(sp.Parameters, parameterFromRecord(p, p.GetString("parameter_id")))
	}

	elements, err := app.FindAllRecords("proposal_elements", dbx.HashExp{"proposal": rec.Id})
	if err != nil {
		return sp, fmt.Errorf("load proposal elements: %w", err)
	}
	sortBySortOrder(elements)
	for _, e := range elements {
		sp.TemplateElements = append(sp.TemplateElements, SubmittedElement{
			ID:           e.Id,
			Formula:      e.GetString("formula"),
			LaborFormula: e.GetString("labor_formula"),
			Markup:       e.GetInt("markup"),
			MaterialCost: e.GetFloat("material_cost"),
			LaborCost:    e.GetFloat("labor_cost"),
			Element: ElementDefinition{
				ID:           e.GetString("element_id"),
				Name:         e.GetString("element_name"),
				Description:  e.GetString("element_description"),
				Formula:      e.GetString("element_formula"),
				LaborFormula: e.GetString("element_labor_formula"),
			},
			Module: Module{
				ID:          e.GetString("module_id"),
				Name:        e.GetString("module_name"),
				Description: e.GetString("module_description"),
			},
		})
	}

	sp.Totals = sp.ProposalSubmission.Totals()
	return sp, nil
}

// BuildExportData converts a stored proposal for the Excel and PDF exports.
func BuildExportData(sp StoredProposal, currencySymbol string) ExportData {
	data := ExportData{
		Title:          sp.Title,
		ClientName:     sp.ClientName,
		ClientAddress:  sp.ClientAddress,
		CreatedDate:    sp.Created.Format("2006-01-02"),
		CurrencySymbol: currencySymbol,
		Parameters:     sp.Parameters,
		Rows:           BuildExportRows(sp.Totals),
		MaterialCost:   sp.Totals.MaterialCost,
		LaborCost:      sp.Totals.LaborCost,
		MarkupAmount:   sp.Totals.MarkupAmount,
		GrandTotal:     sp.Totals.GrandTotal,
	}
	if sp.GlobalMarkup != nil {
		data.GlobalMarkup = *sp.GlobalMarkup
	}
	if data.Title == "" {
		data.Title = sp.Name
	}
	return data
}
