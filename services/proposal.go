package services

import (
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ProposalDetails are the client-facing fields entered alongside the pricing.
type ProposalDetails struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	ClientPhone   string `json:"clientPhone"`
	ClientAddress string `json:"clientAddress"`
	Image         string `json:"image"`
}

// SubmittedElement is one priced element in the submission payload.
type SubmittedElement struct {
	ID           string            `json:"id"`
	Formula      string            `json:"formula"`
	LaborFormula string            `json:"labor_formula"`
	Markup       int               `json:"markup"`
	MaterialCost float64           `json:"material_cost"`
	LaborCost    float64           `json:"labor_cost"`
	Element      ElementDefinition `json:"element"`
	Module       Module            `json:"module"`
}

// ProposalSubmission is the finalized payload accepted by the submission
// sink.
type ProposalSubmission struct {
	ProposalDetails
	Parameters       []Parameter        `json:"parameters"`
	TemplateElements []SubmittedElement `json:"template_elements"`
	GlobalMarkup     *GlobalMarkup      `json:"global_markup,omitempty"`
}

// Submission builds the payload for the current selection. Markups are
// rounded to whole percentages as the payload carries them as integers.
func (s *Selection) Submission(details ProposalDetails) ProposalSubmission {
	sub := ProposalSubmission{
		ProposalDetails:  details,
		Parameters:       append([]Parameter{}, s.Parameters...),
		TemplateElements: make([]SubmittedElement, 0, len(s.Elements)),
	}
	if s.GlobalMarkup.Enabled {
		g := s.GlobalMarkup
		sub.GlobalMarkup = &g
	}
	for _, e := range s.Elements {
		sub.TemplateElements = append(sub.TemplateElements, SubmittedElement{
			ID:           e.ID,
			Formula:      e.Formula,
			LaborFormula: e.LaborFormula,
			Markup:       int(math.Round(e.Markup)),
			MaterialCost: e.MaterialCost,
			LaborCost:    e.LaborCost,
			Element:      e.Element,
			Module:       e.Module,
		})
	}
	return sub
}

// Validate checks required client fields, parameter names, markups, and that
// formulas only reference numeric parameters. The returned error is a
// validation.Errors keyed by JSON field name.
func (p ProposalSubmission) Validate() error {
	errs := validation.Errors{}
	if err := validation.ValidateStruct(&p.ProposalDetails,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.ClientName, validation.Required),
		validation.Field(&p.ClientEmail, validation.Required, is.EmailFormat),
		validation.Field(&p.ClientPhone, validation.Required),
		validation.Field(&p.ClientAddress, validation.Required),
		validation.Field(&p.Image, is.URL),
	); err != nil {
		if fieldErrs, ok := err.(validation.Errors); ok {
			for k, v := range fieldErrs {
				errs[k] = v
			}
		} else {
			return err
		}
	}

	if err := ValidateParameters(p.Parameters); err != nil {
		if fieldErrs, ok := err.(validation.Errors); ok {
			for k, v := range fieldErrs {
				errs[k] = v
			}
		}
	}

	if p.GlobalMarkup != nil && p.GlobalMarkup.Percentage < 0 {
		errs["global_markup"] = ErrNegativeMarkup
	}

	byName := make(map[string]Parameter, len(p.Parameters))
	for _, param := range p.Parameters {
		byName[param.Name] = param
	}
	seen := make(map[[2]string]bool, len(p.TemplateElements))
	for i, e := range p.TemplateElements {
		key := fmt.Sprintf("template_elements.%d", i)
		switch {
		case e.Module.ID == "":
			errs[key] = fmt.Errorf("module is required")
		case e.Markup < 0:
			errs[key] = ErrNegativeMarkup
		case seen[[2]string{e.Element.ID, e.Module.ID}]:
			errs[key] = fmt.Errorf("element %s appears twice in module %s", e.Element.Name, e.Module.Name)
		default:
			if err := checkNumericReferences(e.Formula, byName); err != nil {
				errs[key+".formula"] = err
			} else if err := checkNumericReferences(e.LaborFormula, byName); err != nil {
				errs[key+".labor_formula"] = err
			}
		}
		seen[[2]string{e.Element.ID, e.Module.ID}] = true
	}

	return errs.Filter()
}

// checkNumericReferences fails when formula references a parameter whose
// value is not numeric. Unknown names are left to the evaluator, which
// degrades them to 0.
func checkNumericReferences(formula string, params map[string]Parameter) error {
	for _, name := range FormulaReferences(formula) {
		p, ok := params[name]
		if !ok {
			continue
		}
		if _, err := p.Number(); err != nil {
			return err
		}
	}
	return nil
}

// Recompute re-evaluates every element's costs from its formulas against the
// submitted parameters. Client-supplied costs are overwritten.
func (p *ProposalSubmission) Recompute(ev *Evaluator) {
	if ev == nil {
		ev = NewEvaluator(nil)
	}
	for i := range p.TemplateElements {
		e := &p.TemplateElements[i]
		e.MaterialCost = ev.Evaluate(e.Formula, p.Parameters)
		e.LaborCost = ev.Evaluate(e.LaborFormula, p.Parameters)
	}
}

// PricedElements converts the submitted elements for aggregation.
func (p ProposalSubmission) PricedElements() []PricedElement {
	out := make([]PricedElement, 0, len(p.TemplateElements))
	for _, e := range p.TemplateElements {
		out = append(out, PricedElement{
			ID:           e.ID,
			Element:      e.Element,
			Module:       e.Module,
			Formula:      e.Formula,
			LaborFormula: e.LaborFormula,
			MaterialCost: e.MaterialCost,
			LaborCost:    e.LaborCost,
			Markup:       float64(e.Markup),
		})
	}
	return out
}

// Totals aggregates the submitted elements.
func (p ProposalSubmission) Totals() QuoteTotals {
	var g GlobalMarkup
	if p.GlobalMarkup != nil {
		g = *p.GlobalMarkup
	}
	return CalcQuoteTotals(p.PricedElements(), g)
}
