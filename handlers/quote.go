package handlers

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/config"
	"proposalbuilder/services"
)

// quoteElement places one element in a module. Nil overrides keep the
// definition's formulas and markup.
type quoteElement struct {
	Element      services.ElementDefinition `json:"element"`
	Module       services.Module            `json:"module"`
	Formula      *string                    `json:"formula,omitempty"`
	LaborFormula *string                    `json:"labor_formula,omitempty"`
	Markup       *float64                   `json:"markup,omitempty"`
}

type quoteRequest struct {
	Parameters   []services.Parameter   `json:"parameters"`
	Elements     []quoteElement         `json:"elements"`
	GlobalMarkup *services.GlobalMarkup `json:"global_markup,omitempty"`
}

type quoteResponse struct {
	Elements []services.PricedElement `json:"elements"`
	Totals   services.QuoteTotals     `json:"totals"`
}

// HandleQuotePreview prices a selection without persisting it. The global
// markup comes from the request when given, otherwise from the session.
func HandleQuotePreview(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req quoteRequest
		if err := e.BindBody(&req); err != nil {
			return errorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		sel, err := buildQuoteSelection(app, cfg, req, GetGlobalMarkup(e.Request))
		if err != nil {
			return validationJSON(e, err)
		}

		return e.JSON(http.StatusOK, quoteResponse{
			Elements: sel.Elements,
			Totals:   sel.Totals(),
		})
	}
}

// buildQuoteSelection replays the request onto a fresh Selection: parameters
// first, then modules and elements, then per-element overrides.
func buildQuoteSelection(app *pocketbase.PocketBase, cfg config.Config, req quoteRequest, session services.GlobalMarkup) (*services.Selection, error) {
	if err := services.ValidateParameters(req.Parameters); err != nil {
		return nil, err
	}

	sel := services.NewSelection(services.NewEvaluator(app.Logger()))
	if err := sel.SetDefaultMarkup(cfg.DefaultMarkup); err != nil {
		return nil, err
	}

	gm := session
	if req.GlobalMarkup != nil {
		gm = *req.GlobalMarkup
	}
	if err := sel.SetGlobalMarkup(gm); err != nil {
		return nil, validation.Errors{"global_markup": err}
	}

	for _, p := range req.Parameters {
		if err := sel.AddParameter(p); err != nil {
			return nil, err
		}
	}

	errs := validation.Errors{}
	for i, qe := range req.Elements {
		key := "elements." + strconv.Itoa(i)
		if qe.Module.ID == "" {
			errs[key] = validation.NewError("validation_required", "module is required")
			continue
		}
		sel.SelectModule(qe.Module)
		if _, ok := sel.Element(qe.Element.ID, qe.Module.ID); ok {
			errs[key] = validation.NewError("validation_duplicate", "element appears twice in module")
			continue
		}
		if _, err := sel.ToggleElement(qe.Element, qe.Module.ID); err != nil {
			errs[key] = err
			continue
		}
		if qe.Formula != nil {
			if err := sel.SetFormula(qe.Element.ID, qe.Module.ID, *qe.Formula); err != nil {
				errs[key] = err
				continue
			}
		}
		if qe.LaborFormula != nil {
			if err := sel.SetLaborFormula(qe.Element.ID, qe.Module.ID, *qe.LaborFormula); err != nil {
				errs[key] = err
				continue
			}
		}
		if qe.Markup != nil {
			if err := sel.SetMarkup(qe.Element.ID, qe.Module.ID, *qe.Markup); err != nil {
				errs[key] = err
			}
		}
	}
	if err := errs.Filter(); err != nil {
		return nil, err
	}
	return sel, nil
}
