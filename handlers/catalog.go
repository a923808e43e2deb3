package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/config"
	"proposalbuilder/services"
)

// HandleCatalog returns all catalog modules, elements and parameters.
func HandleCatalog(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		cat, err := services.LoadCatalog(app)
		if err != nil {
			log.Printf("catalog: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to load catalog")
		}
		return e.JSON(http.StatusOK, cat)
	}
}

// HandleTemplateList returns a summary of every template.
func HandleTemplateList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		list, err := services.ListTemplates(app)
		if err != nil {
			log.Printf("template_list: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to load templates")
		}
		return e.JSON(http.StatusOK, list)
	}
}

type templateResponse struct {
	Template  services.Template    `json:"template"`
	Selection *services.Selection  `json:"selection"`
	Totals    services.QuoteTotals `json:"totals"`
}

// HandleTemplateView returns a template together with the selection it
// produces when applied, priced under the session's global markup.
func HandleTemplateView(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return errorJSON(e, http.StatusBadRequest, "Missing template ID")
		}

		tpl, err := services.LoadTemplate(app, id)
		if err != nil {
			log.Printf("template_view: %v", err)
			return errorJSON(e, http.StatusNotFound, "Template not found")
		}

		sel := services.NewSelection(services.NewEvaluator(app.Logger()))
		if err := sel.SetDefaultMarkup(cfg.DefaultMarkup); err != nil {
			return errorJSON(e, http.StatusInternalServerError, err.Error())
		}
		if err := sel.SetGlobalMarkup(GetGlobalMarkup(e.Request)); err != nil {
			return errorJSON(e, http.StatusBadRequest, err.Error())
		}
		sel.ApplyTemplate(tpl)

		return e.JSON(http.StatusOK, templateResponse{
			Template:  tpl,
			Selection: sel,
			Totals:    sel.Totals(),
		})
	}
}
