package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/config"
	"proposalbuilder/services"
	"proposalbuilder/views"
)

// HandleProposalGet returns a stored proposal with its totals as JSON.
func HandleProposalGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return errorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		sp, err := services.LoadProposal(app, id)
		if err != nil {
			log.Printf("proposal_get: %v", err)
			return errorJSON(e, http.StatusNotFound, "Proposal not found")
		}
		return e.JSON(http.StatusOK, sp)
	}
}

// HandleProposalPage renders the HTML summary of a stored proposal.
func HandleProposalPage(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing proposal ID")
		}

		sp, err := services.LoadProposal(app, id)
		if err != nil {
			log.Printf("proposal_page: %v", err)
			return e.String(http.StatusNotFound, "Proposal not found")
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		component := views.ProposalPage(views.ProposalData{
			Proposal:       sp,
			CurrencySymbol: cfg.CurrencySymbol,
		})
		return component.Render(e.Request.Context(), e.Response)
	}
}
