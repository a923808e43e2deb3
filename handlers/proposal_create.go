package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/services"
)

// HandleProposalCreate is the submission sink. It validates the payload,
// recomputes every element's costs from its formulas (client-supplied costs
// are discarded) and persists the proposal. A submission without a global
// markup takes the session's setting when that is enabled.
func HandleProposalCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var sub services.ProposalSubmission
		if err := e.BindBody(&sub); err != nil {
			return errorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		if sub.GlobalMarkup == nil {
			if gm := GetGlobalMarkup(e.Request); gm.Enabled {
				sub.GlobalMarkup = &gm
			}
		}

		if err := sub.Validate(); err != nil {
			return validationJSON(e, err)
		}

		sub.Recompute(services.NewEvaluator(app.Logger()))

		id, err := services.SaveProposal(app, sub)
		if err != nil {
			log.Printf("proposal_create: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to save proposal")
		}

		return e.JSON(http.StatusCreated, map[string]any{
			"id":          id,
			"grand_total": sub.Totals().GrandTotal,
		})
	}
}
