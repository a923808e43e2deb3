package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProposalDelete removes a proposal. Its parameters and elements are
// removed by cascade.
func HandleProposalDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return errorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		record, err := app.FindRecordById("proposals", id)
		if err != nil {
			return errorJSON(e, http.StatusNotFound, "Proposal not found")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("proposal_delete: failed to delete proposal %s: %v", id, err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to delete proposal")
		}

		return e.NoContent(http.StatusNoContent)
	}
}
