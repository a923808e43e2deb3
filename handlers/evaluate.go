package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/services"
)

type evaluateRequest struct {
	Formula    string               `json:"formula"`
	Parameters []services.Parameter `json:"parameters"`
}

type evaluateResponse struct {
	Value      float64  `json:"value"`
	Error      string   `json:"error,omitempty"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// HandleEvaluateFormula evaluates a single formula against the posted
// parameters. Evaluation failures still answer 200 with value 0 and the
// reason, matching what a priced element would show.
func HandleEvaluateFormula(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req evaluateRequest
		if err := e.BindBody(&req); err != nil {
			return errorJSON(e, http.StatusBadRequest, "Invalid request body")
		}

		v, err := services.ComputeFormula(req.Formula, req.Parameters)
		if err == nil {
			return e.JSON(http.StatusOK, evaluateResponse{Value: v})
		}

		// Report through the evaluator so the failure is logged the same way
		// as during pricing.
		resp := evaluateResponse{
			Value: services.NewEvaluator(app.Logger()).Evaluate(req.Formula, req.Parameters),
			Error: err.Error(),
		}
		var unresolved *services.UnresolvedParameterError
		if errors.As(err, &unresolved) {
			resp.Unresolved = unresolved.Names
		}
		return e.JSON(http.StatusOK, resp)
	}
}
