package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"proposalbuilder/testhelpers"
)

func TestHandleProposalDelete_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProposal(t, app, "Delete Me")
	el := testhelpers.AddProposalElement(t, app, p.Id, "Tile", "m-floor", "Flooring", 100, 50, 10)

	handler := HandleProposalDelete(app)

	req := httptest.NewRequest(http.MethodDelete, "/api/proposals/"+p.Id, nil)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()

	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	// Verify deleted
	if _, err := app.FindRecordById("proposals", p.Id); err == nil {
		t.Error("expected proposal to be deleted")
	}
	if _, err := app.FindRecordById("proposal_elements", el.Id); err == nil {
		t.Error("expected proposal elements to be deleted by cascade")
	}
}

func TestHandleProposalDelete_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleProposalDelete(app)

	req := httptest.NewRequest(http.MethodDelete, "/api/proposals/nonexistent", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()

	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
