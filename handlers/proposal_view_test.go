package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"proposalbuilder/services"
	"proposalbuilder/testhelpers"
)

func TestHandleProposalGet_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProposal(t, app, "Kitchen")
	testhelpers.AddProposalElement(t, app, p.Id, "Tile", "m-floor", "Flooring", 100, 50, 10)

	handler := HandleProposalGet(app)
	req := httptest.NewRequest(http.MethodGet, "/api/proposals/"+p.Id, nil)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var sp services.StoredProposal
	decodeJSON(t, rec, &sp)
	if sp.ID != p.Id || sp.Title != "Kitchen" {
		t.Errorf("proposal = %q %q", sp.ID, sp.Title)
	}
	if sp.Totals.GrandTotal != 165 {
		t.Errorf("grand total = %v, want 165", sp.Totals.GrandTotal)
	}
}

func TestHandleProposalGet_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleProposalGet(app)
	req := httptest.NewRequest(http.MethodGet, "/api/proposals/nonexistent", nil)
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

func TestHandleProposalPage_Renders(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProposal(t, app, "Kitchen <Remodel>")
	testhelpers.AddProposalElement(t, app, p.Id, "Tile", "m-floor", "Flooring", 100, 50, 10)
	testhelpers.AddProposalElement(t, app, p.Id, "Paint", "m-paint", "Painting", 200, 0, 20)

	handler := HandleProposalPage(app, testConfig)
	req := httptest.NewRequest(http.MethodGet, "/proposals/"+p.Id, nil)
	req.SetPathValue("id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"Kitchen &lt;Remodel&gt;",
		"Test Client",
		"Flooring",
		"$165.00",
		"$240.00",
		"$405.00",
		"/proposals/"+p.Id+"/export/excel",
	)
}

func TestHandleProposalPage_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleProposalPage(app, testConfig)
	req := httptest.NewRequest(http.MethodGet, "/proposals/nonexistent", nil)
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
