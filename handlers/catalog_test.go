package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"

	"proposalbuilder/collections"
	"proposalbuilder/config"
	"proposalbuilder/services"
	"proposalbuilder/testhelpers"
)

var testConfig = config.Config{
	DefaultMarkup:  services.DefaultMarkup,
	CurrencySymbol: "$",
}

// createFlooringTemplate builds a two-module template: tile in Flooring at
// the default markup and paint in Painting at a placement markup of 18.
func createFlooringTemplate(t *testing.T, app *pocketbase.PocketBase) string {
	t.Helper()
	floor := testhelpers.CreateTestModule(t, app, "Flooring")
	paint := testhelpers.CreateTestModule(t, app, "Painting")
	tile := testhelpers.CreateTestElement(t, app, "Tile", "length * width * 6", "length * width * 4", "")
	coat := testhelpers.CreateTestElement(t, app, "Paint", "2 * (length + width) * height", "", "")

	tpl := testhelpers.CreateTestTemplate(t, app, "Kitchen")
	testhelpers.AddTemplateModule(t, app, tpl.Id, floor.Id, 1)
	testhelpers.AddTemplateModule(t, app, tpl.Id, paint.Id, 2)
	testhelpers.AddTemplateParameter(t, app, tpl.Id, "length", "5", "linear feet", 1)
	testhelpers.AddTemplateParameter(t, app, tpl.Id, "width", "3", "linear feet", 2)
	testhelpers.AddTemplateParameter(t, app, tpl.Id, "height", "8", "linear feet", 3)
	testhelpers.AddTemplateElement(t, app, tpl.Id, tile.Id, floor.Id, "", 1)
	testhelpers.AddTemplateElement(t, app, tpl.Id, coat.Id, paint.Id, "18", 2)
	return tpl.Id
}

func TestHandleCatalog_Seeded(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	handler := HandleCatalog(app)
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var cat services.Catalog
	decodeJSON(t, rec, &cat)
	if len(cat.Modules) != 7 || len(cat.Elements) != 9 || len(cat.Parameters) != 6 {
		t.Errorf("catalog sizes = %d/%d/%d, want 7/9/6", len(cat.Modules), len(cat.Elements), len(cat.Parameters))
	}
}

func TestHandleTemplateList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestTemplate(t, app, "Zeta")
	testhelpers.CreateTestTemplate(t, app, "Alpha")

	handler := HandleTemplateList(app)
	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var list []services.TemplateSummary
	decodeJSON(t, rec, &list)
	if len(list) != 2 || list[0].Name != "Alpha" || list[1].Name != "Zeta" {
		t.Errorf("templates = %+v, want Alpha then Zeta", list)
	}
}

func TestHandleTemplateView(t *testing.T) {
	tests := []struct {
		name    string
		session services.GlobalMarkup
		want    float64
	}{
		// tile (90+60)*1.10 + paint 128*1.18
		{"element markups", services.GlobalMarkup{}, 316.04},
		// (150+128)*1.15
		{"session global markup", services.GlobalMarkup{Enabled: true, Percentage: 15}, 319.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			id := createFlooringTemplate(t, app)

			handler := HandleTemplateView(app, testConfig)
			req := httptest.NewRequest(http.MethodGet, "/api/templates/"+id, nil)
			req.SetPathValue("id", id)
			req = withGlobalMarkup(req, tt.session)
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, req, rec)

			if err := handler(e); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp struct {
				Template  services.Template    `json:"template"`
				Selection services.Selection   `json:"selection"`
				Totals    services.QuoteTotals `json:"totals"`
			}
			decodeJSON(t, rec, &resp)
			if resp.Template.ID != id || len(resp.Selection.Elements) != 2 {
				t.Errorf("template %q with %d elements", resp.Template.ID, len(resp.Selection.Elements))
			}
			if resp.Selection.GlobalMarkup != tt.session {
				t.Errorf("selection global markup = %+v, want %+v", resp.Selection.GlobalMarkup, tt.session)
			}
			if math.Abs(resp.Totals.GrandTotal-tt.want) > 0.001 {
				t.Errorf("grand total = %v, want %v", resp.Totals.GrandTotal, tt.want)
			}
		})
	}
}

func TestHandleTemplateView_ConfiguredDefaultMarkup(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	id := createFlooringTemplate(t, app)

	cfg := testConfig
	cfg.DefaultMarkup = 0
	handler := HandleTemplateView(app, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/templates/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp templateResponse
	decodeJSON(t, rec, &resp)
	// tile 150 at 0% + paint 128*1.18
	if math.Abs(resp.Totals.GrandTotal-301.04) > 0.001 {
		t.Errorf("grand total = %v, want 301.04", resp.Totals.GrandTotal)
	}
}

func TestHandleTemplateView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleTemplateView(app, testConfig)
	req := httptest.NewRequest(http.MethodGet, "/api/templates/nonexistent", nil)
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
