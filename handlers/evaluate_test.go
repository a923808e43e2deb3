package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"proposalbuilder/testhelpers"
)

func TestHandleEvaluateFormula(t *testing.T) {
	params := []map[string]any{
		{"name": "length", "value": 5, "type": "linear feet"},
		{"name": "width", "value": 3, "type": "linear feet"},
		{"name": "finish", "value": "matte", "type": "text"},
	}

	tests := []struct {
		name           string
		formula        string
		wantValue      float64
		wantError      bool
		wantUnresolved []string
	}{
		{"simple product", "length * width", 15, false, nil},
		{"precedence", "2 * (length + width) + 1", 17, false, nil},
		{"empty formula", "", 0, false, nil},
		{"unknown name", "length * depth", 0, true, []string{"depth"}},
		{"text parameter", "finish * 2", 0, true, nil},
		{"division by zero", "length / 0", 0, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			handler := HandleEvaluateFormula(app)

			req := newJSONRequest(t, http.MethodPost, "/api/formulas/evaluate", map[string]any{
				"formula":    tt.formula,
				"parameters": params,
			})
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, req, rec)

			if err := handler(e); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var resp evaluateResponse
			decodeJSON(t, rec, &resp)
			if resp.Value != tt.wantValue {
				t.Errorf("value = %v, want %v", resp.Value, tt.wantValue)
			}
			if (resp.Error != "") != tt.wantError {
				t.Errorf("error = %q, wantError %v", resp.Error, tt.wantError)
			}
			if diff := cmp.Diff(tt.wantUnresolved, resp.Unresolved); diff != "" {
				t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleEvaluateFormula_BadBody(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleEvaluateFormula(app)

	req := newJSONRequest(t, http.MethodPost, "/api/formulas/evaluate", []int{1, 2})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
