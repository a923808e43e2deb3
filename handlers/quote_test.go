package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"proposalbuilder/testhelpers"
)

func quoteParams() []map[string]any {
	return []map[string]any{
		{"name": "length", "value": 5, "type": "linear feet"},
		{"name": "width", "value": 3, "type": "linear feet"},
		{"name": "height", "value": 8, "type": "linear feet"},
	}
}

func quoteElements() []map[string]any {
	return []map[string]any{
		{
			"element": map[string]any{"id": "e-tile", "name": "Tile", "formula": "length * width * 6", "labor_formula": "length * width * 4"},
			"module":  map[string]any{"id": "m-floor", "name": "Flooring"},
		},
		{
			"element": map[string]any{"id": "e-paint", "name": "Paint", "formula": "2 * (length + width) * height"},
			"module":  map[string]any{"id": "m-paint", "name": "Painting"},
			"markup":  18,
		},
	}
}

func runQuotePreview(t *testing.T, body map[string]any, session *testSession) *httptest.ResponseRecorder {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	cfg := testConfig
	if session != nil {
		cfg.DefaultMarkup = session.defaultMarkup
	}
	handler := HandleQuotePreview(app, cfg)

	req := newJSONRequest(t, http.MethodPost, "/api/quotes/preview", body)
	if session != nil {
		req = withGlobalMarkup(req, session.globalMarkup)
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestHandleQuotePreview(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		session *testSession
		want    float64
	}{
		{
			name: "element markups",
			body: map[string]any{"parameters": quoteParams(), "elements": quoteElements()},
			// (90+60)*1.10 + 128*1.18
			want: 316.04,
		},
		{
			name:    "configured default markup",
			body:    map[string]any{"parameters": quoteParams(), "elements": quoteElements()},
			session: &testSession{defaultMarkup: 0},
			want:    301.04,
		},
		{
			name:    "session global markup",
			body:    map[string]any{"parameters": quoteParams(), "elements": quoteElements()},
			session: &testSession{defaultMarkup: 10, globalMarkup: globalMarkup(true, 15)},
			want:    319.7,
		},
		{
			name: "request global markup wins over session",
			body: map[string]any{
				"parameters":    quoteParams(),
				"elements":      quoteElements(),
				"global_markup": map[string]any{"enabled": true, "percentage": 0},
			},
			session: &testSession{defaultMarkup: 10, globalMarkup: globalMarkup(true, 15)},
			want:    278,
		},
		{
			name: "formula override",
			body: map[string]any{
				"parameters": quoteParams(),
				"elements": []map[string]any{{
					"element":       map[string]any{"id": "e-tile", "name": "Tile", "formula": "length * width * 6"},
					"module":        map[string]any{"id": "m-floor", "name": "Flooring"},
					"formula":       "length * 10",
					"labor_formula": "",
					"markup":        0,
				}},
			},
			want: 50,
		},
		{
			name: "unknown name prices as zero",
			body: map[string]any{
				"parameters": quoteParams(),
				"elements": []map[string]any{{
					"element": map[string]any{"id": "e-x", "name": "Mystery", "formula": "depth * 4"},
					"module":  map[string]any{"id": "m-floor", "name": "Flooring"},
				}},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runQuotePreview(t, tt.body, tt.session)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp quoteResponse
			decodeJSON(t, rec, &resp)
			if math.Abs(resp.Totals.GrandTotal-tt.want) > 0.001 {
				t.Errorf("grand total = %v, want %v", resp.Totals.GrandTotal, tt.want)
			}
		})
	}
}

func TestHandleQuotePreview_ValidationErrors(t *testing.T) {
	tile := quoteElements()[0]

	tests := []struct {
		name    string
		body    map[string]any
		wantKey string
	}{
		{
			name:    "duplicate element in module",
			body:    map[string]any{"parameters": quoteParams(), "elements": []map[string]any{tile, tile}},
			wantKey: "elements.1",
		},
		{
			name: "missing module",
			body: map[string]any{"parameters": quoteParams(), "elements": []map[string]any{{
				"element": map[string]any{"id": "e-tile", "name": "Tile"},
			}}},
			wantKey: "elements.0",
		},
		{
			name: "negative markup",
			body: map[string]any{"parameters": quoteParams(), "elements": []map[string]any{{
				"element": map[string]any{"id": "e-tile", "name": "Tile"},
				"module":  map[string]any{"id": "m-floor", "name": "Flooring"},
				"markup":  -1,
			}}},
			wantKey: "elements.0",
		},
		{
			name: "negative element default markup",
			body: map[string]any{"parameters": quoteParams(), "elements": []map[string]any{{
				"element": map[string]any{"id": "e-fee", "name": "Fee", "formula": "100", "markup": -50},
				"module":  map[string]any{"id": "m-floor", "name": "Flooring"},
			}}},
			wantKey: "elements.0",
		},
		{
			name: "invalid parameter name",
			body: map[string]any{"parameters": []map[string]any{
				{"name": "2nd", "value": 1, "type": "number"},
			}},
			wantKey: "parameters.0",
		},
		{
			name: "duplicate parameter name",
			body: map[string]any{"parameters": []map[string]any{
				{"name": "length", "value": 1, "type": "number"},
				{"name": "length", "value": 2, "type": "number"},
			}},
			wantKey: "parameters.1",
		},
		{
			name: "negative global markup",
			body: map[string]any{
				"parameters":    quoteParams(),
				"global_markup": map[string]any{"enabled": true, "percentage": -5},
			},
			wantKey: "global_markup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runQuotePreview(t, tt.body, nil)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp struct {
				Errors map[string]any `json:"errors"`
			}
			decodeJSON(t, rec, &resp)
			if _, ok := resp.Errors[tt.wantKey]; !ok {
				t.Errorf("expected error for %q, got %v", tt.wantKey, resp.Errors)
			}
		})
	}
}
