package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newJSONRequest builds a request whose body is body encoded as JSON.
func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withGlobalMarkup attaches a session global markup the way
// GlobalMarkupMiddleware does.
func withGlobalMarkup(req *http.Request, gm services.GlobalMarkup) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), GlobalMarkupKey, gm))
}

// decodeJSON unmarshals the recorded response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// testSession overrides the configured default markup and the session's
// global markup for a single handler call.
type testSession struct {
	defaultMarkup float64
	globalMarkup  services.GlobalMarkup
}

func globalMarkup(enabled bool, percentage float64) services.GlobalMarkup {
	return services.GlobalMarkup{Enabled: enabled, Percentage: percentage}
}
