package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/services"
)

type contextKey string

const GlobalMarkupKey contextKey = "globalMarkup"

// globalMarkupCookie holds the session's global markup setting as URL-escaped
// JSON.
const globalMarkupCookie = "global_markup"

// GetGlobalMarkup extracts the session's global markup from the request
// context. It is the zero value (disabled) when the middleware did not run.
func GetGlobalMarkup(r *http.Request) services.GlobalMarkup {
	if val, ok := r.Context().Value(GlobalMarkupKey).(services.GlobalMarkup); ok {
		return val
	}
	return services.GlobalMarkup{}
}

// GlobalMarkupMiddleware reads the "global_markup" cookie and stores the
// session's setting in the request context. Requests without a valid cookie
// get defaults.
func GlobalMarkupMiddleware(defaults services.GlobalMarkup) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		gm := defaults

		cookie, err := e.Request.Cookie(globalMarkupCookie)
		if err == nil && cookie.Value != "" {
			if parsed, ok := decodeGlobalMarkup(cookie.Value); ok {
				gm = parsed
			} else {
				log.Printf("middleware: invalid global markup cookie %q, clearing cookie", cookie.Value)
				http.SetCookie(e.Response, &http.Cookie{
					Name:   globalMarkupCookie,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
			}
		}

		ctx := context.WithValue(e.Request.Context(), GlobalMarkupKey, gm)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

func encodeGlobalMarkup(gm services.GlobalMarkup) (string, error) {
	data, err := json.Marshal(gm)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

func decodeGlobalMarkup(value string) (services.GlobalMarkup, bool) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return services.GlobalMarkup{}, false
	}
	var gm services.GlobalMarkup
	if err := json.Unmarshal([]byte(raw), &gm); err != nil {
		return services.GlobalMarkup{}, false
	}
	if gm.Percentage < 0 {
		return services.GlobalMarkup{}, false
	}
	return gm, true
}
