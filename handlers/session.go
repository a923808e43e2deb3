package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/services"
)

// HandleSetGlobalMarkup stores the session's global markup override in a
// cookie and echoes the stored value.
func HandleSetGlobalMarkup() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var gm services.GlobalMarkup
		if err := e.BindBody(&gm); err != nil {
			return errorJSON(e, http.StatusBadRequest, "Invalid request body")
		}
		if gm.Percentage < 0 {
			return errorJSON(e, http.StatusUnprocessableEntity, services.ErrNegativeMarkup.Error())
		}

		value, err := encodeGlobalMarkup(gm)
		if err != nil {
			log.Printf("session: failed to encode global markup: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to store global markup")
		}
		http.SetCookie(e.Response, &http.Cookie{
			Name:     globalMarkupCookie,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		return e.JSON(http.StatusOK, gm)
	}
}
