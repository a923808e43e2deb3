package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

// errorJSON writes {"error": message} with the given status.
func errorJSON(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, map[string]string{"error": message})
}

// validationJSON writes field errors as {"errors": {...}} with 422. Errors
// that are not validation.Errors are reported under "error".
func validationJSON(e *core.RequestEvent, err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return e.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
	}
	return errorJSON(e, http.StatusUnprocessableEntity, err.Error())
}
