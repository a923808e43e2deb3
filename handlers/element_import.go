package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleElementImportTemplate downloads a blank element import workbook.
// Route: GET /api/elements/import/template
func HandleElementImportTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateElementImportTemplate()
		if err != nil {
			log.Printf("element_import_template: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to generate template")
		}

		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", `attachment; filename="Element_Import_Template.xlsx"`)
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleElementImport receives a .csv or .xlsx upload in the "file" field and
// adds its rows to the element catalog. Any invalid row rejects the whole
// file with 422 and the per-row errors.
// Route: POST /api/elements/import
func HandleElementImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return errorJSON(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return errorJSON(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ImportElements(app, file, header.Filename)
		if err != nil {
			log.Printf("element_import: %v", err)
			return errorJSON(e, http.StatusBadRequest, err.Error())
		}

		if result.ErrorRows > 0 {
			return e.JSON(http.StatusUnprocessableEntity, result)
		}
		return e.JSON(http.StatusCreated, result)
	}
}

// HandleElementImportErrorReport turns posted import errors into an Excel
// download.
// Route: POST /api/elements/import/errors
func HandleElementImportErrorReport() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var errs []services.ImportError
		if err := json.NewDecoder(e.Request.Body).Decode(&errs); err != nil {
			return errorJSON(e, http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateErrorReport(errs)
		if err != nil {
			log.Printf("element_import_errors: %v", err)
			return errorJSON(e, http.StatusInternalServerError, "Failed to generate error report")
		}

		filename := fmt.Sprintf("Element_Import_Errors_%s.xlsx", time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
