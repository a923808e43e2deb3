package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/config"
	"proposalbuilder/services"
)

// buildExportData loads a stored proposal and converts it for export.
func buildExportData(app *pocketbase.PocketBase, proposalID, currencySymbol string) (services.ExportData, error) {
	sp, err := services.LoadProposal(app, proposalID)
	if err != nil {
		return services.ExportData{}, err
	}
	return services.BuildExportData(sp, currencySymbol), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// HandleProposalExportExcel returns a handler that generates and downloads an Excel file for a proposal.
func HandleProposalExportExcel(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing proposal ID")
		}

		data, err := buildExportData(app, id, cfg.CurrencySymbol)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Proposal not found")
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Proposal_%s_%d.xlsx", sanitizeFilename(data.Title), time.Now().Year())

		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleProposalExportPDF returns a handler that generates and downloads a PDF file for a proposal.
func HandleProposalExportPDF(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing proposal ID")
		}

		data, err := buildExportData(app, id, cfg.CurrencySymbol)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return e.String(http.StatusNotFound, "Proposal not found")
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("Proposal_%s_%d.pdf", sanitizeFilename(data.Title), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
