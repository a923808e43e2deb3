package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/collections"
	"proposalbuilder/config"
	"proposalbuilder/handlers"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()
	app.RootCmd.AddCommand(newEvaluateCommand(cfg))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if cfg.SeedCatalog {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Resolve the session's global markup for every request
		se.Router.BindFunc(handlers.GlobalMarkupMiddleware(cfg.GlobalMarkup))

		// ── Catalog & templates ──────────────────────────────────
		se.Router.GET("/api/catalog", handlers.HandleCatalog(app))
		se.Router.GET("/api/templates", handlers.HandleTemplateList(app))
		se.Router.GET("/api/templates/{id}", handlers.HandleTemplateView(app, cfg))

		// ── Element import ───────────────────────────────────────
		se.Router.GET("/api/elements/import/template", handlers.HandleElementImportTemplate())
		se.Router.POST("/api/elements/import", handlers.HandleElementImport(app))
		se.Router.POST("/api/elements/import/errors", handlers.HandleElementImportErrorReport())

		// ── Pricing ──────────────────────────────────────────────
		se.Router.POST("/api/formulas/evaluate", handlers.HandleEvaluateFormula(app))
		se.Router.POST("/api/quotes/preview", handlers.HandleQuotePreview(app, cfg))
		se.Router.POST("/api/session/global-markup", handlers.HandleSetGlobalMarkup())

		// ── Proposals ────────────────────────────────────────────
		se.Router.POST("/api/proposals", handlers.HandleProposalCreate(app))
		se.Router.GET("/api/proposals/{id}", handlers.HandleProposalGet(app))
		se.Router.DELETE("/api/proposals/{id}", handlers.HandleProposalDelete(app))

		// ── Proposal pages & exports ─────────────────────────────
		se.Router.GET("/proposals/{id}/export/excel", handlers.HandleProposalExportExcel(app, cfg))
		se.Router.GET("/proposals/{id}/export/pdf", handlers.HandleProposalExportPDF(app, cfg))
		se.Router.GET("/proposals/{id}", handlers.HandleProposalPage(app, cfg))

		// Redirect home to the template list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/api/templates")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
