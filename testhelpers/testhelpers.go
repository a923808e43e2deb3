// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalbuilder/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestModule creates a catalog module with the given name and returns it.
func CreateTestModule(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("modules")
	if err != nil {
		t.Fatalf("failed to find modules collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("description", name+" work")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test module: %v", err)
	}

	return record
}

// CreateTestElement creates a catalog element with the given formulas. An
// empty markup leaves the element on the default markup.
func CreateTestElement(t *testing.T, app *pocketbase.PocketBase, name, formula, laborFormula, markup string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("elements")
	if err != nil {
		t.Fatalf("failed to find elements collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("formula", formula)
	record.Set("labor_formula", laborFormula)
	record.Set("markup", markup)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test element: %v", err)
	}

	return record
}

// CreateTestTemplate creates an empty template and returns it.
func CreateTestTemplate(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("templates")
	if err != nil {
		t.Fatalf("failed to find templates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}

	return record
}

// AddTemplateModule links a module to a template.
func AddTemplateModule(t *testing.T, app *pocketbase.PocketBase, templateID, moduleID string, sortOrder int) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("template_modules")
	if err != nil {
		t.Fatalf("failed to find template_modules collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("template", templateID)
	record.Set("module", moduleID)
	record.Set("sort_order", sortOrder)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save template module: %v", err)
	}
	return record
}

// AddTemplateParameter adds a parameter default to a template.
func AddTemplateParameter(t *testing.T, app *pocketbase.PocketBase, templateID, name, value, paramType string, sortOrder int) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("template_parameters")
	if err != nil {
		t.Fatalf("failed to find template_parameters collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("template", templateID)
	record.Set("name", name)
	record.Set("value", value)
	record.Set("type", paramType)
	record.Set("sort_order", sortOrder)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save template parameter: %v", err)
	}
	return record
}

// AddTemplateElement places an element in a module of a template.
func AddTemplateElement(t *testing.T, app *pocketbase.PocketBase, templateID, elementID, moduleID, markup string, sortOrder int) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("template_elements")
	if err != nil {
		t.Fatalf("failed to find template_elements collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("template", templateID)
	record.Set("element", elementID)
	record.Set("module", moduleID)
	record.Set("markup", markup)
	record.Set("sort_order", sortOrder)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save template element: %v", err)
	}
	return record
}

// CreateTestProposal creates a proposal with valid client details and no
// elements, and returns it.
func CreateTestProposal(t *testing.T, app *pocketbase.PocketBase, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("proposals")
	if err != nil {
		t.Fatalf("failed to find proposals collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", title)
	record.Set("title", title)
	record.Set("client_name", "Test Client")
	record.Set("client_email", "client@example.com")
	record.Set("client_phone", "555-0100")
	record.Set("client_address", "1 Test Street")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test proposal: %v", err)
	}

	return record
}

// AddProposalElement adds a priced element snapshot to a proposal.
func AddProposalElement(t *testing.T, app *pocketbase.PocketBase, proposalID, elementName, moduleID, moduleName string, material, labor float64, markup int) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("proposal_elements")
	if err != nil {
		t.Fatalf("failed to find proposal_elements collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("proposal", proposalID)
	record.Set("element_name", elementName)
	record.Set("module_id", moduleID)
	record.Set("module_name", moduleName)
	record.Set("material_cost", material)
	record.Set("labor_cost", labor)
	record.Set("markup", markup)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save proposal element: %v", err)
	}
	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
