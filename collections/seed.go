package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type moduleDef struct {
	sortOrder   int
	name        string
	description string
}

type elementDef struct {
	name         string
	description  string
	formula      string
	laborFormula string
	markup       string
}

type parameterDef struct {
	name      string
	value     string
	paramType string
}

type placementDef struct {
	element string
	module  string
	markup  string
}

type templateDef struct {
	name        string
	description string
	image       string
	modules     []string
	parameters  []parameterDef
	elements    []placementDef
}

// Seed populates the catalog with a demo set of modules, elements, parameters
// and two templates. It is safe to call on every startup because it returns
// early if any template records already exist.
func Seed(app core.App) error {
	// ── idempotency: skip if templates already exist ─────────────────
	templatesCol, err := app.FindCollectionByNameOrId("templates")
	if err != nil {
		return fmt.Errorf("seed: could not find templates collection: %w", err)
	}
	existing, err := app.FindAllRecords(templatesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query templates: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: templates collection is empty – inserting demo catalog …")

	modulesCol, err := app.FindCollectionByNameOrId("modules")
	if err != nil {
		return fmt.Errorf("seed: could not find modules collection: %w", err)
	}
	elementsCol, err := app.FindCollectionByNameOrId("elements")
	if err != nil {
		return fmt.Errorf("seed: could not find elements collection: %w", err)
	}
	paramsCol, err := app.FindCollectionByNameOrId("parameters")
	if err != nil {
		return fmt.Errorf("seed: could not find parameters collection: %w", err)
	}
	tplModulesCol, err := app.FindCollectionByNameOrId("template_modules")
	if err != nil {
		return fmt.Errorf("seed: could not find template_modules collection: %w", err)
	}
	tplParamsCol, err := app.FindCollectionByNameOrId("template_parameters")
	if err != nil {
		return fmt.Errorf("seed: could not find template_parameters collection: %w", err)
	}
	tplElementsCol, err := app.FindCollectionByNameOrId("template_elements")
	if err != nil {
		return fmt.Errorf("seed: could not find template_elements collection: %w", err)
	}

	// ── Modules ──────────────────────────────────────────────────────
	moduleIDs := map[string]string{}
	for _, d := range []moduleDef{
		{1, "Demolition", "Removal and disposal of existing finishes"},
		{2, "Cabinetry", "Supply and install of base and wall cabinets"},
		{3, "Countertops", "Templated stone and laminate tops"},
		{4, "Flooring", "Subfloor prep and finished flooring"},
		{5, "Plumbing", "Fixture replacement and rough-in"},
		{6, "Electrical", "Lighting and circuit work"},
		{7, "Painting", "Wall and ceiling paint"},
	} {
		r := core.NewRecord(modulesCol)
		r.Set("name", d.name)
		r.Set("description", d.description)
		r.Set("custom", false)
		r.Set("sort_order", d.sortOrder)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save module %q: %w", d.name, err)
		}
		moduleIDs[d.name] = r.Id
	}

	// ── Elements ─────────────────────────────────────────────────────
	elementIDs := map[string]string{}
	for _, d := range []elementDef{
		{"Cabinet Removal", "Remove existing cabinets", "cabinet_count * 35", "cabinet_count * 0.75 * 65", ""},
		{"Floor Tear-Out", "Remove existing floor covering", "length * width * 1.5", "length * width * 2.25", ""},
		{"Base Cabinets", "Shaker base cabinets", "cabinet_count / 2 * 420", "cabinet_count / 2 * 95", "15"},
		{"Wall Cabinets", "Shaker wall cabinets", "cabinet_count / 2 * 310", "cabinet_count / 2 * 80", "15"},
		{"Quartz Countertop", "3cm quartz, eased edge", "length * 2 * 85", "length * 2 * 22", "20"},
		{"Tile Flooring", "Porcelain tile, thinset", "length * width * 6.5", "length * width * 4", ""},
		{"Fixture Replacement", "Faucets, valves and trim", "fixture_count * 250", "fixture_count * 120", "12"},
		{"Recessed Lighting", "LED wafer lights", "(length * width / 25) * 45", "(length * width / 25) * 60", ""},
		{"Wall Paint", "Two coats, eggshell", "2 * (length + width) * height * 0.45", "2 * (length + width) * height * 0.9", ""},
	} {
		r := core.NewRecord(elementsCol)
		r.Set("name", d.name)
		r.Set("description", d.description)
		r.Set("formula", d.formula)
		r.Set("labor_formula", d.laborFormula)
		r.Set("markup", d.markup)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save element %q: %w", d.name, err)
		}
		elementIDs[d.name] = r.Id
	}

	// ── Parameters ───────────────────────────────────────────────────
	for _, d := range []parameterDef{
		{"length", "12", "linear feet"},
		{"width", "10", "linear feet"},
		{"height", "8", "linear feet"},
		{"cabinet_count", "14", "count"},
		{"fixture_count", "3", "count"},
		{"finish", "matte", "text"},
	} {
		r := core.NewRecord(paramsCol)
		r.Set("name", d.name)
		r.Set("value", d.value)
		r.Set("type", d.paramType)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save parameter %q: %w", d.name, err)
		}
	}

	// ── helper: create template with its links ───────────────────────
	createTemplate := func(d templateDef) error {
		t := core.NewRecord(templatesCol)
		t.Set("name", d.name)
		t.Set("description", d.description)
		t.Set("image", d.image)
		if err := app.Save(t); err != nil {
			return fmt.Errorf("seed: save template %q: %w", d.name, err)
		}

		for i, name := range d.modules {
			r := core.NewRecord(tplModulesCol)
			r.Set("template", t.Id)
			r.Set("module", moduleIDs[name])
			r.Set("sort_order", i+1)
			if err := app.Save(r); err != nil {
				return fmt.Errorf("seed: link module %q to %q: %w", name, d.name, err)
			}
		}

		for i, p := range d.parameters {
			r := core.NewRecord(tplParamsCol)
			r.Set("template", t.Id)
			r.Set("name", p.name)
			r.Set("value", p.value)
			r.Set("type", p.paramType)
			r.Set("sort_order", i+1)
			if err := app.Save(r); err != nil {
				return fmt.Errorf("seed: save template parameter %q: %w", p.name, err)
			}
		}

		for i, e := range d.elements {
			r := core.NewRecord(tplElementsCol)
			r.Set("template", t.Id)
			r.Set("element", elementIDs[e.element])
			r.Set("module", moduleIDs[e.module])
			r.Set("markup", e.markup)
			r.Set("sort_order", i+1)
			if err := app.Save(r); err != nil {
				return fmt.Errorf("seed: place element %q in %q: %w", e.element, e.module, err)
			}
		}
		return nil
	}

	// ══════════════════════════════════════════════════════════════════
	// TEMPLATE 1: Kitchen Remodel
	// ══════════════════════════════════════════════════════════════════

	if err := createTemplate(templateDef{
		name:        "Kitchen Remodel",
		description: "Full kitchen: demo, cabinets, tops, floor, lighting and paint",
		modules:     []string{"Demolition", "Cabinetry", "Countertops", "Flooring", "Electrical", "Painting"},
		parameters: []parameterDef{
			{"length", "12", "linear feet"},
			{"width", "10", "linear feet"},
			{"height", "8", "linear feet"},
			{"cabinet_count", "14", "count"},
		},
		elements: []placementDef{
			{"Cabinet Removal", "Demolition", ""},
			{"Floor Tear-Out", "Demolition", ""},
			{"Base Cabinets", "Cabinetry", ""},
			{"Wall Cabinets", "Cabinetry", ""},
			{"Quartz Countertop", "Countertops", "18"},
			{"Tile Flooring", "Flooring", ""},
			{"Recessed Lighting", "Electrical", ""},
			{"Wall Paint", "Painting", ""},
		},
	}); err != nil {
		return err
	}

	// ══════════════════════════════════════════════════════════════════
	// TEMPLATE 2: Bathroom Refresh
	// ══════════════════════════════════════════════════════════════════

	if err := createTemplate(templateDef{
		name:        "Bathroom Refresh",
		description: "New floor, fixtures and paint for a small bathroom",
		modules:     []string{"Demolition", "Flooring", "Plumbing", "Painting"},
		parameters: []parameterDef{
			{"length", "8", "linear feet"},
			{"width", "6", "linear feet"},
			{"height", "8", "linear feet"},
			{"fixture_count", "3", "count"},
		},
		elements: []placementDef{
			{"Floor Tear-Out", "Demolition", ""},
			{"Tile Flooring", "Flooring", ""},
			{"Fixture Replacement", "Plumbing", ""},
			{"Wall Paint", "Painting", ""},
		},
	}); err != nil {
		return err
	}

	log.Println("seed: demo catalog inserted")
	return nil
}
