package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// parameterTypeValues mirrors services.ParameterTypes.
var parameterTypeValues = []string{"number", "text", "linear feet", "square feet", "cube feet", "count"}

// Setup programmatically creates/ensures the catalog, template and proposal
// collections exist.
func Setup(app core.App) {
	// ── Catalog ──────────────────────────────────────────────────────

	modules := ensureCollection(app, "modules", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.BoolField{Name: "custom"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	elements := ensureCollection(app, "elements", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "formula"})
		c.Fields.Add(&core.TextField{Name: "labor_formula"})
		// markup is optional; a blank value means the 10% default.
		c.Fields.Add(&core.TextField{Name: "markup"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "parameters", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Pattern: `^[A-Za-z_][A-Za-z0-9_]*$`})
		c.Fields.Add(&core.TextField{Name: "value"})
		c.Fields.Add(&core.SelectField{
			Name:      "type",
			Required:  true,
			Values:    parameterTypeValues,
			MaxSelect: 1,
		})
		c.AddIndex("idx_parameters_name", true, "name", "")
	})

	// ── Templates ────────────────────────────────────────────────────

	templates := ensureCollection(app, "templates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "image"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "template_modules", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "template",
			Required:      true,
			CollectionId:  templates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "module",
			Required:      true,
			CollectionId:  modules.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	ensureCollection(app, "template_parameters", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "template",
			Required:      true,
			CollectionId:  templates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Pattern: `^[A-Za-z_][A-Za-z0-9_]*$`})
		c.Fields.Add(&core.TextField{Name: "value"})
		c.Fields.Add(&core.SelectField{
			Name:      "type",
			Required:  true,
			Values:    parameterTypeValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	ensureCollection(app, "template_elements", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "template",
			Required:      true,
			CollectionId:  templates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "element",
			Required:      true,
			CollectionId:  elements.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "module",
			Required:      true,
			CollectionId:  modules.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "markup"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	// ── Proposals ────────────────────────────────────────────────────

	proposals := ensureCollection(app, "proposals", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "client_email", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_phone", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_address", Required: true})
		c.Fields.Add(&core.TextField{Name: "image"})
		c.Fields.Add(&core.BoolField{Name: "global_markup_enabled"})
		c.Fields.Add(&core.NumberField{Name: "global_markup_percentage", Min: floatPtr(0)})
		c.Fields.Add(&core.NumberField{Name: "grand_total"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "proposal_parameters", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "proposal",
			Required:      true,
			CollectionId:  proposals.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "parameter_id"})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "value"})
		c.Fields.Add(&core.TextField{Name: "type"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	ensureCollection(app, "proposal_elements", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "proposal",
			Required:      true,
			CollectionId:  proposals.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		// Element and module are snapshotted by value; custom modules have
		// no catalog record.
		c.Fields.Add(&core.TextField{Name: "element_id"})
		c.Fields.Add(&core.TextField{Name: "element_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "element_description"})
		c.Fields.Add(&core.TextField{Name: "element_formula"})
		c.Fields.Add(&core.TextField{Name: "element_labor_formula"})
		c.Fields.Add(&core.TextField{Name: "module_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "module_name"})
		c.Fields.Add(&core.TextField{Name: "module_description"})
		c.Fields.Add(&core.TextField{Name: "formula"})
		c.Fields.Add(&core.TextField{Name: "labor_formula"})
		c.Fields.Add(&core.NumberField{Name: "material_cost"})
		c.Fields.Add(&core.NumberField{Name: "labor_cost"})
		c.Fields.Add(&core.NumberField{Name: "markup", Min: floatPtr(0), OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

func floatPtr(f float64) *float64 {
	return &f
}
