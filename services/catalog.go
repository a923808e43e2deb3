package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
)

// Catalog is the read-only reference data a proposal is built from.
type Catalog struct {
	Modules    []Module            `json:"modules"`
	Elements   []ElementDefinition `json:"elements"`
	Parameters []Parameter         `json:"parameters"`
}

// TemplateSummary is a template without its nested selection.
type TemplateSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// LoadCatalog reads all modules, elements and parameters.
func LoadCatalog(app core.App) (Catalog, error) {
	cat := Catalog{
		Modules:    []Module{},
		Elements:   []ElementDefinition{},
		Parameters: []Parameter{},
	}

	modules, err := app.FindRecordsByFilter("modules", "custom = false", "sort_order,name", 0, 0)
	if err != nil {
		return cat, fmt.Errorf("load modules: %w", err)
	}
	for _, r := range modules {
		cat.Modules = append(cat.Modules, moduleFromRecord(r))
	}

	elements, err := app.FindRecordsByFilter("elements", "", "name", 0, 0)
	if err != nil {
		return cat, fmt.Errorf("load elements: %w", err)
	}
	for _, r := range elements {
		cat.Elements = append(cat.Elements, elementFromRecord(r))
	}

	params, err := app.FindRecordsByFilter("parameters", "", "name", 0, 0)
	if err != nil {
		return cat, fmt.Errorf("load parameters: %w", err)
	}
	for _, r := range params {
		cat.Parameters = append(cat.Parameters, parameterFromRecord(r, r.Id))
	}

	return cat, nil
}

// ListTemplates returns every template ordered by name.
func ListTemplates(app core.App) ([]TemplateSummary, error) {
	records, err := app.FindRecordsByFilter("templates", "", "name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]TemplateSummary, 0, len(records))
	for _, r := range records {
		out = append(out, TemplateSummary{
			ID:          r.Id,
			Name:        r.GetString("name"),
			Description: r.GetString("description"),
			Image:       r.GetString("image"),
		})
	}
	return out, nil
}

// LoadTemplate reads a template with its modules, parameter defaults and
// element placements.
func LoadTemplate(app core.App, id string) (Template, error) {
	rec, err := app.FindRecordById("templates", id)
	if err != nil {
		return Template{}, fmt.Errorf("template %s not found: %w", id, err)
	}

	t := Template{
		ID:          rec.Id,
		Name:        rec.GetString("name"),
		Description: rec.GetString("description"),
		Image:       rec.GetString("image"),
		Modules:     []Module{},
		Parameters:  []Parameter{},
		Elements:    []TemplateElement{},
	}

	modLinks, err := app.FindAllRecords("template_modules", dbx.HashExp{"template": rec.Id})
	if err != nil {
		return t, fmt.Errorf("load template modules: %w", err)
	}
	sortBySortOrder(modLinks)
	if errs := app.ExpandRecords(modLinks, []string{"module"}, nil); len(errs) > 0 {
		return t, fmt.Errorf("expand template modules: %v", errs)
	}
	for _, link := range modLinks {
		if m := link.ExpandedOne("module"); m != nil {
			t.Modules = append(t.Modules, moduleFromRecord(m))
		}
	}

	params, err := app.FindRecordsByFilter("template_parameters", "template = {:id}", "sort_order", 0, 0, dbx.Params{"id": rec.Id})
	if err != nil {
		return t, fmt.Errorf("load template parameters: %w", err)
	}
	for _, p := range params {
		t.Parameters = append(t.Parameters, parameterFromRecord(p, p.Id))
	}

	elemLinks, err := app.FindRecordsByFilter("template_elements", "template = {:id}", "sort_order", 0, 0, dbx.Params{"id": rec.Id})
	if err != nil {
		return t, fmt.Errorf("load template elements: %w", err)
	}
	if errs := app.ExpandRecords(elemLinks, []string{"element", "module"}, nil); len(errs) > 0 {
		return t, fmt.Errorf("expand template elements: %v", errs)
	}
	for _, link := range elemLinks {
		el := link.ExpandedOne("element")
		mod := link.ExpandedOne("module")
		if el == nil || mod == nil {
			continue
		}
		t.Elements = append(t.Elements, TemplateElement{
			Element: elementFromRecord(el),
			Module:  moduleFromRecord(mod),
			Markup:  parseMarkup(link.GetString("markup")),
		})
	}

	return t, nil
}

func moduleFromRecord(r *core.Record) Module {
	return Module{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		Custom:      r.GetBool("custom"),
	}
}

func elementFromRecord(r *core.Record) ElementDefinition {
	return ElementDefinition{
		ID:           r.Id,
		Name:         r.GetString("name"),
		Description:  r.GetString("description"),
		Formula:      r.GetString("formula"),
		LaborFormula: r.GetString("labor_formula"),
		Markup:       parseMarkup(r.GetString("markup")),
	}
}

// parameterFromRecord converts a stored parameter. Values are stored as text;
// numeric-typed values are handed out as numbers.
func parameterFromRecord(r *core.Record, id string) Parameter {
	p := Parameter{
		ID:    id,
		Name:  r.GetString("name"),
		Value: r.GetString("value"),
		Type:  ParameterType(r.GetString("type")),
	}
	if p.Type != ParamText {
		if n, err := p.Number(); err == nil {
			p.Value = n
		}
	}
	return p
}

// parseMarkup reads an optional markup stored as text. Blank or unparsable
// values mean "not specified".
func parseMarkup(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

func sortBySortOrder(records []*core.Record) {
	slices.SortStableFunc(records, func(a, b *core.Record) int {
		return cmp.Compare(a.GetInt("sort_order"), b.GetInt("sort_order"))
	})
}
