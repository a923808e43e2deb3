package services

// DefaultMarkup is the markup percentage given to an element whose definition
// or template does not specify one.
const DefaultMarkup = 10.0

// GlobalMarkup overrides every element's own markup while Enabled.
type GlobalMarkup struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

// Module groups priced elements (a trade).
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Custom      bool   `json:"custom,omitempty"`
}

// ElementDefinition is catalog data for a priceable line item. A nil Markup
// means the default of 10 percent.
type ElementDefinition struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Formula      string   `json:"formula"`
	LaborFormula string   `json:"labor_formula"`
	Markup       *float64 `json:"markup,omitempty"`
}

// DefaultMarkup returns the definition's markup, or DefaultMarkup when unset.
func (d ElementDefinition) DefaultMarkup() float64 {
	return d.MarkupOr(DefaultMarkup)
}

// MarkupOr returns the definition's markup, or fallback when unset.
func (d ElementDefinition) MarkupOr(fallback float64) float64 {
	if d.Markup != nil {
		return *d.Markup
	}
	return fallback
}

// PricedElement is one element instance inside one module, carrying costs
// computed from its formulas against the current parameters.
type PricedElement struct {
	ID           string            `json:"id"`
	Element      ElementDefinition `json:"element"`
	Module       Module            `json:"module"`
	Formula      string            `json:"formula"`
	LaborFormula string            `json:"labor_formula"`
	MaterialCost float64           `json:"material_cost"`
	LaborCost    float64           `json:"labor_cost"`
	Markup       float64           `json:"markup"`
}

// ElementCost is the priced breakdown of a single element.
type ElementCost struct {
	ElementID    string  `json:"element_id"`
	ModuleID     string  `json:"module_id"`
	Name         string  `json:"name"`
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
	Markup       float64 `json:"markup"`        // effective percentage
	MarkupAmount float64 `json:"markup_amount"` // (material + labor) * markup / 100
	Total        float64 `json:"total"`
}

// ModuleSubtotal sums the elements of one module.
type ModuleSubtotal struct {
	ModuleID     string  `json:"module_id"`
	Name         string  `json:"name"`
	ElementCount int     `json:"element_count"`
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
	Total        float64 `json:"total"`
}

// QuoteTotals holds the full aggregation of a set of priced elements.
type QuoteTotals struct {
	Elements     []ElementCost    `json:"elements"`
	Modules      []ModuleSubtotal `json:"modules"`
	MaterialCost float64          `json:"material_cost"`
	LaborCost    float64          `json:"labor_cost"`
	MarkupAmount float64          `json:"markup_amount"`
	GrandTotal   float64          `json:"grand_total"`
}

// EffectiveMarkup returns the global percentage when the override is enabled,
// otherwise the element's own markup.
func EffectiveMarkup(e PricedElement, g GlobalMarkup) float64 {
	if g.Enabled {
		return g.Percentage
	}
	return e.Markup
}

// CalcElementTotal returns (material + labor) * (1 + markup/100).
func CalcElementTotal(e PricedElement, g GlobalMarkup) float64 {
	return (e.MaterialCost + e.LaborCost) * (1 + EffectiveMarkup(e, g)/100)
}

// CalcModuleSubtotal sums the totals of the elements belonging to moduleID.
func CalcModuleSubtotal(elements []PricedElement, moduleID string, g GlobalMarkup) float64 {
	var sum float64
	for _, e := range elements {
		if e.Module.ID == moduleID {
			sum += CalcElementTotal(e, g)
		}
	}
	return sum
}

// CalcGrandTotal sums the totals of all elements.
func CalcGrandTotal(elements []PricedElement, g GlobalMarkup) float64 {
	var sum float64
	for _, e := range elements {
		sum += CalcElementTotal(e, g)
	}
	return sum
}

// CalcQuoteTotals aggregates elements into per-element lines, per-module
// subtotals (in order of first appearance) and grand totals. Nothing is
// rounded here.
func CalcQuoteTotals(elements []PricedElement, g GlobalMarkup) QuoteTotals {
	totals := QuoteTotals{
		Elements: make([]ElementCost, 0, len(elements)),
		Modules:  []ModuleSubtotal{},
	}
	moduleIdx := make(map[string]int)

	for _, e := range elements {
		markup := EffectiveMarkup(e, g)
		base := e.MaterialCost + e.LaborCost
		total := CalcElementTotal(e, g)

		totals.Elements = append(totals.Elements, ElementCost{
			ElementID:    e.Element.ID,
			ModuleID:     e.Module.ID,
			Name:         e.Element.Name,
			MaterialCost: e.MaterialCost,
			LaborCost:    e.LaborCost,
			Markup:       markup,
			MarkupAmount: total - base,
			Total:        total,
		})

		i, ok := moduleIdx[e.Module.ID]
		if !ok {
			i = len(totals.Modules)
			moduleIdx[e.Module.ID] = i
			totals.Modules = append(totals.Modules, ModuleSubtotal{
				ModuleID: e.Module.ID,
				Name:     e.Module.Name,
			})
		}
		m := &totals.Modules[i]
		m.ElementCount++
		m.MaterialCost += e.MaterialCost
		m.LaborCost += e.LaborCost
		m.Total += total

		totals.MaterialCost += e.MaterialCost
		totals.LaborCost += e.LaborCost
		totals.MarkupAmount += total - base
		totals.GrandTotal += total
	}
	return totals
}
