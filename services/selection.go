package services

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrModuleNotSelected = errors.New("module is not selected")
	ErrElementNotFound   = errors.New("element is not selected in module")
	ErrParameterNotFound = errors.New("parameter not found")
	ErrNegativeMarkup    = errors.New("markup must not be negative")
)

// Template is a predefined starting selection: parameters with default
// values, modules, and elements placed in modules.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Modules     []Module          `json:"modules"`
	Parameters  []Parameter       `json:"parameters"`
	Elements    []TemplateElement `json:"template_elements"`
}

// TemplateElement places an element definition in a module. A nil Markup
// falls back to the definition's default.
type TemplateElement struct {
	Element ElementDefinition `json:"element"`
	Module  Module            `json:"module"`
	Markup  *float64          `json:"markup,omitempty"`
}

// Selection is the working state of one proposal: the active parameters,
// modules and priced elements plus the global markup setting. Every mutating
// method recomputes the costs it affects before returning, so element costs
// always match the current formulas and parameters.
//
// A Selection belongs to a single session and is not safe for concurrent use.
type Selection struct {
	TemplateID   string          `json:"template_id,omitempty"`
	Parameters   []Parameter     `json:"parameters"`
	Modules      []Module        `json:"modules"`
	Elements     []PricedElement `json:"elements"`
	GlobalMarkup GlobalMarkup    `json:"global_markup"`

	evaluator     *Evaluator
	defaultMarkup float64
}

// NewSelection returns an empty selection evaluating formulas with ev.
func NewSelection(ev *Evaluator) *Selection {
	if ev == nil {
		ev = NewEvaluator(nil)
	}
	return &Selection{
		Parameters:    []Parameter{},
		Modules:       []Module{},
		Elements:      []PricedElement{},
		evaluator:     ev,
		defaultMarkup: DefaultMarkup,
	}
}

// SetDefaultMarkup changes the markup given to elements added afterwards
// whose definition does not carry one.
func (s *Selection) SetDefaultMarkup(markup float64) error {
	if markup < 0 {
		return fmt.Errorf("set default markup: %w", ErrNegativeMarkup)
	}
	s.defaultMarkup = markup
	return nil
}

// ApplyTemplate replaces parameters, modules and elements with the template's
// declared set. Costs are computed from the template's own parameter values.
// The global markup setting is session-wide and is kept.
func (s *Selection) ApplyTemplate(t Template) {
	s.TemplateID = t.ID
	s.Parameters = slices.Clone(t.Parameters)
	if s.Parameters == nil {
		s.Parameters = []Parameter{}
	}
	s.Modules = []Module{}
	s.Elements = []PricedElement{}

	for _, m := range t.Modules {
		s.SelectModule(m)
	}
	for _, te := range t.Elements {
		// Template elements may name a module the template did not list.
		s.SelectModule(te.Module)
		if s.elementIndex(te.Element.ID, te.Module.ID) >= 0 {
			continue
		}
		// Negative markups in stored template data fall back to the next source.
		markup := s.defaultMarkup
		if m := te.Element.Markup; m != nil && *m >= 0 {
			markup = *m
		}
		if te.Markup != nil && *te.Markup >= 0 {
			markup = *te.Markup
		}
		s.Elements = append(s.Elements, s.newPricedElement(te.Element, te.Module, markup))
	}
}

// SelectModule adds m to the active modules. It contributes no elements until
// they are toggled in. Selecting an already active module is a no-op.
func (s *Selection) SelectModule(m Module) {
	if s.moduleIndex(m.ID) >= 0 {
		return
	}
	s.Modules = append(s.Modules, m)
}

// CreateCustomModule adds a user-defined module with a generated id.
func (s *Selection) CreateCustomModule(name, description string) Module {
	m := Module{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Custom:      true,
	}
	s.Modules = append(s.Modules, m)
	return m
}

// DeselectModule removes the module and every priced element in it. It
// returns the number of elements removed.
func (s *Selection) DeselectModule(moduleID string) int {
	i := s.moduleIndex(moduleID)
	if i < 0 {
		return 0
	}
	s.Modules = slices.Delete(s.Modules, i, i+1)

	before := len(s.Elements)
	s.Elements = slices.DeleteFunc(s.Elements, func(e PricedElement) bool {
		return e.Module.ID == moduleID
	})
	return before - len(s.Elements)
}

// ToggleElement adds def to the module when absent and removes exactly that
// (element, module) instance when present. It reports whether the element is
// selected afterwards.
func (s *Selection) ToggleElement(def ElementDefinition, moduleID string) (bool, error) {
	if i := s.elementIndex(def.ID, moduleID); i >= 0 {
		s.Elements = slices.Delete(s.Elements, i, i+1)
		return false, nil
	}
	mi := s.moduleIndex(moduleID)
	if mi < 0 {
		return false, fmt.Errorf("toggle %s: %w: %s", def.Name, ErrModuleNotSelected, moduleID)
	}
	if def.Markup != nil && *def.Markup < 0 {
		return false, fmt.Errorf("toggle %s: %w", def.Name, ErrNegativeMarkup)
	}
	s.Elements = append(s.Elements, s.newPricedElement(def, s.Modules[mi], def.MarkupOr(s.defaultMarkup)))
	return true, nil
}

// AddParameter adds a new parameter and recomputes the elements that
// reference its name.
func (s *Selection) AddParameter(p Parameter) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("add parameter %q: %w", p.Name, err)
	}
	if _, ok := findParameter(s.Parameters, p.Name); ok {
		return fmt.Errorf("add parameter: %w: %s", ErrDuplicateParameter, p.Name)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.Parameters = append(s.Parameters, p)
	s.recomputeReferencing(p.Name)
	return nil
}

// SetParameterValue changes a parameter's value and recomputes the elements
// that reference it.
func (s *Selection) SetParameterValue(name string, value any) error {
	i, ok := findParameter(s.Parameters, name)
	if !ok {
		return fmt.Errorf("set %s: %w", name, ErrParameterNotFound)
	}
	s.Parameters[i].Value = value
	s.recomputeReferencing(name)
	return nil
}

// RemoveParameter drops a parameter. Elements referencing it are recomputed
// and evaluate to 0 for the affected formula.
func (s *Selection) RemoveParameter(name string) bool {
	i, ok := findParameter(s.Parameters, name)
	if !ok {
		return false
	}
	s.Parameters = slices.Delete(s.Parameters, i, i+1)
	s.recomputeReferencing(name)
	return true
}

// SetFormula replaces the material formula of one priced element.
func (s *Selection) SetFormula(elementID, moduleID, formula string) error {
	i := s.elementIndex(elementID, moduleID)
	if i < 0 {
		return fmt.Errorf("set formula: %w: %s/%s", ErrElementNotFound, moduleID, elementID)
	}
	s.Elements[i].Formula = formula
	s.recompute(i)
	return nil
}

// SetLaborFormula replaces the labor formula of one priced element.
func (s *Selection) SetLaborFormula(elementID, moduleID, formula string) error {
	i := s.elementIndex(elementID, moduleID)
	if i < 0 {
		return fmt.Errorf("set labor formula: %w: %s/%s", ErrElementNotFound, moduleID, elementID)
	}
	s.Elements[i].LaborFormula = formula
	s.recompute(i)
	return nil
}

// SetMarkup sets one element's own markup percentage.
func (s *Selection) SetMarkup(elementID, moduleID string, markup float64) error {
	if markup < 0 {
		return fmt.Errorf("set markup: %w", ErrNegativeMarkup)
	}
	i := s.elementIndex(elementID, moduleID)
	if i < 0 {
		return fmt.Errorf("set markup: %w: %s/%s", ErrElementNotFound, moduleID, elementID)
	}
	s.Elements[i].Markup = markup
	return nil
}

// SetGlobalMarkup replaces the global markup setting.
func (s *Selection) SetGlobalMarkup(g GlobalMarkup) error {
	if g.Percentage < 0 {
		return fmt.Errorf("set global markup: %w", ErrNegativeMarkup)
	}
	s.GlobalMarkup = g
	return nil
}

// Recompute re-evaluates every element's formulas.
func (s *Selection) Recompute() {
	for i := range s.Elements {
		s.recompute(i)
	}
}

// Totals aggregates the current elements under the current global markup.
func (s *Selection) Totals() QuoteTotals {
	return CalcQuoteTotals(s.Elements, s.GlobalMarkup)
}

// Element returns the priced element for (elementID, moduleID).
func (s *Selection) Element(elementID, moduleID string) (PricedElement, bool) {
	i := s.elementIndex(elementID, moduleID)
	if i < 0 {
		return PricedElement{}, false
	}
	return s.Elements[i], true
}

func (s *Selection) newPricedElement(def ElementDefinition, m Module, markup float64) PricedElement {
	e := PricedElement{
		ID:           uuid.NewString(),
		Element:      def,
		Module:       m,
		Formula:      def.Formula,
		LaborFormula: def.LaborFormula,
		Markup:       markup,
	}
	e.MaterialCost = s.evaluator.Evaluate(e.Formula, s.Parameters)
	e.LaborCost = s.evaluator.Evaluate(e.LaborFormula, s.Parameters)
	return e
}

func (s *Selection) recompute(i int) {
	e := &s.Elements[i]
	e.MaterialCost = s.evaluator.Evaluate(e.Formula, s.Parameters)
	e.LaborCost = s.evaluator.Evaluate(e.LaborFormula, s.Parameters)
}

func (s *Selection) recomputeReferencing(name string) {
	for i, e := range s.Elements {
		if slices.Contains(FormulaReferences(e.Formula), name) ||
			slices.Contains(FormulaReferences(e.LaborFormula), name) {
			s.recompute(i)
		}
	}
}

func (s *Selection) moduleIndex(id string) int {
	return slices.IndexFunc(s.Modules, func(m Module) bool { return m.ID == id })
}

func (s *Selection) elementIndex(elementID, moduleID string) int {
	return slices.IndexFunc(s.Elements, func(e PricedElement) bool {
		return e.Element.ID == elementID && e.Module.ID == moduleID
	})
}
