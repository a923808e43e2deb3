// Package services holds the proposal pricing engine: formula evaluation,
// cost aggregation, the session selection model and the exports built on top
// of them.
package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

var (
	// ErrUnresolvedParameter marks a formula that references a name missing
	// from the parameter set.
	ErrUnresolvedParameter = errors.New("unresolved parameter")
	// ErrNonNumericParameter marks a formula that references a parameter
	// whose value is not a number.
	ErrNonNumericParameter = errors.New("non-numeric parameter")
	// ErrMalformedExpression marks formula text that is not valid arithmetic.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrNonFiniteResult marks an evaluation that produced NaN or ±Inf.
	ErrNonFiniteResult = errors.New("non-finite result")
)

// MaxFormulaLength is the longest formula text ComputeFormula accepts.
const MaxFormulaLength = 4096

// UnresolvedParameterError lists the names a formula references that are not
// in the parameter set.
type UnresolvedParameterError struct {
	Names []string
}

func (e *UnresolvedParameterError) Error() string {
	return fmt.Sprintf("unresolved parameter(s): %s", strings.Join(e.Names, ", "))
}

func (e *UnresolvedParameterError) Unwrap() error { return ErrUnresolvedParameter }

// NonNumericParameterError reports a parameter used in arithmetic whose value
// cannot be read as a number.
type NonNumericParameterError struct {
	Name  string
	Value any
}

func (e *NonNumericParameterError) Error() string {
	return fmt.Sprintf("parameter %s has non-numeric value %v", e.Name, e.Value)
}

func (e *NonNumericParameterError) Unwrap() error { return ErrNonNumericParameter }

// ComputeFormula substitutes every parameter reference in formula with the
// parameter's numeric value and evaluates the resulting arithmetic. An empty
// formula evaluates to 0. Names are matched as whole tokens. Any reference to
// an unknown name fails the whole formula; nothing is partially evaluated.
func ComputeFormula(formula string, params []Parameter) (float64, error) {
	if strings.TrimSpace(formula) == "" {
		return 0, nil
	}
	if len(formula) > MaxFormulaLength {
		return 0, fmt.Errorf("%w: longer than %d characters", ErrMalformedExpression, MaxFormulaLength)
	}

	toks, err := lexFormula(formula)
	if err != nil {
		return 0, err
	}

	values := make(map[string]Parameter, len(params))
	for _, p := range params {
		values[p.Name] = p
	}

	var unresolved []string
	seen := make(map[string]bool)
	for i, t := range toks {
		if t.kind != tokIdent {
			continue
		}
		p, ok := values[t.text]
		if !ok {
			if !seen[t.text] {
				seen[t.text] = true
				unresolved = append(unresolved, t.text)
			}
			continue
		}
		n, err := p.Number()
		if err != nil {
			return 0, err
		}
		toks[i] = token{kind: tokNumber, text: t.text, num: n, pos: t.pos}
	}
	if len(unresolved) > 0 {
		return 0, &UnresolvedParameterError{Names: unresolved}
	}

	v, err := evalTokens(toks)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFiniteResult
	}
	return v, nil
}

// FormulaReferences returns the distinct identifiers referenced by formula in
// order of first appearance. Malformed formulas yield the identifiers found
// before the first lexing error.
func FormulaReferences(formula string) []string {
	var names []string
	seen := make(map[string]bool)
	i := 0
	for i < len(formula) {
		c := formula[i]
		switch {
		case isLetter(c):
			start := i
			for i < len(formula) && (isLetter(formula[i]) || isDigit(formula[i])) {
				i++
			}
			name := formula[start:i]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		case isDigit(c):
			// Skip the whole literal so an exponent marker is not read as a name.
			for i < len(formula) && (isDigit(formula[i]) || formula[i] == '.') {
				i++
			}
			if i < len(formula) && (formula[i] == 'e' || formula[i] == 'E') {
				j := i + 1
				if j < len(formula) && (formula[j] == '+' || formula[j] == '-') {
					j++
				}
				if j < len(formula) && isDigit(formula[j]) {
					i = j
					for i < len(formula) && isDigit(formula[i]) {
						i++
					}
				}
			}
		default:
			i++
		}
	}
	return names
}

// Evaluator is the soft-failing formula evaluator. It never returns an error:
// unknown parameters, malformed text and non-finite results all evaluate to 0
// and are reported to the logger.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator returns an Evaluator reporting to logger, or to slog.Default
// when logger is nil.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate computes formula against params, degrading every failure to 0.
func (ev *Evaluator) Evaluate(formula string, params []Parameter) (result float64) {
	defer func() {
		if r := recover(); r != nil {
			ev.logger.Error("formula evaluation panicked", "formula", formula, "panic", r)
			result = 0
		}
	}()

	v, err := ComputeFormula(formula, params)
	if err == nil {
		return v
	}

	var unresolved *UnresolvedParameterError
	var nonNumeric *NonNumericParameterError
	switch {
	case errors.As(err, &unresolved):
		ev.logger.Warn("formula references unknown parameters",
			"formula", formula, "unresolved", unresolved.Names)
	case errors.As(err, &nonNumeric):
		ev.logger.Warn("formula references a non-numeric parameter",
			"formula", formula, "parameter", nonNumeric.Name)
	case errors.Is(err, ErrNonFiniteResult):
		ev.logger.Debug("formula result is not finite", "formula", formula)
	default:
		ev.logger.Error("formula evaluation failed", "formula", formula, "error", err)
	}
	return 0
}

// EvaluateFormula is Evaluate on an evaluator that reports to slog.Default.
func EvaluateFormula(formula string, params []Parameter) float64 {
	return NewEvaluator(nil).Evaluate(formula, params)
}
