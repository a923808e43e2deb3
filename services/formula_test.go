package services

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func num(name string, v float64) Parameter {
	return Parameter{Name: name, Value: v, Type: ParamNumber}
}

func TestComputeFormula_Values(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		params  []Parameter
		want    float64
	}{
		{"product", "length * width", []Parameter{num("length", 5), num("width", 3)}, 15},
		{"empty formula", "", nil, 0},
		{"blank formula", "   ", nil, 0},
		{"constant", "42", nil, 42},
		{"whole token match", "width * 2", []Parameter{num("w", 9), num("width", 5)}, 10},
		{"prefix name", "w * 2", []Parameter{num("w", 9), num("width", 5)}, 18},
		{"precedence", "2 + 3 * 4", nil, 14},
		{"parentheses", "(2 + 3) * 4", nil, 20},
		{"left assoc subtraction", "10 - 4 - 3", nil, 3},
		{"left assoc division", "100 / 10 / 5", nil, 2},
		{"unary minus", "-length + 10", []Parameter{num("length", 4)}, 6},
		{"double unary", "- -3", nil, 3},
		{"unary plus", "+3 * 2", nil, 6},
		{"fraction", "0.5 * 10", nil, 5},
		{"leading dot", ".25 * 4", nil, 1},
		{"exponent", "1.5e2 + 1e-1", nil, 150.1},
		{"numeric string value", "a * 2", []Parameter{{Name: "a", Value: "2.5", Type: ParamNumber}}, 5},
		{"underscore names", "cabinet_count / 2 * 420", []Parameter{num("cabinet_count", 14)}, 2940},
		{"repeated reference", "x * x + x", []Parameter{num("x", 3)}, 12},
		{"no spaces", "(a+b)*c", []Parameter{num("a", 1), num("b", 2), num("c", 3)}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFormula(tt.formula, tt.params)
			if err != nil {
				t.Fatalf("ComputeFormula(%q) error = %v", tt.formula, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeFormula(%q) = %v, want %v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestComputeFormula_Errors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		params  []Parameter
		wantErr error
	}{
		{"unknown parameter", "a + unknown", []Parameter{num("a", 1)}, ErrUnresolvedParameter},
		{"all unknown", "x * y", nil, ErrUnresolvedParameter},
		{"division by zero", "10 / x", []Parameter{num("x", 0)}, ErrNonFiniteResult},
		{"zero over zero", "x / x", []Parameter{num("x", 0)}, ErrNonFiniteResult},
		{"dangling operator", "1 +", nil, ErrMalformedExpression},
		{"unbalanced paren", "(1 + 2", nil, ErrMalformedExpression},
		{"extra paren", "1 + 2)", nil, ErrMalformedExpression},
		{"adjacent numbers", "2 3", nil, ErrMalformedExpression},
		{"unsupported operator", "2 ^ 3", nil, ErrMalformedExpression},
		{"lone dot", ".", nil, ErrMalformedExpression},
		{"text parameter", "finish * 2", []Parameter{{Name: "finish", Value: "matte", Type: ParamText}}, ErrNonNumericParameter},
		{"nil value", "a + 1", []Parameter{{Name: "a", Type: ParamNumber}}, ErrNonNumericParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFormula(tt.formula, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ComputeFormula(%q) error = %v, want %v", tt.formula, err, tt.wantErr)
			}
			if got != 0 {
				t.Errorf("ComputeFormula(%q) = %v on error, want 0", tt.formula, got)
			}
		})
	}
}

func TestComputeFormula_NestingLimit(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    float64
		wantErr error
	}{
		{"signs within limit", strings.Repeat("-", 200) + "7", 7, nil},
		{"parens within limit", strings.Repeat("(", 200) + "7" + strings.Repeat(")", 200), 7, nil},
		{"too many signs", strings.Repeat("-", maxFormulaDepth+1) + "7", 0, ErrMalformedExpression},
		{"too many parens", strings.Repeat("(", maxFormulaDepth+1) + "7" + strings.Repeat(")", maxFormulaDepth+1), 0, ErrMalformedExpression},
		{"mixed signs and parens", strings.Repeat("-(", maxFormulaDepth) + "7" + strings.Repeat(")", maxFormulaDepth), 0, ErrMalformedExpression},
		{"too long", strings.Repeat("1+", MaxFormulaLength) + "1", 0, ErrMalformedExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFormula(tt.formula, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateFormula_HugeNestingReturnsZero(t *testing.T) {
	for _, formula := range []string{
		strings.Repeat("-", 8_000_000) + "1",
		strings.Repeat("(", 1_000_000) + "1",
	} {
		if got := EvaluateFormula(formula, nil); got != 0 {
			t.Errorf("EvaluateFormula(%d chars) = %v, want 0", len(formula), got)
		}
	}
}

func TestComputeFormula_UnresolvedNames(t *testing.T) {
	_, err := ComputeFormula("a + b * a + c", []Parameter{num("b", 1)})

	var unresolved *UnresolvedParameterError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedParameterError, got %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, unresolved.Names); diff != "" {
		t.Errorf("unresolved names mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFormula_TextValueIsNotRescanned(t *testing.T) {
	// A text value that happens to name another parameter must not be
	// substituted a second time.
	params := []Parameter{
		{Name: "alias", Value: "width", Type: ParamText},
		num("width", 5),
	}
	_, err := ComputeFormula("alias * 2", params)

	var nonNumeric *NonNumericParameterError
	if !errors.As(err, &nonNumeric) {
		t.Fatalf("expected NonNumericParameterError, got %v", err)
	}
	if nonNumeric.Name != "alias" {
		t.Errorf("parameter = %q, want alias", nonNumeric.Name)
	}
}

func TestComputeFormula_Idempotent(t *testing.T) {
	params := []Parameter{num("length", 12), num("width", 10), num("height", 8)}
	formula := "2 * (length + width) * height * 0.45"

	first, err := ComputeFormula(formula, params)
	if err != nil {
		t.Fatalf("ComputeFormula error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ComputeFormula(formula, params)
		if err != nil {
			t.Fatalf("ComputeFormula error = %v", err)
		}
		if again != first {
			t.Fatalf("evaluation %d = %v, want %v", i, again, first)
		}
	}
}

func TestFormulaReferences(t *testing.T) {
	tests := []struct {
		formula string
		want    []string
	}{
		{"", nil},
		{"42", nil},
		{"length * width", []string{"length", "width"}},
		{"width * w + width", []string{"width", "w"}},
		{"1e3 * e", []string{"e"}},
		{"2E+2 + x1", []string{"x1"}},
		{"(a+_b)/c_2", []string{"a", "_b", "c_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got := FormulaReferences(tt.formula)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FormulaReferences(%q) mismatch (-want +got):\n%s", tt.formula, diff)
			}
		})
	}
}

func TestEvaluator_DegradesToZero(t *testing.T) {
	var buf bytes.Buffer
	ev := NewEvaluator(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	tests := []struct {
		name    string
		formula string
		params  []Parameter
		want    float64
		logged  string
	}{
		{"valid", "length * width", []Parameter{num("length", 5), num("width", 3)}, 15, ""},
		{"unknown", "a + unknown", []Parameter{num("a", 1)}, 0, "unknown parameters"},
		{"empty", "", nil, 0, ""},
		{"division by zero", "10 / x", []Parameter{num("x", 0)}, 0, "not finite"},
		{"malformed", "(1 +", nil, 0, "evaluation failed"},
		{"text parameter", "finish + 1", []Parameter{{Name: "finish", Value: "matte", Type: ParamText}}, 0, "non-numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			got := ev.Evaluate(tt.formula, tt.params)
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.formula, got, tt.want)
			}
			if tt.logged == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no log output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.logged) {
				t.Errorf("log output %q does not mention %q", buf.String(), tt.logged)
			}
		})
	}
}

func TestEvaluateFormula_DefaultLogger(t *testing.T) {
	if got := EvaluateFormula("length * width", []Parameter{num("length", 5), num("width", 3)}); got != 15 {
		t.Errorf("EvaluateFormula = %v, want 15", got)
	}
	if got := EvaluateFormula("a + unknown", nil); got != 0 {
		t.Errorf("EvaluateFormula with unknown names = %v, want 0", got)
	}
}
