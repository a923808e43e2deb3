package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// ParameterType is the measurement kind of a parameter.
type ParameterType string

const (
	ParamNumber     ParameterType = "number"
	ParamText       ParameterType = "text"
	ParamLinearFeet ParameterType = "linear feet"
	ParamSquareFeet ParameterType = "square feet"
	ParamCubeFeet   ParameterType = "cube feet"
	ParamCount      ParameterType = "count"
)

// ParameterTypes lists every supported parameter type in display order.
var ParameterTypes = []ParameterType{
	ParamNumber,
	ParamText,
	ParamLinearFeet,
	ParamSquareFeet,
	ParamCubeFeet,
	ParamCount,
}

// Parameter is a named, user-editable input to formulas. Value is either a
// number or a string.
type Parameter struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Value any           `json:"value"`
	Type  ParameterType `json:"type"`
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrDuplicateParameter is returned when a parameter name is already in use.
var ErrDuplicateParameter = errors.New("duplicate parameter name")

// Number returns the numeric value of the parameter. Numeric strings such as
// "12.5" are accepted; anything else is an error.
func (p Parameter) Number() (float64, error) {
	v := p.Value
	switch tv := v.(type) {
	case nil, bool:
		return 0, &NonNumericParameterError{Name: p.Name, Value: p.Value}
	case string:
		v = strings.TrimSpace(tv)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &NonNumericParameterError{Name: p.Name, Value: p.Value}
	}
	return f, nil
}

// ValueString renders the parameter value for storage and display.
func (p Parameter) ValueString() string {
	return cast.ToString(p.Value)
}

// IsValidParameterName reports whether name can be referenced from a formula.
func IsValidParameterName(name string) bool {
	return identifierPattern.MatchString(name)
}

// Validate checks the parameter's own fields.
func (p Parameter) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name,
			validation.Required,
			validation.Match(identifierPattern).Error("must start with a letter or underscore and contain only letters, digits and underscores"),
		),
		validation.Field(&p.Type, validation.In(parameterTypeValues()...)),
	)
}

// ValidateParameters validates each parameter and checks that names are
// unique within the set.
func ValidateParameters(params []Parameter) error {
	errs := validation.Errors{}
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		key := fmt.Sprintf("parameters.%d", i)
		if err := p.Validate(); err != nil {
			errs[key] = err
			continue
		}
		if seen[p.Name] {
			errs[key] = fmt.Errorf("%w: %s", ErrDuplicateParameter, p.Name)
			continue
		}
		seen[p.Name] = true
	}
	return errs.Filter()
}

func parameterTypeValues() []any {
	values := make([]any, len(ParameterTypes))
	for i, t := range ParameterTypes {
		values[i] = t
	}
	return values
}

func findParameter(params []Parameter, name string) (int, bool) {
	for i, p := range params {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}
