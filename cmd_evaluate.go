package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"proposalbuilder/config"
	"proposalbuilder/services"
)

// newEvaluateCommand builds the "evaluate" subcommand, which prints the value
// of a formula for the given -p name=value parameters.
func newEvaluateCommand(cfg config.Config) *cobra.Command {
	var rawParams []string
	var strict bool

	cmd := &cobra.Command{
		Use:   "evaluate <formula>",
		Short: "Evaluate a pricing formula against parameters",
		Example: `  proposalbuilder evaluate "length * width" -p length=5 -p width=3
  proposalbuilder evaluate "a + b" -p a=1 --strict`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParamFlags(rawParams)
			if err != nil {
				return err
			}

			var v float64
			if strict {
				v, err = services.ComputeFormula(args[0], params)
				if err != nil {
					return fmt.Errorf("evaluate: %w", err)
				}
			} else {
				logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
				v = services.NewEvaluator(logger).Evaluate(args[0], params)
			}

			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "parameter as name=value (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of printing 0 when the formula cannot be evaluated")

	return cmd
}

// parseParamFlags turns name=value pairs into parameters. Numeric values
// become number parameters, anything else text.
func parseParamFlags(raw []string) ([]services.Parameter, error) {
	params := make([]services.Parameter, 0, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", kv)
		}
		p := services.Parameter{Name: strings.TrimSpace(name), Value: value, Type: services.ParamText}
		if n, err := cast.ToFloat64E(strings.TrimSpace(value)); err == nil {
			p.Value = n
			p.Type = services.ParamNumber
		}
		params = append(params, p)
	}
	if err := services.ValidateParameters(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return params, nil
}
