package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/Lin-Jiong-HDU/guardrail/internal/report"
	"github.com/Lin-Jiong-HDU/guardrail/internal/terminal"
	"github.com/spf13/cobra"
)

// getPolicyCommand returns the policy command
func getPolicyCommand() *cobra.Command {
	var (
		format string
		width  int
	)

	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Describe the active policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			validator, err := newValidator(cfg)
			if err != nil {
				return err
			}

			rep, err := report.Build(validator, csp.NewBuilder(), cfg.CSP)
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				data, err := rep.YAML()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			case "markdown":
				fmt.Fprint(cmd.OutOrStdout(), rep.Markdown())
			case "pretty":
				renderer, err := terminal.NewRenderer(width)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderer.Render(rep.Markdown()))
			default:
				return fmt.Errorf("unknown format %q: must be pretty, markdown or yaml", format)
			}
			return nil
		},
	}

	policyCmd.Flags().StringVarP(&format, "format", "f", "pretty", "output format: pretty, markdown or yaml")
	policyCmd.Flags().IntVar(&width, "width", 100, "wrap width for pretty output")
	return policyCmd
}
