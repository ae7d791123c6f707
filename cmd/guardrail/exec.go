package main

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core"
	"github.com/Lin-Jiong-HDU/guardrail/internal/terminal"
	"github.com/spf13/cobra"
)

// getExecCommand returns the exec command
func getExecCommand() *cobra.Command {
	var (
		dir string
		yes bool
	)

	execCmd := &cobra.Command{
		Use:   "exec [flags] -- <command line>",
		Short: "Validate and run a command line",
		Long: `Validate a command line and, once confirmed, run it without a shell.

Rejected lines are never executed. Every decision is written to the audit log.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			line := strings.Join(args, " ")
			if out := engine.Validator().Validate(line); out.OK() && !yes {
				approved, err := terminal.ConfirmWithIO(out.Value(), dir, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !approved {
					return nil
				}
			}

			result, err := engine.RunCommand(cmd.Context(), line, dir)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	execCmd.Flags().StringVarP(&dir, "dir", "C", "", "working directory")
	execCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return execCmd
}

// printResult writes command output and turns a failed process into an
// error so the exit status reflects it.
func printResult(cmd *cobra.Command, result *core.Result) error {
	if result.Output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Output)
	}
	if result.Error != nil {
		return fmt.Errorf("command failed (exit code %d): %w", result.ExitCode, result.Error)
	}
	return nil
}
