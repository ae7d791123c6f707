package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/guardrail/internal/terminal"
	"github.com/spf13/cobra"
)

// getShellCommand returns the shell command
func getShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive validation shell",
		Long: `Start an interactive shell that validates every line without executing it.

Type /help inside the shell for the available checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			validator, err := newValidator(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "guardrail shell - type /help for commands, /exit to leave")
			return terminal.NewREPL(validator, cmd.OutOrStdout()).Run(cmd.InOrStdin())
		},
	}
}
