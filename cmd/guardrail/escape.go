package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/spf13/cobra"
)

// getEscapeCommand returns the escape command
func getEscapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "escape <arg>...",
		Short: "Print the escaped form of each argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				fmt.Fprintln(cmd.OutOrStdout(), security.EscapeArgument(arg))
			}
			return nil
		},
	}
}
