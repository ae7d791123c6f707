package main

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/Lin-Jiong-HDU/guardrail/internal/terminal"
	"github.com/spf13/cobra"
)

// getValidateCommand returns the validate command
func getValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate input without executing anything",
		Long: `Validate a command line, package name, process id, path or package manager.

The exit status is non-zero when the input is rejected.`,
	}

	validateCmd.AddCommand(
		&cobra.Command{
			Use:   "command <line>...",
			Short: "Validate a command line against the allow-list",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				validator, err := newValidator(cfg)
				if err != nil {
					return err
				}
				out := validator.Validate(strings.Join(args, " "))
				return printVerdict(cmd, "command", out.Value(), out)
			},
		},
		&cobra.Command{
			Use:   "package <name>",
			Short: "Validate an npm or pip package name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := security.ValidatePackageName(args[0])
				return printVerdict(cmd, "package name", out.Value(), out)
			},
		},
		&cobra.Command{
			Use:   "pid <n>",
			Short: "Validate a process id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := security.ValidatePidString(args[0])
				return printVerdict(cmd, "pid", fmt.Sprint(out.Value()), out)
			},
		},
		&cobra.Command{
			Use:   "path <path>",
			Short: "Validate a filesystem path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := security.ValidatePath(args[0])
				return printVerdict(cmd, "path", out.Value(), out)
			},
		},
		&cobra.Command{
			Use:   "manager <name>",
			Short: "Validate a package manager name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := security.ValidatePackageManager(args[0])
				return printVerdict(cmd, "package manager", out.Value().String(), out)
			},
		},
	)

	return validateCmd
}

// outcome is the part of security.Outcome printVerdict needs.
type outcome interface {
	OK() bool
	Kind() security.ErrorKind
	Reason() string
	Err(field string) error
}

func printVerdict(cmd *cobra.Command, field, value string, out outcome) error {
	styles := terminal.DefaultStyleConfig()
	if out.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), styles.Accepted(field, value))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.Rejected(field, string(out.Kind()), out.Reason()))
	return out.Err(field)
}
