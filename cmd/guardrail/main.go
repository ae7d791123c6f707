package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Lin-Jiong-HDU/guardrail/internal/observability"
	"github.com/Lin-Jiong-HDU/guardrail/internal/storage"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  = slog.Default()
)

// newRootCommand builds the command tree
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Trust-boundary validation for commands, inputs and content policy",
		Long: `guardrail - validates command lines, package names, process ids and paths
before they are executed, and builds Content-Security-Policy headers for served content.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storage.InitConfig()
			if err != nil {
				return err
			}

			level := cfg.Log.Level
			if verbose {
				level = "debug"
			}
			logger = observability.NewLogger(observability.LogConfig{
				Level:  level,
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			})
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		getValidateCommand(),
		getEscapeCommand(),
		getCSPCommand(),
		getExecCommand(),
		getInstallCommand(),
		getUninstallCommand(),
		getListCommand(),
		getStopCommand(),
		getAuditCommand(),
		getPolicyCommand(),
		getShellCommand(),
		getServeCommand(),
	)
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
