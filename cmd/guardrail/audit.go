package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/audit"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/tui"
	"github.com/Lin-Jiong-HDU/guardrail/internal/storage"
	"github.com/Lin-Jiong-HDU/guardrail/internal/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// getAuditCommand returns the audit command
func getAuditCommand() *cobra.Command {
	var (
		status      string
		interactive bool
	)

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		Long: `Show recorded validation decisions and execution results.

Use --status to filter by rejected, accepted, executing, completed or failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter audit.Status
			if status != "" {
				s, err := audit.ParseStatus(status)
				if err != nil {
					return fmt.Errorf("%w: must be rejected, accepted, executing, completed or failed", err)
				}
				filter = s
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Audit.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Audit log is disabled (audit.enabled: false)")
				return nil
			}

			l, err := openAuditLog(cfg)
			if err != nil {
				return err
			}

			if interactive {
				return runAuditBrowser(cmd, cfg, l)
			}

			records := l.Records()
			if filter != "" {
				records = l.ByStatus(filter)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit records")
				return nil
			}

			styles := terminal.DefaultStyleConfig()
			for _, r := range records {
				fmt.Fprintln(cmd.OutOrStdout(), formatRecord(styles, r))
			}
			return nil
		},
	}

	auditCmd.Flags().StringVar(&status, "status", "", "only show records in this status")
	auditCmd.Flags().BoolVar(&interactive, "tui", false, "browse the log interactively")
	return auditCmd
}

// runAuditBrowser opens the interactive browser. Reload re-reads the log
// file so records written by other processes show up.
func runAuditBrowser(cmd *cobra.Command, cfg *storage.Config, l *audit.Log) error {
	reload := func() []audit.Record {
		path, err := cfg.AuditPath()
		if err != nil {
			return l.Records()
		}
		fresh, err := audit.NewLog(path)
		if err != nil {
			logger.Warn("failed to reload audit log", "error", err)
			return l.Records()
		}
		return fresh.Records()
	}

	p := tea.NewProgram(
		tui.NewModel(l.Records(), reload),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

func formatRecord(styles *terminal.StyleConfig, r audit.Record) string {
	color := styles.SubtleColor
	switch r.Status {
	case audit.StatusCompleted:
		color = styles.SuccessColor
	case audit.StatusRejected, audit.StatusFailed:
		color = styles.ErrorColor
	case audit.StatusExecuting:
		color = styles.WarningColor
	}

	status := lipgloss.NewStyle().Foreground(color).Width(10).Render(string(r.Status))
	line := fmt.Sprintf("%s %s %-17s %s",
		styles.Subtle(r.CreatedAt.Format("2006-01-02 15:04:05")), status, r.Operation, r.Input)

	switch {
	case r.Status == audit.StatusRejected:
		line += styles.Subtle(fmt.Sprintf("  (%s: %s)", r.Kind, r.Reason))
	case r.Result != nil && r.Result.Error != "":
		line += styles.Subtle(fmt.Sprintf("  (exit %d: %s)", r.Result.ExitCode, r.Result.Error))
	}
	return line
}
