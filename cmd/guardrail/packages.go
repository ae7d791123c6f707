package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getInstallCommand returns the install command
func getInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install <manager> <package>",
		Short:   "Install a package with npm, pip or composer",
		Example: "  guardrail install npm lodash\n  guardrail install pip requests",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			result, err := engine.InstallPackage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}

// getUninstallCommand returns the uninstall command
func getUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <manager> <package>",
		Short: "Remove a package with npm, pip or composer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			result, err := engine.UninstallPackage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}

// getListCommand returns the list command
func getListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <manager>",
		Short: "List installed packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			result, err := engine.ListPackages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}

// getStopCommand returns the stop command
func getStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <pid>",
		Short: "Send SIGTERM to a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			pid, err := engine.StopProcessString(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent SIGTERM to %d\n", pid)
			return nil
		},
	}
}
