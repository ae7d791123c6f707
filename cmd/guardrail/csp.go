package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/spf13/cobra"
)

// getCSPCommand returns the csp command
func getCSPCommand() *cobra.Command {
	cspCmd := &cobra.Command{
		Use:   "csp",
		Short: "Generate Content-Security-Policy values",
	}

	var (
		dev           bool
		devServerURL  string
		nonce         string
		generateNonce bool
	)

	headerCmd := &cobra.Command{
		Use:   "header",
		Short: "Print the policy header for the configured or given mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			reqCfg := cfg.CSP
			if cmd.Flags().Changed("dev") {
				reqCfg.IsDevelopment = dev
			}
			if cmd.Flags().Changed("dev-server-url") {
				reqCfg.DevServerURL = devServerURL
			}
			reqCfg.Nonce = nonce
			if generateNonce {
				reqCfg.Nonce = csp.GenerateNonce()
			}

			header, err := csp.NewBuilder().GenerateHeader(reqCfg)
			if err != nil {
				return err
			}

			if generateNonce {
				fmt.Fprintf(cmd.OutOrStdout(), "nonce: %s\n", reqCfg.Nonce)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", csp.HeaderName, header)
			return nil
		},
	}
	headerCmd.Flags().BoolVar(&dev, "dev", false, "development mode")
	headerCmd.Flags().StringVar(&devServerURL, "dev-server-url", "", "development server origin")
	headerCmd.Flags().StringVar(&nonce, "nonce", "", "nonce to allow in script-src")
	headerCmd.Flags().BoolVar(&generateNonce, "generate-nonce", false, "generate a fresh nonce")
	headerCmd.MarkFlagsMutuallyExclusive("nonce", "generate-nonce")

	nonceCmd := &cobra.Command{
		Use:   "nonce",
		Short: "Print a fresh nonce",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), csp.GenerateNonce())
		},
	}

	cspCmd.AddCommand(headerCmd, nonceCmd)
	return cspCmd
}
