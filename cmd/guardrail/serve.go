package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/Lin-Jiong-HDU/guardrail/internal/observability"
	"github.com/Lin-Jiong-HDU/guardrail/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// getServeCommand returns the serve command
func getServeCommand() *cobra.Command {
	var (
		addr string
		dev  bool
		exec bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve content and the validation API behind the policy header",
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
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			builder := csp.NewBuilder()
			if _, err := builder.GenerateHeader(reqCfg); err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := observability.NewMetrics(registry)

			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			engine.SetMetrics(metrics)

			opts := server.Options{
				Validator: engine.Validator(),
				Builder:   builder,
				CSP:       reqCfg,
				Metrics:   metrics,
				Gatherer:  registry,
				Logger:    logger,
			}
			if !cmd.Flags().Changed("exec") {
				exec = cfg.Server.Exec
			}
			if exec {
				opts.Engine = engine
			}
			srv := server.New(opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&dev, "dev", false, "development mode")
	serveCmd.Flags().BoolVar(&exec, "exec", false, "enable POST /api/exec (default from server.exec)")
	return serveCmd
}
