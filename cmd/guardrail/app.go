package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/audit"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/Lin-Jiong-HDU/guardrail/internal/storage"
)

// loadConfig returns the config loaded by the root command.
func loadConfig() (*storage.Config, error) {
	cfg := storage.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// newValidator freezes the configured allow-list.
func newValidator(cfg *storage.Config) (*security.CommandValidator, error) {
	set, err := cfg.AllowedCommandSet()
	if err != nil {
		return nil, err
	}
	return security.NewCommandValidator(set), nil
}

// openAuditLog opens the configured audit log, or returns nil when
// auditing is disabled.
func openAuditLog(cfg *storage.Config) (*audit.Log, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	path, err := cfg.AuditPath()
	if err != nil {
		return nil, err
	}
	l, err := audit.NewLog(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return l, nil
}

// newEngine wires the command handler from config.
func newEngine(cfg *storage.Config) (*core.Engine, error) {
	validator, err := newValidator(cfg)
	if err != nil {
		return nil, err
	}

	engine := core.NewEngine(validator, core.NewExecutor(cfg.ExecutorTimeout()))
	engine.SetLogger(logger)

	l, err := openAuditLog(cfg)
	if err != nil {
		return nil, err
	}
	if l != nil {
		engine.SetAuditLog(l)
	}
	return engine, nil
}
