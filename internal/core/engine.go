package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/audit"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/Lin-Jiong-HDU/guardrail/internal/observability"
	"mvdan.cc/sh/v3/syntax"
)

// ProcessSignaler terminates a process by id.
type ProcessSignaler interface {
	Terminate(pid int) error
}

// OSSignaler sends SIGTERM through the operating system.
type OSSignaler struct{}

// Terminate sends SIGTERM to pid.
func (OSSignaler) Terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Signal(syscall.SIGTERM)
}

// Engine is the command handler behind the trust boundary. Every request
// is validated before anything runs; rejected requests are logged,
// counted and audited, and surface as *security.ValidationError.
type Engine struct {
	validator *security.CommandValidator
	runner    Runner
	signaler  ProcessSignaler
	audit     *audit.Log
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewEngine creates a new engine. A nil validator uses the default
// allow-list.
func NewEngine(validator *security.CommandValidator, runner Runner) *Engine {
	if validator == nil {
		validator = security.NewCommandValidator(nil)
	}
	return &Engine{
		validator: validator,
		runner:    runner,
		signaler:  OSSignaler{},
		logger:    slog.Default(),
	}
}

// SetAuditLog sets the audit log for the engine
func (e *Engine) SetAuditLog(l *audit.Log) {
	e.audit = l
}

// SetMetrics sets the metrics for the engine
func (e *Engine) SetMetrics(m *observability.Metrics) {
	e.metrics = m
}

// SetLogger sets the logger for the engine
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetSignaler replaces the process signaler used by StopProcess.
func (e *Engine) SetSignaler(s ProcessSignaler) {
	e.signaler = s
}

// Validator returns the command validator in use.
func (e *Engine) Validator() *security.CommandValidator {
	return e.validator
}

// RunCommand validates raw and runs it in dir. An empty dir runs in the
// current directory; otherwise dir is validated first.
func (e *Engine) RunCommand(ctx context.Context, raw, dir string) (*Result, error) {
	return e.run(ctx, OpRunCommand, raw, raw, dir)
}

// InstallPackage installs name with the given package manager.
func (e *Engine) InstallPackage(ctx context.Context, manager, name string) (*Result, error) {
	return e.packageOp(ctx, OpInstall, manager, name)
}

// UninstallPackage removes name with the given package manager.
func (e *Engine) UninstallPackage(ctx context.Context, manager, name string) (*Result, error) {
	return e.packageOp(ctx, OpUninstall, manager, name)
}

// ListPackages lists the packages installed by manager.
func (e *Engine) ListPackages(ctx context.Context, manager string) (*Result, error) {
	pm := security.ValidatePackageManager(manager)
	e.metrics.RecordValidation("package_manager", pm.OK(), string(pm.Kind()))
	if !pm.OK() {
		return nil, e.reject(OpListPackages, manager, "package manager", pm.Kind(), pm.Reason())
	}

	var line string
	switch pm.Value() {
	case security.PackageManagerNPM:
		line = "npm list --depth=0"
	case security.PackageManagerPip:
		line = "pip list"
	case security.PackageManagerComposer:
		line = "composer show"
	}
	return e.run(ctx, OpListPackages, manager, line, "")
}

func (e *Engine) packageOp(ctx context.Context, op, manager, name string) (*Result, error) {
	input := manager + " " + name

	pm := security.ValidatePackageManager(manager)
	e.metrics.RecordValidation("package_manager", pm.OK(), string(pm.Kind()))
	if !pm.OK() {
		return nil, e.reject(op, input, "package manager", pm.Kind(), pm.Reason())
	}

	pkg := security.ValidatePackageName(name)
	e.metrics.RecordValidation("package_name", pkg.OK(), string(pkg.Kind()))
	if !pkg.OK() {
		return nil, e.reject(op, input, "package name", pkg.Kind(), pkg.Reason())
	}

	line := packageCommand(op, pm.Value()) + " " + pkg.Value()
	return e.run(ctx, op, input, line, "")
}

func packageCommand(op string, pm security.PackageManager) string {
	install := op == OpInstall
	switch pm {
	case security.PackageManagerPip:
		if install {
			return "pip install"
		}
		return "pip uninstall -y"
	case security.PackageManagerComposer:
		if install {
			return "composer require"
		}
		return "composer remove"
	default:
		if install {
			return "npm install"
		}
		return "npm uninstall"
	}
}

// run validates line and executes it. input is what the caller supplied
// and is what gets audited.
func (e *Engine) run(ctx context.Context, op, input, line, dir string) (*Result, error) {
	if dir != "" {
		p := security.ValidatePath(dir)
		e.metrics.RecordValidation("path", p.OK(), string(p.Kind()))
		if !p.OK() {
			return nil, e.reject(op, input, "path", p.Kind(), p.Reason())
		}
		dir = p.Value()
	}

	cmd := e.validator.Validate(line)
	if !cmd.OK() {
		e.metrics.RecordValidation("command", false, string(cmd.Kind()))
		return nil, e.reject(op, input, "command", cmd.Kind(), cmd.Reason())
	}

	argv, err := splitArgv(cmd.Value())
	if err != nil {
		e.logger.Debug("command split failed", "command", cmd.Value(), "error", err)
		e.metrics.RecordValidation("command", false, string(security.KindMalformedFormat))
		return nil, e.reject(op, input, "command", security.KindMalformedFormat, "command is not a plain word list")
	}
	e.metrics.RecordValidation("command", true, "")

	rec := e.accept(op, input, cmd.Value())

	e.logger.Info("executing command", "operation", op, "command", cmd.Value(), "dir", dir)
	e.markExecuting(rec)

	start := time.Now()
	result, err := e.runner.Execute(ctx, Command{Cmd: argv[0], Args: argv[1:], Dir: dir})
	if err != nil {
		e.finish(op, rec, &audit.ExecutionResult{ExitCode: -1, Error: err.Error()}, time.Since(start))
		return nil, fmt.Errorf("failed to execute %q: %w", cmd.Value(), err)
	}

	res := &audit.ExecutionResult{ExitCode: result.ExitCode, Output: result.Output}
	if result.Error != nil {
		res.Error = result.Error.Error()
	}
	e.finish(op, rec, res, time.Since(start))

	return result, nil
}

// StopProcess validates pid and sends it SIGTERM. It returns the
// validated pid.
func (e *Engine) StopProcess(ctx context.Context, pid any) (int, error) {
	return e.stop(ctx, fmt.Sprint(pid), security.ValidatePid(pid))
}

// StopProcessString is StopProcess for a pid typed as text, such as a
// command-line argument or a request body field.
func (e *Engine) StopProcessString(ctx context.Context, raw string) (int, error) {
	return e.stop(ctx, raw, security.ValidatePidString(raw))
}

func (e *Engine) stop(ctx context.Context, input string, out security.Outcome[int]) (int, error) {
	e.metrics.RecordValidation("pid", out.OK(), string(out.Kind()))
	if !out.OK() {
		return 0, e.reject(OpStopProcess, input, "pid", out.Kind(), out.Reason())
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target := out.Value()
	rec := e.accept(OpStopProcess, input, fmt.Sprintf("SIGTERM %d", target))
	e.logger.Info("stopping process", "pid", target)
	e.markExecuting(rec)

	start := time.Now()
	err := e.signaler.Terminate(target)

	res := &audit.ExecutionResult{}
	if err != nil {
		res.ExitCode = 1
		res.Error = err.Error()
	}
	e.finish(OpStopProcess, rec, res, time.Since(start))

	if err != nil {
		return target, fmt.Errorf("failed to stop process %d: %w", target, err)
	}
	return target, nil
}

// splitArgv parses a sanitized line as a single simple command and returns
// its words. Nothing is expanded: every word must be a plain literal and
// the words must match the line's whitespace-separated fields, so a tilde,
// glob or comment marker reaches the program exactly as written or the
// line is refused.
func splitArgv(line string) ([]string, error) {
	f, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, err
	}
	if len(f.Stmts) != 1 {
		return nil, fmt.Errorf("expected one statement, got %d", len(f.Stmts))
	}

	stmt := f.Stmts[0]
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || len(call.Assigns) > 0 || len(stmt.Redirs) > 0 || stmt.Negated || stmt.Background || stmt.Coprocess {
		return nil, errors.New("not a simple command")
	}

	argv := make([]string, 0, len(call.Args))
	for _, w := range call.Args {
		lit := w.Lit()
		if lit == "" {
			return nil, errors.New("command contains a non-literal word")
		}
		argv = append(argv, lit)
	}
	if !slices.Equal(argv, strings.Fields(line)) {
		return nil, errors.New("command words do not match its fields")
	}
	return argv, nil
}

func (e *Engine) reject(op, input, field string, kind security.ErrorKind, reason string) error {
	e.logger.Warn("request rejected", "operation", op, "field", field, "kind", kind, "reason", reason)

	if e.audit != nil {
		if _, err := e.audit.Reject(op, input, kind, reason); err != nil {
			e.logger.Error("failed to write audit record", "error", err)
		}
	}

	return &security.ValidationError{Kind: kind, Field: field, Reason: reason}
}

func (e *Engine) accept(op, input, command string) string {
	if e.audit == nil {
		return ""
	}
	rec, err := e.audit.Accept(op, input, command)
	if err != nil {
		e.logger.Error("failed to write audit record", "error", err)
	}
	return rec.ID
}

func (e *Engine) markExecuting(id string) {
	if e.audit == nil || id == "" {
		return
	}
	if err := e.audit.MarkExecuting(id); err != nil {
		e.logger.Error("failed to update audit record", "id", id, "error", err)
	}
}

func (e *Engine) finish(op, id string, res *audit.ExecutionResult, d time.Duration) {
	status := audit.StatusCompleted
	if !res.Succeeded() {
		status = audit.StatusFailed
		e.logger.Warn("operation failed", "operation", op, "exit_code", res.ExitCode, "error", res.Error)
	}
	e.metrics.RecordExecution(op, string(status), d)

	if e.audit == nil || id == "" {
		return
	}
	if err := e.audit.SetResult(id, res); err != nil {
		e.logger.Error("failed to update audit record", "id", id, "error", err)
	}
}
