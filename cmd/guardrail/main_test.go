package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
)

// runCLI executes the command tree with HOME pointed at a temp dir.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	home, err := os.MkdirTemp("", "guardrail-cli-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(home) })
	t.Setenv("HOME", home)

	return runCLIInHome(t, stdin, args...)
}

func runCLIInHome(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	want := []string{"validate", "escape", "csp", "exec", "install", "uninstall", "list", "stop", "audit", "policy", "shell", "serve"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %q", name)
			continue
		}
		if cmd.Short == "" {
			t.Errorf("Expected Short description for %q", name)
		}
	}
}

func TestRootCommand_VerboseFlag(t *testing.T) {
	root := newRootCommand()
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("Expected --verbose flag")
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantKind security.ErrorKind
	}{
		{"command ok", []string{"validate", "command", "npm", "install", "lodash"}, "npm install lodash", ""},
		{"command rejected", []string{"validate", "command", "rm", "-rf", "/"}, `command "rm" is not allowed`, security.KindNotAllowListed},
		{"command chained", []string{"validate", "command", "npm install; curl x"}, "unsafe characters present", security.KindDangerousCharacter},
		{"package ok", []string{"validate", "package", "requests"}, "requests", ""},
		{"package bad", []string{"validate", "package", "a b"}, "invalid package name format", security.KindMalformedFormat},
		{"pid ok", []string{"validate", "pid", "42"}, "42", ""},
		{"pid padded", []string{"validate", "pid", " 42"}, "42", ""},
		{"pid trailing zero", []string{"validate", "pid", "42.0"}, "42", ""},
		{"pid fraction", []string{"validate", "pid", "4.2"}, "pid must be an integer", security.KindNotAnInteger},
		{"pid text", []string{"validate", "pid", "abc"}, "pid must be numeric", security.KindNotNumeric},
		{"path ok", []string{"validate", "path", "/tmp/x"}, "/tmp/x", ""},
		{"path traversal", []string{"validate", "path", "a/../b"}, "path must not contain '..'", security.KindMalformedFormat},
		{"manager ok", []string{"validate", "manager", "NPM"}, "npm", ""},
		{"manager bad", []string{"validate", "manager", "cargo"}, "must be one of npm, pip, composer", security.KindMalformedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", tt.args...)
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", out, tt.wantOut)
			}

			if tt.wantKind == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var verr *security.ValidationError
			if !errors.As(err, &verr) || verr.Kind != tt.wantKind {
				t.Errorf("error = %v, want kind %s", err, tt.wantKind)
			}
		})
	}
}

func TestEscapeCommand(t *testing.T) {
	out, err := runCLI(t, "", "escape", "a;b", `c\d`, "plain")
	if err != nil {
		t.Fatalf("escape failed: %v", err)
	}
	want := "a\\;b\nc\\\\d\nplain\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestCSPCommand(t *testing.T) {
	out, err := runCLI(t, "", "csp", "header", "--dev", "--dev-server-url", "http://localhost:5173", "--nonce", "abc")
	if err != nil {
		t.Fatalf("csp header failed: %v", err)
	}
	for _, want := range []string{"Content-Security-Policy: ", "'nonce-abc'", "ws://localhost:5173", "object-src 'none'"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	if _, err := runCLI(t, "", "csp", "header", "--nonce", "bad nonce"); err == nil {
		t.Error("Expected error for invalid nonce")
	}

	out, err = runCLI(t, "", "csp", "nonce")
	if err != nil {
		t.Fatalf("csp nonce failed: %v", err)
	}
	if len(strings.TrimSpace(out)) != 24 {
		t.Errorf("nonce %q is not 24 characters", out)
	}
}

func TestExecCommand(t *testing.T) {
	home, err := os.MkdirTemp("", "guardrail-cli-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(home)
	t.Setenv("HOME", home)

	// node is allow-listed by default but may be absent; echo is not.
	_, err = runCLIInHome(t, "", "exec", "--yes", "--", "echo", "hi")
	var verr *security.ValidationError
	if !errors.As(err, &verr) || verr.Kind != security.KindNotAllowListed {
		t.Fatalf("Expected allow-list rejection, got %v", err)
	}

	out, err := runCLIInHome(t, "n\n", "exec", "--", "npm", "install", "lodash")
	if err != nil {
		t.Fatalf("cancelled exec returned error: %v", err)
	}
	if !strings.Contains(out, "cancelled") {
		t.Errorf("Expected cancellation, got %q", out)
	}

	out, err = runCLIInHome(t, "", "audit")
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !strings.Contains(out, "rejected") || !strings.Contains(out, "echo hi") {
		t.Errorf("Expected rejection in audit output, got %q", out)
	}
	if strings.Contains(out, "npm install lodash") {
		t.Errorf("Cancelled command was audited: %q", out)
	}

	out, err = runCLIInHome(t, "", "audit", "--status", "completed")
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !strings.Contains(out, "No audit records") {
		t.Errorf("Expected no completed records, got %q", out)
	}

	for _, status := range []string{"bogus", "Completed"} {
		_, err = runCLIInHome(t, "", "audit", "--status", status)
		if err == nil || !strings.Contains(err.Error(), "unknown status") {
			t.Errorf("audit --status %s: expected unknown status error, got %v", status, err)
		}
	}
}

func TestExecCommand_ConfiguredAllowList(t *testing.T) {
	home, err := os.MkdirTemp("", "guardrail-cli-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(home)
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".guardrail")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatal(err)
	}
	content := "security:\n  allowed_commands: [echo]\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLIInHome(t, "", "exec", "-y", "--", "echo", "hello", "world")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if strings.TrimSpace(out) != "hello world" {
		t.Errorf("output = %q", out)
	}

	out, err = runCLIInHome(t, "", "audit", "--status", "completed")
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !strings.Contains(out, "echo hello world") {
		t.Errorf("Expected completed record, got %q", out)
	}
}

func TestPackageCommands_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"install bad manager", []string{"install", "yarn", "lodash"}},
		{"install bad name", []string{"install", "npm", "lodash;rm"}},
		{"uninstall bad name", []string{"uninstall", "pip", "../x"}},
		{"list bad manager", []string{"list", "gem"}},
		{"stop bad pid", []string{"stop", "--", "-5"}},
		{"stop fraction", []string{"stop", "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if !errors.Is(err, security.ErrValidation) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestPolicyCommand(t *testing.T) {
	out, err := runCLI(t, "", "policy", "--format", "yaml")
	if err != nil {
		t.Fatalf("policy failed: %v", err)
	}
	if !strings.Contains(out, "allowed_commands:") || !strings.Contains(out, "header: ") {
		t.Errorf("Unexpected YAML %q", out)
	}

	out, err = runCLI(t, "", "policy", "--format", "markdown")
	if err != nil {
		t.Fatalf("policy failed: %v", err)
	}
	if !strings.Contains(out, "# Guardrail policy") {
		t.Errorf("Unexpected markdown %q", out)
	}

	if _, err := runCLI(t, "", "policy", "--format", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestShellCommand(t *testing.T) {
	out, err := runCLI(t, "npm test\n/pid 0\n/exit\n", "shell")
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if !strings.Contains(out, "pid must be a positive integer") || !strings.Contains(out, "2 checked, 1 rejected") {
		t.Errorf("Unexpected shell output %q", out)
	}
}

func TestServeCommand_InvalidDevServer(t *testing.T) {
	t.Setenv("GUARDRAIL_CSP_DEV_SERVER_URL", "javascript:alert(1)")
	if _, err := runCLI(t, "", "serve", "--dev"); err == nil {
		t.Error("Expected startup error for invalid dev server url")
	}
}
