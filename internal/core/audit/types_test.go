package audit

import (
	"testing"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
)

func TestRecord_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"accepted to executing", StatusAccepted, StatusExecuting, true},
		{"executing to completed", StatusExecuting, StatusCompleted, true},
		{"executing to failed", StatusExecuting, StatusFailed, true},
		{"accepted to completed", StatusAccepted, StatusCompleted, false},
		{"rejected to executing", StatusRejected, StatusExecuting, false},
		{"rejected to accepted", StatusRejected, StatusAccepted, false},
		{"completed to failed", StatusCompleted, StatusFailed, false},
		{"failed to executing", StatusFailed, StatusExecuting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Status: tt.from}
			if got := r.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s) from %s = %v, want %v", tt.to, tt.from, got, tt.want)
			}
		})
	}
}

func TestNewRejected(t *testing.T) {
	r := NewRejected("run_command", "rm -rf /", security.KindNotAllowListed, `command "rm" is not allowed`)

	if r.ID == "" {
		t.Error("Expected an ID")
	}
	if r.Status != StatusRejected {
		t.Errorf("Expected status rejected, got %s", r.Status)
	}
	if !r.IsTerminal() {
		t.Error("Expected rejected record to be terminal")
	}
	if r.Command != "" {
		t.Errorf("Rejected record should carry no command, got %q", r.Command)
	}
	if r.TransitionStatus(StatusExecuting) {
		t.Error("Rejected record must never execute")
	}
}

func TestNewAccepted(t *testing.T) {
	r := NewAccepted("run_command", "npm  install  lodash", "npm install lodash")

	if r.Status != StatusAccepted || r.IsTerminal() {
		t.Errorf("Unexpected state %s", r.Status)
	}
	if r.Command != "npm install lodash" {
		t.Errorf("Command = %q", r.Command)
	}
	if !r.TransitionStatus(StatusExecuting) {
		t.Fatal("Expected transition to executing")
	}
	if r.UpdatedAt.Before(r.CreatedAt) {
		t.Error("UpdatedAt went backwards")
	}
}

func TestExecutionResult_Succeeded(t *testing.T) {
	tests := []struct {
		name   string
		result ExecutionResult
		want   bool
	}{
		{"clean exit", ExecutionResult{ExitCode: 0}, true},
		{"non-zero exit", ExecutionResult{ExitCode: 1}, false},
		{"start error", ExecutionResult{ExitCode: 0, Error: "not found"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Succeeded(); got != tt.want {
				t.Errorf("Succeeded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}

	for _, name := range []string{"", "bogus", "Completed", " rejected"} {
		if _, err := ParseStatus(name); err == nil {
			t.Errorf("ParseStatus(%q) succeeded, want error", name)
		}
	}
}
