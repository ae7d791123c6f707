package audit

import (
	"fmt"
	"time"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"github.com/google/uuid"
)

// Status represents where a record is in its lifecycle
type Status string

const (
	StatusRejected  Status = "rejected"  // Refused by validation, never run
	StatusAccepted  Status = "accepted"  // Passed validation
	StatusExecuting Status = "executing" // Handed to the executor
	StatusCompleted Status = "completed" // Exited successfully
	StatusFailed    Status = "failed"    // Exited with an error
)

// Statuses lists every lifecycle state in order.
func Statuses() []Status {
	return []Status{StatusRejected, StatusAccepted, StatusExecuting, StatusCompleted, StatusFailed}
}

// ParseStatus maps a status name to its Status.
func ParseStatus(name string) (Status, error) {
	for _, s := range Statuses() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", name)
}

// Record is one trust-boundary decision and, when accepted, its outcome.
type Record struct {
	ID        string             `json:"id"`
	Operation string             `json:"operation"`
	Input     string             `json:"input"`
	Command   string             `json:"command,omitempty"`
	Status    Status             `json:"status"`
	Kind      security.ErrorKind `json:"kind,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Result    *ExecutionResult   `json:"result,omitempty"`
}

// ExecutionResult holds the result of a command execution
type ExecutionResult struct {
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
}

// Succeeded reports whether the execution exited cleanly.
func (r *ExecutionResult) Succeeded() bool {
	return r.ExitCode == 0 && r.Error == ""
}

// NewRejected creates a terminal record for refused input.
func NewRejected(operation, input string, kind security.ErrorKind, reason string) *Record {
	r := newRecord(operation, input, StatusRejected)
	r.Kind = kind
	r.Reason = reason
	return r
}

// NewAccepted creates a record for input that passed validation. command
// is the sanitized line that will be run.
func NewAccepted(operation, input, command string) *Record {
	r := newRecord(operation, input, StatusAccepted)
	r.Command = command
	return r
}

func newRecord(operation, input string, status Status) *Record {
	now := time.Now()
	return &Record{
		ID:        uuid.New().String(),
		Operation: operation,
		Input:     input,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo checks if a status transition is valid
func (r *Record) CanTransitionTo(next Status) bool {
	validTransitions := map[Status][]Status{
		StatusAccepted:  {StatusExecuting},
		StatusExecuting: {StatusCompleted, StatusFailed},
	}

	for _, status := range validTransitions[r.Status] {
		if status == next {
			return true
		}
	}
	return false
}

// TransitionStatus updates the status if the transition is valid
func (r *Record) TransitionStatus(next Status) bool {
	if !r.CanTransitionTo(next) {
		return false
	}
	r.Status = next
	r.UpdatedAt = time.Now()
	return true
}

// IsTerminal reports whether no further transition is possible.
func (r *Record) IsTerminal() bool {
	switch r.Status {
	case StatusRejected, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
