package security

import (
	"fmt"
	"strings"
	"unicode"
)

// CommandValidator decides whether a full command line may be executed.
type CommandValidator struct {
	allowed *AllowedCommandSet
}

// NewCommandValidator creates a validator over the given allow-list.
// A nil set falls back to DefaultAllowedCommands.
func NewCommandValidator(allowed *AllowedCommandSet) *CommandValidator {
	if allowed == nil {
		allowed = MustAllowedCommandSet(DefaultAllowedCommands())
	}
	return &CommandValidator{allowed: allowed}
}

// Validate checks raw and returns the sanitized command line.
//
// The gates run in order and the first failure wins: empty input, base
// command not allow-listed, dangerous character anywhere on the line.
// Accepted lines have their arguments escaped and whitespace runs collapsed
// to single spaces.
func (cv *CommandValidator) Validate(raw string) Outcome[string] {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Invalid[string](KindEmptyInput, "command must not be empty")
	}

	fields := strings.Fields(trimmed)
	base := fields[0]
	if !cv.allowed.Contains(base) {
		return Invalid[string](KindNotAllowListed, fmt.Sprintf("command %q is not allowed", base))
	}

	// The scan covers the base command too.
	if ContainsDangerousChars(trimmed) {
		return Invalid[string](KindDangerousCharacter, "unsafe characters present")
	}

	parts := make([]string, 0, len(fields))
	parts = append(parts, base)
	for _, arg := range fields[1:] {
		parts = append(parts, EscapeArgument(arg))
	}
	return Valid(strings.Join(parts, " "))
}

// AllowedCommands returns the allow-list for display and audit.
func (cv *CommandValidator) AllowedCommands() []string {
	return cv.allowed.List()
}

// IsAllowed reports whether name is an allow-listed base command.
func (cv *CommandValidator) IsAllowed(name string) bool {
	return cv.allowed.Contains(name)
}

// ContainsDangerousChars reports whether s holds any shell metacharacter.
func ContainsDangerousChars(s string) bool {
	return strings.ContainsAny(s, DangerousChars)
}

func isDangerous(c byte) bool {
	return strings.IndexByte(DangerousChars, c) >= 0
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
