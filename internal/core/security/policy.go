package security

import (
	"fmt"
	"strings"
)

// DangerousChars holds every shell metacharacter rejected on a command line
// and escaped inside arguments.
const DangerousChars = ";&|`$(){}[]<>\\'\""

// DefaultAllowedCommands returns the built-in allow-list.
func DefaultAllowedCommands() []string {
	return []string{
		"npm", "npx",
		"pip", "pip3",
		"composer",
		"cargo",
		"gem",
		"node",
		"python", "python3",
	}
}

// AllowedCommandSet is an immutable set of program names permitted as the
// base command of a line. Build it once with NewAllowedCommandSet.
type AllowedCommandSet struct {
	names []string
	index map[string]struct{}
}

// NewAllowedCommandSet freezes names into a set. Matching is exact and
// case-sensitive. Duplicates are dropped; names that are empty or contain
// whitespace or dangerous characters are refused since they could never
// match a safe command line.
func NewAllowedCommandSet(names []string) (*AllowedCommandSet, error) {
	set := &AllowedCommandSet{
		names: make([]string, 0, len(names)),
		index: make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("allowed command must not be empty")
		}
		if strings.ContainsFunc(name, isSpace) || ContainsDangerousChars(name) {
			return nil, fmt.Errorf("allowed command %q contains unsafe characters", name)
		}
		if _, dup := set.index[name]; dup {
			continue
		}
		set.index[name] = struct{}{}
		set.names = append(set.names, name)
	}
	if len(set.names) == 0 {
		return nil, fmt.Errorf("allowed command set must not be empty")
	}
	return set, nil
}

// MustAllowedCommandSet is NewAllowedCommandSet for static tables.
func MustAllowedCommandSet(names []string) *AllowedCommandSet {
	set, err := NewAllowedCommandSet(names)
	if err != nil {
		panic(err)
	}
	return set
}

// Contains reports whether name is allow-listed.
func (s *AllowedCommandSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// List returns a copy of the names in insertion order.
func (s *AllowedCommandSet) List() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of allowed commands.
func (s *AllowedCommandSet) Len() int {
	return len(s.names)
}
