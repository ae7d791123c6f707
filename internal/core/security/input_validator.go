package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Package name grammars. npm names are lowercase only; pip names accept
// both cases.
var (
	npmPackagePattern = regexp.MustCompile(`^(@[a-z0-9\-~][a-z0-9\-._~]*/)?[a-z0-9\-~][a-z0-9\-._~]*$`)
	pipPackagePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)
)

// maxSafeInteger is the largest integer a float64 represents exactly.
const maxSafeInteger = 1<<53 - 1

// PackageManager is one of the supported package managers.
type PackageManager string

const (
	PackageManagerNPM      PackageManager = "npm"
	PackageManagerPip      PackageManager = "pip"
	PackageManagerComposer PackageManager = "composer"
)

// PackageManagers returns every supported package manager.
func PackageManagers() []PackageManager {
	return []PackageManager{PackageManagerNPM, PackageManagerPip, PackageManagerComposer}
}

func (pm PackageManager) String() string { return string(pm) }

// ValidatePackageName accepts npm or pip package names. Case is preserved.
func ValidatePackageName(raw string) Outcome[string] {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Invalid[string](KindEmptyInput, "package name must not be empty")
	}
	if npmPackagePattern.MatchString(name) || pipPackagePattern.MatchString(name) {
		return Valid(name)
	}
	return Invalid[string](KindMalformedFormat, "invalid package name format")
}

// ValidatePid accepts a positive integral process id given as any Go
// numeric type or json.Number. The checks run from least to most specific
// so the reported reason is the first one that applies.
func ValidatePid(raw any) Outcome[int] {
	f, ok := numericValue(raw)
	if !ok {
		return Invalid[int](KindNotNumeric, "pid must be numeric")
	}
	return validatePidFloat(f)
}

// ValidatePidString parses raw as a number before validating it as a pid.
func ValidatePidString(raw string) Outcome[int] {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Invalid[int](KindNotNumeric, "pid must be numeric")
	}
	return validatePidFloat(f)
}

func validatePidFloat(f float64) Outcome[int] {
	switch {
	case math.IsNaN(f):
		return Invalid[int](KindNotNumeric, "pid must not be NaN")
	case math.IsInf(f, 0):
		return Invalid[int](KindNotFinite, "pid must be finite")
	case f != math.Trunc(f):
		return Invalid[int](KindNotAnInteger, "pid must be an integer")
	case f <= 0:
		return Invalid[int](KindOutOfRange, "pid must be a positive integer")
	case f > maxSafeInteger:
		return Invalid[int](KindOutOfRange, "pid must be a safe integer")
	}
	return Valid(int(f))
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ValidatePath accepts any non-empty path without a ".." sequence. The
// trimmed path is returned as given; it is not normalized, so a traversal
// cannot be hidden behind cleaning.
func ValidatePath(raw string) Outcome[string] {
	path := strings.TrimSpace(raw)
	if path == "" {
		return Invalid[string](KindEmptyInput, "path must not be empty")
	}
	if strings.Contains(path, "..") {
		return Invalid[string](KindMalformedFormat, "path must not contain '..'")
	}
	return Valid(path)
}

// ValidatePackageManager accepts one of PackageManagers, ignoring case and
// surrounding whitespace.
func ValidatePackageManager(raw string) Outcome[PackageManager] {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return Invalid[PackageManager](KindEmptyInput, "package manager must not be empty")
	}
	for _, pm := range PackageManagers() {
		if name == string(pm) {
			return Valid(pm)
		}
	}
	return Invalid[PackageManager](KindMalformedFormat,
		fmt.Sprintf("invalid package manager %q: must be one of %s", name, packageManagerList()))
}

func packageManagerList() string {
	names := make([]string, 0, len(PackageManagers()))
	for _, pm := range PackageManagers() {
		names = append(names, string(pm))
	}
	return strings.Join(names, ", ")
}
