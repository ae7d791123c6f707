// Package report describes the active trust-boundary policy in markdown
// and YAML.
package report

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/csp"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
	"gopkg.in/yaml.v3"
)

// Report is a snapshot of the policy in force.
type Report struct {
	AllowedCommands []string        `yaml:"allowed_commands" json:"allowed_commands"`
	DangerousChars  string          `yaml:"dangerous_chars" json:"dangerous_chars"`
	PackageManagers []string        `yaml:"package_managers" json:"package_managers"`
	Development     bool            `yaml:"development" json:"development"`
	DevServerURL    string          `yaml:"dev_server_url,omitempty" json:"dev_server_url,omitempty"`
	Policy          csp.PolicyTable `yaml:"policy" json:"policy"`
	Header          string          `yaml:"header" json:"header"`
}

// Build collects the report for cfg. The header is generated without a
// nonce, as served to responses that carry no inline script.
func Build(validator *security.CommandValidator, builder *csp.Builder, cfg csp.RequestConfig) (*Report, error) {
	cfg.Nonce = ""

	policy, err := builder.Policy(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy: %w", err)
	}

	managers := make([]string, 0, len(security.PackageManagers()))
	for _, pm := range security.PackageManagers() {
		managers = append(managers, pm.String())
	}

	return &Report{
		AllowedCommands: validator.AllowedCommands(),
		DangerousChars:  security.DangerousChars,
		PackageManagers: managers,
		Development:     cfg.IsDevelopment,
		DevServerURL:    cfg.DevServerURL,
		Policy:          policy,
		Header:          policy.String(),
	}, nil
}

// YAML encodes the report.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Markdown formats the report for terminal rendering.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Guardrail policy\n\n")

	b.WriteString("## Allowed commands\n\n")
	for _, c := range r.AllowedCommands {
		fmt.Fprintf(&b, "- `%s`\n", c)
	}

	b.WriteString("\n## Rejected characters\n\n")
	chars := make([]string, 0, len(r.DangerousChars))
	for _, c := range r.DangerousChars {
		chars = append(chars, "`` "+string(c)+" ``")
	}
	b.WriteString(strings.Join(chars, " "))
	b.WriteString("\n")

	b.WriteString("\n## Package managers\n\n")
	for _, pm := range r.PackageManagers {
		fmt.Fprintf(&b, "- %s\n", pm)
	}

	mode := "production"
	if r.Development {
		mode = "development"
	}
	fmt.Fprintf(&b, "\n## Content-Security-Policy (%s)\n\n", mode)
	b.WriteString("| Directive | Sources |\n|---|---|\n")
	for _, d := range r.Policy {
		fmt.Fprintf(&b, "| %s | %s |\n", d.Name, strings.ReplaceAll(strings.Join(d.Sources, " "), "|", `\|`))
	}

	return b.String()
}
