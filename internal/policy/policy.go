// Package policy maps drink use cases to the permission each one requires.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultPolicy []byte

// Rule is the access rule for one use case.
type Rule struct {
	// Public use cases are served without a bearer token.
	Public bool `yaml:"public"`

	// Permission must be present in the token's permissions claim.
	Permission string `yaml:"permission"`
}

// Policy holds a Rule per drink use case.
type Policy struct {
	List   Rule `yaml:"list"`
	Detail Rule `yaml:"detail"`
	Create Rule `yaml:"create"`
	Update Rule `yaml:"update"`
	Delete Rule `yaml:"delete"`
}

// Default returns the embedded policy.
func Default() *Policy {
	p, err := Parse(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a policy file. An empty path returns Default. Use cases the
// file leaves out keep their default rule.
func Load(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return parseOver(Default(), data)
}

// Parse decodes a complete policy document and validates it.
func Parse(data []byte) (*Policy, error) {
	return parseOver(&Policy{}, data)
}

func parseOver(base *Policy, data []byte) (*Policy, error) {
	p := *base
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every non-public rule names a permission.
func (p *Policy) Validate() error {
	for _, r := range p.rules() {
		if !r.rule.Public && strings.TrimSpace(r.rule.Permission) == "" {
			return fmt.Errorf("policy: %s requires a permission unless public", r.name)
		}
	}
	return nil
}

// Permissions returns the distinct permissions the policy checks, in use
// case order. Public rules are left out.
func (p *Policy) Permissions() []string {
	var out []string
	for _, r := range p.rules() {
		if r.rule.Public || slices.Contains(out, r.rule.Permission) {
			continue
		}
		out = append(out, r.rule.Permission)
	}
	return out
}

type namedRule struct {
	name string
	rule Rule
}

func (p *Policy) rules() []namedRule {
	return []namedRule{
		{"list", p.List},
		{"detail", p.Detail},
		{"create", p.Create},
		{"update", p.Update},
		{"delete", p.Delete},
	}
}
