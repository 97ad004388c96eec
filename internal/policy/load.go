package policy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

//go:embed default.toml
var defaultPolicy string

// document is the TOML layout of a policy file.
type document struct {
	Resources []string            `toml:"resources"`
	Roles     map[string][]string `toml:"roles"` // role -> roles it extends
	Grants    []grantSpec         `toml:"grant"`
}

type grantSpec struct {
	Role       string   `toml:"role"`
	Resource   string   `toml:"resource"`
	Actions    []string `toml:"actions"`
	Possession string   `toml:"possession"`
	Attributes []string `toml:"attributes"`
	Visibility string   `toml:"visibility"`
}

type grantKey struct {
	role       string
	resource   string
	action     domain.ActivityType
	possession Possession
}

// Policy is a validated, immutable set of grants.
type Policy struct {
	resources map[string]struct{}
	grants    map[grantKey]Filter
}

// Default returns the policy embedded in the binary.
func Default() (*Policy, error) {
	return Parse(defaultPolicy)
}

// LoadFile reads and parses a TOML policy file.
// An empty path yields the embedded default policy.
func LoadFile(path string) (*Policy, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}

	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("policy: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a TOML policy document.
// Unknown keys, undeclared resources, unknown actions and role cycles are
// all rejected; every error wraps domain.ErrPolicyConfig.
func Parse(data string) (*Policy, error) {
	var doc document
	md, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, domain.ErrPolicyConfig)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q: %w", undecoded[0].String(), domain.ErrPolicyConfig)
	}

	p := &Policy{
		resources: make(map[string]struct{}, len(doc.Resources)),
		grants:    make(map[grantKey]Filter),
	}
	for _, r := range doc.Resources {
		r = strings.TrimSpace(r)
		if r == "" {
			return nil, fmt.Errorf("empty resource name: %w", domain.ErrPolicyConfig)
		}
		p.resources[r] = struct{}{}
	}

	for i, g := range doc.Grants {
		if err := p.addGrant(g); err != nil {
			return nil, fmt.Errorf("grant #%d: %v: %w", i+1, err, domain.ErrPolicyConfig)
		}
	}

	if err := p.inherit(doc.Roles); err != nil {
		return nil, fmt.Errorf("roles: %v: %w", err, domain.ErrPolicyConfig)
	}

	return p, nil
}

func (p *Policy) addGrant(g grantSpec) error {
	if g.Role == "" {
		return fmt.Errorf("role is required")
	}
	if _, ok := p.resources[g.Resource]; !ok {
		return fmt.Errorf("resource %q is not declared", g.Resource)
	}
	if len(g.Actions) == 0 {
		return fmt.Errorf("at least one action required")
	}

	possession := Possession(strings.ToLower(g.Possession))
	if possession == "" {
		possession = PossessionAny
	}
	if possession != PossessionAny && possession != PossessionOwn {
		return fmt.Errorf("unknown possession %q", g.Possession)
	}

	visibility := Visibility(strings.ToLower(g.Visibility))
	if visibility == "" {
		visibility = VisibilityAll
	}
	if !visibility.IsValid() {
		return fmt.Errorf("unknown visibility %q", g.Visibility)
	}

	fields, err := ParseFieldSet(g.Attributes)
	if err != nil {
		return err
	}

	for _, a := range g.Actions {
		action := domain.ActivityType(strings.ToUpper(strings.TrimSpace(a)))
		if !action.IsValid() {
			return fmt.Errorf("unknown action %q", a)
		}
		key := grantKey{role: g.Role, resource: g.Resource, action: action, possession: possession}
		if _, dup := p.grants[key]; dup {
			return fmt.Errorf("duplicate grant for %s %s %s:%s", g.Role, g.Resource, action, possession)
		}
		p.grants[key] = Filter{Fields: fields, Visibility: visibility}
	}
	return nil
}

// inherit copies the grants of extended roles into each extending role.
// A role's own grant always takes precedence over an inherited one.
func (p *Policy) inherit(roles map[string][]string) error {
	resolved := make(map[string]bool, len(roles))
	visiting := make(map[string]bool, len(roles))

	var visit func(role string) error
	visit = func(role string) error {
		if resolved[role] {
			return nil
		}
		if visiting[role] {
			return fmt.Errorf("cycle through role %q", role)
		}
		visiting[role] = true
		for _, parent := range roles[role] {
			if err := visit(parent); err != nil {
				return err
			}
			for key, f := range p.grants {
				if key.role != parent {
					continue
				}
				own := key
				own.role = role
				if _, exists := p.grants[own]; !exists {
					p.grants[own] = f
				}
			}
		}
		visiting[role] = false
		resolved[role] = true
		return nil
	}

	for role := range roles {
		if err := visit(role); err != nil {
			return err
		}
	}
	return nil
}

// Declares reports whether the resource is known to the policy.
func (p *Policy) Declares(resource string) bool {
	_, ok := p.resources[resource]
	return ok
}
