// Package policy resolves permission decisions for actors acting on named
// resources. A decision carries a Filter: a declarative description of the
// attributes an actor may see or write and of the records visible to them.
// Interpreting the filter against a concrete entity is left to the caller.
package policy

import (
	"fmt"
	"sort"
	"strings"
)

// Possession distinguishes grants that apply to any record from grants that
// apply only to records the actor owns or is a member of.
type Possession string

const (
	PossessionAny Possession = "any"
	PossessionOwn Possession = "own"
)

// Visibility selects which records of a collection remain visible.
type Visibility string

const (
	VisibilityAll    Visibility = "all"
	VisibilityActive Visibility = "active" // archived records are hidden
	VisibilityOwned  Visibility = "owned"  // only records owned by the actor
)

func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityAll, VisibilityActive, VisibilityOwned:
		return true
	}
	return false
}

// FieldSet is the set of attributes an actor may access.
// The zero value allows nothing.
type FieldSet struct {
	all   bool
	allow map[string]struct{}
	deny  map[string]struct{}
}

// AllFields returns a FieldSet that allows every attribute.
func AllFields() FieldSet {
	return FieldSet{all: true}
}

// ParseFieldSet builds a FieldSet from attribute globs:
// "*" allows everything, "name" allows one attribute, "!name" denies one.
// Denials always win over allowances.
func ParseFieldSet(attrs []string) (FieldSet, error) {
	if len(attrs) == 0 {
		return FieldSet{}, fmt.Errorf("attributes: at least one attribute required")
	}

	fs := FieldSet{}
	for _, raw := range attrs {
		a := strings.TrimSpace(raw)
		switch {
		case a == "*":
			fs.all = true
		case strings.HasPrefix(a, "!"):
			name := strings.TrimSpace(a[1:])
			if name == "" || name == "*" {
				return FieldSet{}, fmt.Errorf("attributes: invalid denial %q", raw)
			}
			if fs.deny == nil {
				fs.deny = make(map[string]struct{})
			}
			fs.deny[name] = struct{}{}
		case a == "":
			return FieldSet{}, fmt.Errorf("attributes: empty attribute")
		default:
			if fs.allow == nil {
				fs.allow = make(map[string]struct{})
			}
			fs.allow[a] = struct{}{}
		}
	}
	return fs, nil
}

// Allows reports whether the attribute may be accessed.
func (f FieldSet) Allows(name string) bool {
	if _, denied := f.deny[name]; denied {
		return false
	}
	if f.all {
		return true
	}
	_, ok := f.allow[name]
	return ok
}

// String renders the set in the glob syntax accepted by ParseFieldSet.
func (f FieldSet) String() string {
	var parts []string
	if f.all {
		parts = append(parts, "*")
	}
	parts = append(parts, sortedKeys(f.allow, "")...)
	parts = append(parts, sortedKeys(f.deny, "!")...)
	return strings.Join(parts, ",")
}

func sortedKeys(m map[string]struct{}, prefix string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, prefix+k)
	}
	sort.Strings(keys)
	return keys
}

// Filter describes what a granted actor may see or write.
type Filter struct {
	Fields     FieldSet
	Visibility Visibility
}

// Decision is the outcome of a permission resolution.
type Decision struct {
	Granted bool
	Filter  Filter
}
