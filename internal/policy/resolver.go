package policy

import (
	"context"
	"fmt"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Resolver answers permission questions against a Policy.
// It holds no per-request state and never caches decisions.
type Resolver struct {
	policy *Policy
}

// NewResolver creates a Resolver over p.
func NewResolver(p *Policy) *Resolver {
	return &Resolver{policy: p}
}

// Resolve returns the decision for actor performing action on resource.
//
// A grant with "any" possession is preferred; an "own" grant is consulted only
// when isOwnerOrMember is true and always restricts visibility to owned records.
// An undeclared resource or an unknown action is a configuration error and is
// returned wrapped in domain.ErrPolicyConfig, never as a denial.
func (r *Resolver) Resolve(_ context.Context, actor domain.Actor, isOwnerOrMember bool, action domain.ActivityType, resource string) (Decision, error) {
	if r.policy == nil {
		return Decision{}, fmt.Errorf("resolver has no policy: %w", domain.ErrPolicyConfig)
	}
	if !r.policy.Declares(resource) {
		return Decision{}, fmt.Errorf("resource %q is not declared: %w", resource, domain.ErrPolicyConfig)
	}
	if !action.IsValid() {
		return Decision{}, fmt.Errorf("action %q is not supported: %w", action, domain.ErrPolicyConfig)
	}

	key := grantKey{role: actor.Role, resource: resource, action: action, possession: PossessionAny}
	if f, ok := r.policy.grants[key]; ok {
		return Decision{Granted: true, Filter: f}, nil
	}

	if isOwnerOrMember {
		key.possession = PossessionOwn
		if f, ok := r.policy.grants[key]; ok {
			f.Visibility = VisibilityOwned
			return Decision{Granted: true, Filter: f}, nil
		}
	}

	return Decision{}, nil
}
