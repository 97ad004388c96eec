package access

import (
	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/policy"
)

// Visible reports whether rec passes the visibility rule of filter for actor.
func Visible[T, P any](res Resource[T, P], filter policy.Filter, actor domain.Actor, rec T) bool {
	switch filter.Visibility {
	case policy.VisibilityActive:
		return !res.Archived(rec)
	case policy.VisibilityOwned:
		owner := res.OwnerID(rec)
		return owner != "" && owner == actor.ID
	default:
		return true
	}
}

// Apply filters recs by visibility and projects the survivors to the
// permitted fields. The result is never nil.
func Apply[T, P any](res Resource[T, P], filter policy.Filter, actor domain.Actor, recs []T) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if !Visible(res, filter, actor, rec) {
			continue
		}
		out = append(out, res.Project(rec, filter.Fields))
	}
	return out
}
