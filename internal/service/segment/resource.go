package segment

import (
	"strings"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/policy"
	"github.com/heartmarshall/featureflags-backend/internal/service/access"
)

// MaxKeyLength bounds segment keys and names.
const MaxKeyLength = 255

// Resource describes segments to the access protocol. Segments have no
// owner, so only "any" grants apply to them.
type Resource struct{}

var _ access.Resource[domain.Segment, domain.SegmentPatch] = Resource{}

func (Resource) Name() string { return domain.ResourceSegment }

func (Resource) RecordID(s domain.Segment) string { return s.ID.String() }

func (Resource) Archived(s domain.Segment) bool { return s.Archived }

func (Resource) OwnerID(domain.Segment) string { return "" }

func (Resource) IsOwnerOrMember(domain.Actor) bool { return false }

// Project returns the attributes of s allowed by fields. The id is always
// present so clients can address the record.
func (Resource) Project(s domain.Segment, fields policy.FieldSet) access.Record {
	out := access.Record{domain.SegmentFieldID: s.ID.String()}

	if fields.Allows(domain.SegmentFieldKey) {
		out[domain.SegmentFieldKey] = s.Key
	}
	if fields.Allows(domain.SegmentFieldName) {
		out[domain.SegmentFieldName] = s.Name
	}
	if fields.Allows(domain.SegmentFieldDescription) {
		out[domain.SegmentFieldDescription] = s.Description
	}
	if fields.Allows(domain.SegmentFieldFlags) {
		flags := make([]access.Record, 0, len(s.Flags))
		for _, f := range s.Flags {
			flags = append(flags, access.Record{"id": f.ID.String(), "key": f.Key, "name": f.Name})
		}
		out[domain.SegmentFieldFlags] = flags
	}
	if fields.Allows(domain.SegmentFieldArchived) {
		out[domain.SegmentFieldArchived] = s.Archived
	}
	if fields.Allows(domain.SegmentFieldCreatedAt) {
		out[domain.SegmentFieldCreatedAt] = s.CreatedAt
	}
	if fields.Allows(domain.SegmentFieldUpdatedAt) {
		out[domain.SegmentFieldUpdatedAt] = s.UpdatedAt
	}
	return out
}

// ProjectInput clears the patch fields the actor may not write.
func (Resource) ProjectInput(p domain.SegmentPatch, fields policy.FieldSet) domain.SegmentPatch {
	if !fields.Allows(domain.SegmentFieldKey) {
		p.Key = nil
	}
	if !fields.Allows(domain.SegmentFieldName) {
		p.Name = nil
	}
	if !fields.Allows(domain.SegmentFieldDescription) {
		p.Description = nil
	}
	if !fields.Allows(domain.SegmentFieldFlags) {
		p.FlagIDs = nil
	}
	if !fields.Allows(domain.SegmentFieldArchived) {
		p.Archived = nil
	}
	return p
}

// Validate checks a projected patch. Create requires key and name; update
// requires at least one field and rejects blank values.
func (Resource) Validate(action domain.ActivityType, p domain.SegmentPatch) error {
	var errs []domain.FieldError

	if action == domain.ActivityCreate {
		if p.Key == nil {
			errs = append(errs, domain.FieldError{Field: domain.SegmentFieldKey, Message: "required"})
		}
		if p.Name == nil {
			errs = append(errs, domain.FieldError{Field: domain.SegmentFieldName, Message: "required"})
		}
	} else if p.IsEmpty() {
		return domain.NewValidationError("input", "at least one field must be set")
	}

	errs = append(errs, checkText(domain.SegmentFieldKey, p.Key)...)
	errs = append(errs, checkText(domain.SegmentFieldName, p.Name)...)

	if p.Key != nil && strings.ContainsAny(*p.Key, " \t\n") {
		errs = append(errs, domain.FieldError{Field: domain.SegmentFieldKey, Message: "must not contain whitespace"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func checkText(field string, v *string) []domain.FieldError {
	if v == nil {
		return nil
	}
	if strings.TrimSpace(*v) == "" {
		return []domain.FieldError{{Field: field, Message: "must not be blank"}}
	}
	if len(*v) > MaxKeyLength {
		return []domain.FieldError{{Field: field, Message: "too long"}}
	}
	return nil
}
