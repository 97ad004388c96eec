package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Segment groups users targeted by feature flags.
// A segment is never physically deleted; removal sets Archived.
type Segment struct {
	ID          uuid.UUID
	Key         string
	Name        string
	Description *string
	Flags       []Flag
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy that shares no mutable state with s.
func (s Segment) Clone() Segment {
	c := s
	c.Flags = slices.Clone(s.Flags)
	if s.Description != nil {
		d := *s.Description
		c.Description = &d
	}
	return c
}

// Flag is a feature flag referenced by segments.
type Flag struct {
	ID   uuid.UUID
	Key  string
	Name string
}

// Segment attribute names, as referenced by permission policies.
const (
	SegmentFieldID          = "id"
	SegmentFieldKey         = "key"
	SegmentFieldName        = "name"
	SegmentFieldDescription = "description"
	SegmentFieldFlags       = "flags"
	SegmentFieldArchived    = "archived"
	SegmentFieldCreatedAt   = "createdAt"
	SegmentFieldUpdatedAt   = "updatedAt"
)

// SegmentPatch is the input for creating or updating a segment.
// A nil field is not set; for Description, ptr("") clears the value.
type SegmentPatch struct {
	Key         *string
	Name        *string
	Description *string
	FlagIDs     *[]uuid.UUID
	Archived    *bool
}

// IsEmpty reports whether no field is set.
func (p SegmentPatch) IsEmpty() bool {
	return p.Key == nil && p.Name == nil && p.Description == nil && p.FlagIDs == nil && p.Archived == nil
}

// Apply merges the set fields of p over s and returns the result.
func (p SegmentPatch) Apply(s Segment) Segment {
	merged := s.Clone()
	if p.Key != nil {
		merged.Key = *p.Key
	}
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Description != nil {
		if *p.Description == "" {
			merged.Description = nil
		} else {
			d := *p.Description
			merged.Description = &d
		}
	}
	if p.Archived != nil {
		merged.Archived = *p.Archived
	}
	return merged
}
