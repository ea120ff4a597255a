package domain

import "time"

// TargetKind identifies the entity type a tombstone hides.
type TargetKind string

// Tombstone target kinds.
const (
	TargetDocument TargetKind = "document"
	TargetChunk    TargetKind = "chunk"
	TargetFact     TargetKind = "fact"
	TargetSummary  TargetKind = "summary"
)

// IsValid returns true if the kind is recognised.
func (k TargetKind) IsValid() bool {
	switch k {
	case TargetDocument, TargetChunk, TargetFact, TargetSummary:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k TargetKind) String() string {
	return string(k)
}

// Tombstone marks TargetID as logically deleted. Tombstones are never
// mutated or removed; the set of their targets defines visibility.
type Tombstone struct {
	ID         string     `json:"id" validate:"required"`
	TargetID   string     `json:"target_id" validate:"required"`
	TargetKind TargetKind `json:"target_kind" validate:"required"`
	Reason     string     `json:"reason"`
	DeletedAt  time.Time  `json:"deleted_at"`
}

// ForgetStatus is the outcome of a forget request.
type ForgetStatus string

// Forget outcomes.
const (
	// ForgetDeleted means at least one tombstone was written.
	ForgetDeleted ForgetStatus = "deleted"

	// ForgetNotFound means the id is unknown or already invisible.
	// Nothing was written.
	ForgetNotFound ForgetStatus = "not_found"
)

// ForgetResult reports what a forget request tombstoned.
type ForgetResult struct {
	Status   ForgetStatus `json:"status"`
	TargetID string       `json:"target_id"`
	Kind     TargetKind   `json:"kind,omitempty"`

	// Tombstones lists every tombstone written, parent first.
	Tombstones []Tombstone `json:"tombstones"`
}

// Found returns true if the target existed and was tombstoned.
func (r ForgetResult) Found() bool {
	return r.Status == ForgetDeleted
}
