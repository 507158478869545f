package domain

// EntryStatus is the lifecycle state shared by journals and vouchers.
//
// The legal transitions are:
//
//	DRAFT   -> PENDING  (submit for approval, vouchers)
//	DRAFT   -> POSTED   (post)
//	PENDING -> POSTED   (post)
//	POSTED  -> REVERSED (reverse, produces a compensating journal)
//
// DRAFT and PENDING entries may additionally be deleted. REVERSED is
// terminal, and POSTED is terminal except for the explicit reverse action.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "DRAFT"
	StatusPending  EntryStatus = "PENDING"
	StatusPosted   EntryStatus = "POSTED"
	StatusReversed EntryStatus = "REVERSED"
)

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition. Every mutating service operation consults this guard before
// touching persistence.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPending || next == StatusPosted
	case StatusPending:
		return next == StatusPosted
	case StatusPosted:
		return next == StatusReversed
	default:
		return false
	}
}

// IsDeletable reports whether an entry in state s may still be deleted.
// Posted and reversed entries are permanent records.
func (s EntryStatus) IsDeletable() bool {
	return s == StatusDraft || s == StatusPending
}

// IsMutable reports whether header fields (date, description, reference) of an
// entry in state s may still be edited.
func (s EntryStatus) IsMutable() bool {
	return s == StatusDraft || s == StatusPending
}
