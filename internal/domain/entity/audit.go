package entity

import "time"

// AuditKind distinguishes approval-flavored entries from generic
// transition entries.
type AuditKind string

const (
	AuditKindApproval   AuditKind = "APPROVAL"
	AuditKindTransition AuditKind = "TRANSITION"
)

// AuditEntry is one immutable record of a committed transition.
// Entries are created exclusively by the transition engine and never
// updated or deleted.
type AuditEntry struct {
	ID             string    `json:"id"` // uuid
	DocumentNumber string    `json:"document_number"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	ActorID        string    `json:"actor_id"`
	RuleID         *int64    `json:"rule_id,omitempty"`
	Kind           AuditKind `json:"kind"`
	Comments       string    `json:"comments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
