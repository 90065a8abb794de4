package entity

import "github.com/shopspring/decimal"

// ApproverType describes who may satisfy an approval rule.
type ApproverType string

const (
	ApproverAnyUser    ApproverType = "ANY_USER"
	ApproverUser       ApproverType = "USER"
	ApproverRole       ApproverType = "ROLE"
	ApproverPermission ApproverType = "PERMISSION"
)

// String returns the string representation of the approver type.
func (t ApproverType) String() string {
	return string(t)
}

// ApprovalRule is a configured authorization requirement for a specific
// status transition, tiered by amount range and approval level. Rules for
// the same (document_type, from_status, to_status, level) must carry
// non-overlapping amount ranges; the repository enforces this on create.
type ApprovalRule struct {
	ID             int64  `json:"id"`
	DocumentTypeID int64  `json:"document_type_id"`
	FromStatus     string `json:"from_status"`
	ToStatus       string `json:"to_status"`
	ApprovalLevel  int    `json:"approval_level"`

	MinAmount decimal.Decimal  `json:"min_amount"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"` // nil = open-ended
	Currency  string           `json:"currency"`

	ApproverType       ApproverType `json:"approver_type"`
	ApproverUserID     string       `json:"approver_user_id,omitempty"`
	ApproverRole       string       `json:"approver_role,omitempty"`
	ApproverPermission string       `json:"approver_permission,omitempty"`

	RequiresPreviousLevel bool `json:"requires_previous_level"`
	RejectionAllowed      bool `json:"rejection_allowed"`
	SortOrder             int  `json:"sort_order"`
	IsActive              bool `json:"is_active"`
}

// Contains reports whether amount falls inside the rule's [min, max] range.
// A nil MaxAmount means "and above".
func (r *ApprovalRule) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(r.MinAmount) {
		return false
	}
	if r.MaxAmount != nil && amount.GreaterThan(*r.MaxAmount) {
		return false
	}
	return true
}

// Overlaps reports whether two rules' amount ranges intersect. Used to
// reject ambiguous configurations at creation time.
func (r *ApprovalRule) Overlaps(other *ApprovalRule) bool {
	// r entirely below other
	if r.MaxAmount != nil && r.MaxAmount.LessThan(other.MinAmount) {
		return false
	}
	// other entirely below r
	if other.MaxAmount != nil && other.MaxAmount.LessThan(r.MinAmount) {
		return false
	}
	return true
}

// Authorizes reports whether the acting user satisfies the rule's
// approver specification.
func (r *ApprovalRule) Authorizes(actor *Actor) bool {
	if actor == nil {
		return false
	}
	switch r.ApproverType {
	case ApproverAnyUser:
		return true
	case ApproverUser:
		return actor.ID == r.ApproverUserID
	case ApproverRole:
		return actor.HasRole(r.ApproverRole)
	case ApproverPermission:
		return actor.HasPermission(r.ApproverPermission)
	default:
		return false
	}
}
