package entity

// Status is a named document state shared across document types.
// Color is a presentation hint only; the engine never reads it.
type Status struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// StatusConfig binds a Status to a DocumentType and carries the semantic
// role flags the engine depends on. For a given document type at most one
// row may have IsInitial set.
type StatusConfig struct {
	ID             int64 `json:"id"`
	DocumentTypeID int64 `json:"document_type_id"`
	StatusID       int64 `json:"status_id"`

	// StatusCode is denormalized from the statuses table so the engine
	// can work on codes without a join per query.
	StatusCode string `json:"status_code"`

	SortOrder int `json:"sort_order"`

	IsInitial      bool `json:"is_initial"`
	IsFinal        bool `json:"is_final"`
	IsCancellation bool `json:"is_cancellation"`

	AllowsEditing  bool `json:"allows_editing"`
	AllowsDeletion bool `json:"allows_deletion"`

	CreatesInventoryMovements  bool `json:"creates_inventory_movements"`
	ReversesInventoryMovements bool `json:"reverses_inventory_movements"`

	SemanticType SemanticType `json:"semantic_type"`

	IsActive bool `json:"is_active"`
}

// InRole reports whether this config carries the given semantic role flag.
func (c *StatusConfig) InRole(role Role) bool {
	switch role {
	case RoleInitial:
		return c.IsInitial
	case RoleFinal:
		return c.IsFinal
	case RoleCancellation:
		return c.IsCancellation
	case RoleEditable:
		return c.AllowsEditing
	case RoleDeletable:
		return c.AllowsDeletion
	case RoleMovementCreating:
		return c.CreatesInventoryMovements
	case RoleMovementReversing:
		return c.ReversesInventoryMovements
	default:
		return false
	}
}

// TransitionEdge is an explicit allowed transition for a document type.
// When at least one edge exists for (type, from), the edge set replaces
// the linear sort-order fallback for that from-status.
type TransitionEdge struct {
	ID             int64  `json:"id"`
	DocumentTypeID int64  `json:"document_type_id"`
	FromStatus     string `json:"from_status"`
	ToStatus       string `json:"to_status"`
}
