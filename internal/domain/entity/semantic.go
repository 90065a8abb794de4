package entity

// Role is a semantic role a status can play for a document type,
// independent of its display name. Roles map one-to-one onto the
// boolean flags of StatusConfig.
type Role string

const (
	RoleInitial           Role = "INITIAL"
	RoleFinal             Role = "FINAL"
	RoleCancellation      Role = "CANCELLATION"
	RoleEditable          Role = "EDITABLE"
	RoleDeletable         Role = "DELETABLE"
	RoleMovementCreating  Role = "MOVEMENT_CREATING"
	RoleMovementReversing Role = "MOVEMENT_REVERSING"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// SemanticType classifies a status by workflow stage beyond the fixed
// role flags. It is an explicit column on StatusConfig populated by
// administrators; the engine never guesses a stage from status codes.
type SemanticType string

const (
	SemanticNone       SemanticType = "NONE"
	SemanticApproval   SemanticType = "APPROVAL"
	SemanticProcessing SemanticType = "PROCESSING"
	SemanticCompletion SemanticType = "COMPLETION"
)

var validSemanticTypes = map[SemanticType]bool{
	SemanticNone:       true,
	SemanticApproval:   true,
	SemanticProcessing: true,
	SemanticCompletion: true,
}

// IsValid returns true if the semantic type is one of the known values.
func (s SemanticType) IsValid() bool {
	return validSemanticTypes[s]
}

// String returns the string representation of the semantic type.
func (s SemanticType) String() string {
	return string(s)
}
