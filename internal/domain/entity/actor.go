package entity

// Well-known permissions consulted by edit/delete checks.
const (
	PermEditAnyDocument   = "documents.edit_any"
	PermDeleteAnyDocument = "documents.delete_any"
	PermEditCompleted     = "documents.edit_completed"
)

// Actor is the acting user for a transition or permission check.
// Roles and permissions are resolved by the caller (auth is outside
// the engine); the engine only tests membership.
type Actor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasRole reports whether the actor carries the given role.
func (a *Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the actor carries the given permission.
func (a *Actor) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
