// models/user.go - Identity of the actor behind a request
package models

type Role string

const (
	RoleTourist     Role = "tourist"
	RolePolice      Role = "police"
	RoleAdmin       Role = "admin"
	RoleTourismDept Role = "tourism_dept"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTourist, RolePolice, RoleAdmin, RoleTourismDept:
		return true
	}
	return false
}

// IsAuthority reports whether the role belongs to a responder organisation.
func (r Role) IsAuthority() bool {
	return r == RolePolice || r == RoleAdmin || r == RoleTourismDept
}

// UserIdentity is issued by the identity provider; the core only reads it.
type UserIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
}
