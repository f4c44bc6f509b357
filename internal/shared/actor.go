package shared

// Role is the membership role of a user inside a business.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Privileged reports whether the role may perform billing mutations.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Actor identifies the authenticated user behind a request together with the
// role resolved for the business scope of the route.
type Actor struct {
	UserID int64
	Email  string
	Role   Role
}
