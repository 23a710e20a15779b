package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
	RoleAdmin  = "admin" // platform operators; not a tenant role
)

func IsAdmin(role string) bool { return role == RoleAdmin }
