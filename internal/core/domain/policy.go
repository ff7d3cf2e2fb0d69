package domain

// Principal is the authenticated identity extracted from a verified session
// token. It lives for the duration of one request and is rebuilt from the
// token claims on every call.
type Principal struct {
	ID   string
	Role string
}

// Policy holds the pure access-control decision functions. The primary
// admin identity is configuration, injected at construction, never a
// literal inside the decision logic.
type Policy struct {
	primaryAdminEmail string
}

func NewPolicy(primaryAdminEmail string) Policy {
	return Policy{primaryAdminEmail: NormalizeEmail(primaryAdminEmail)}
}

// IsAdmin reports whether the principal carries the admin role.
func (Policy) IsAdmin(p Principal) bool {
	return p.Role == RoleAdmin
}

// IsSelf reports whether the principal is acting on its own account.
func (Policy) IsSelf(p Principal, targetUserID string) bool {
	return p.ID != "" && p.ID == targetUserID
}

// IsOwner reports whether the principal owns the resource.
func (Policy) IsOwner(p Principal, resourceOwnerID string) bool {
	return p.ID != "" && p.ID == resourceOwnerID
}

// IsPrimaryAdmin reports whether u is the permanently protected admin
// account. The primary admin can never be demoted or deleted, not even by
// itself.
func (pol Policy) IsPrimaryAdmin(u *User) bool {
	if u == nil {
		return false
	}
	return NormalizeEmail(u.Email) == pol.primaryAdminEmail
}

// CanAccessTask reports whether the principal may read, mutate, or delete
// the given task: its owner and any admin may, nobody else.
func (pol Policy) CanAccessTask(p Principal, t *Task) bool {
	if t == nil {
		return false
	}
	return pol.IsOwner(p, t.OwnerID) || pol.IsAdmin(p)
}
