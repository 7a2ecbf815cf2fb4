package domain

type Role string

const (
	RolePlayer    Role = "player"
	RoleOwner     Role = "owner"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleOwner, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID int64
	Role   Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

type ScopeKind int

const (
	ScopeOwn ScopeKind = iota
	ScopeOwnedCourts
	ScopeAll
)

// Scope limits which bookings a caller may read.
type Scope struct {
	Kind   ScopeKind
	UserID int64
}

// ScopeFor returns the widest scope the caller's role grants.
func ScopeFor(c Caller) Scope {
	switch c.Role {
	case RoleAdmin:
		return Scope{Kind: ScopeAll, UserID: c.UserID}
	case RoleOwner:
		return Scope{Kind: ScopeOwnedCourts, UserID: c.UserID}
	default:
		return Scope{Kind: ScopeOwn, UserID: c.UserID}
	}
}

func OwnScope(c Caller) Scope {
	return Scope{Kind: ScopeOwn, UserID: c.UserID}
}

// Apply narrows f to the scope. Caller-supplied user/owner filters are
// overwritten, never widened.
func (s Scope) Apply(f BookingFilter) BookingFilter {
	switch s.Kind {
	case ScopeOwn:
		f.UserID = s.UserID
		f.OwnerID = 0
	case ScopeOwnedCourts:
		f.OwnerID = s.UserID
	}
	return f
}

// Allows reports whether a booking made by userID on a court owned by ownerID is visible.
func (s Scope) Allows(userID, ownerID int64) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeOwnedCourts:
		return ownerID == s.UserID || userID == s.UserID
	default:
		return userID == s.UserID
	}
}
