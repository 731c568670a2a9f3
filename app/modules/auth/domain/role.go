package authdomain

// Role represents an actor's role for authorization purposes.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleTeam      Role = "team"
	RoleCommittee Role = "committee"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer:    1,
	RoleTeam:      2,
	RoleCommittee: 3,
	RoleAdmin:     4,
}

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r grants at least the access of required.
// Team and committee are separate capabilities: a committee member may run
// rounds but cannot bid on behalf of a team.
func (r Role) Satisfies(required Role) bool {
	if !r.IsValid() || !required.IsValid() {
		return false
	}
	if r == RoleAdmin {
		return true
	}
	if required == RoleTeam {
		return r == RoleTeam
	}
	return roleRank[r] >= roleRank[required]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
