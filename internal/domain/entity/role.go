package entity

// Role is the resolved authorization role of a user. It is derived from
// the persisted role flags exactly once, at the policy boundary.
type Role int

const (
	// RoleUnknown covers users whose flags claim both roles or neither.
	// Such an actor is treated as authenticated-but-unprivileged.
	RoleUnknown Role = iota
	RolePensioner
	RoleVolunteer
	RoleStaff
)

func (r Role) String() string {
	switch r {
	case RolePensioner:
		return "pensioner"
	case RoleVolunteer:
		return "volunteer"
	case RoleStaff:
		return "staff"
	default:
		return "unknown"
	}
}

// ResolveRole maps the raw role flags to a single Role. Staff wins over
// everything; a pensioner/volunteer must be exactly one of the two.
func ResolveRole(isPensioner, isVolunteer, isStaff bool) Role {
	if isStaff {
		return RoleStaff
	}
	if isPensioner == isVolunteer {
		return RoleUnknown
	}
	if isPensioner {
		return RolePensioner
	}
	return RoleVolunteer
}
