package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Passwords are stored as bcrypt hashes in Password field.
//
// Role flags mirror the registration choice: a user is a pensioner xor a
// volunteer; is_staff is an administrative override on top of either.
type User struct {
	ID           string
	PhoneNumber  string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	MiddleName   string
	Sex          string
	DateOfBirth  time.Time
	PassportData PassportData
	IsPensioner  bool
	IsVolunteer  bool
	IsStaff      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PassportData holds the optional government-ID fields collected at
// registration. All fields may be empty.
type PassportData struct {
	Series    string
	Number    string
	IssuedBy  string
	IssueDate time.Time
}

// FullName joins last, first and middle name, skipping empty parts.
func (u *User) FullName() string {
	name := u.LastName + " " + u.FirstName
	if u.MiddleName != "" {
		name += " " + u.MiddleName
	}
	return name
}

// ActorID implements policy.Actor.
func (u *User) ActorID() string { return u.ID }

// ActorRole implements policy.Actor. The role is resolved once here and
// consumed by the policy engine; handlers and services never re-derive it
// from the raw flags.
func (u *User) ActorRole() Role { return ResolveRole(u.IsPensioner, u.IsVolunteer, u.IsStaff) }
