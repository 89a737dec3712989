package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name        string
		isPensioner bool
		isVolunteer bool
		isStaff     bool
		want        Role
	}{
		{"pensioner", true, false, false, RolePensioner},
		{"volunteer", false, true, false, RoleVolunteer},
		{"staff", false, false, true, RoleStaff},
		{"staff wins over pensioner", true, false, true, RoleStaff},
		{"staff wins over volunteer", false, true, true, RoleStaff},
		{"no role selected", false, false, false, RoleUnknown},
		{"both roles claimed", true, true, false, RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(tt.isPensioner, tt.isVolunteer, tt.isStaff))
		})
	}
}

func TestUserActorRole(t *testing.T) {
	u := &User{ID: "u1", IsPensioner: true}
	assert.Equal(t, "u1", u.ActorID())
	assert.Equal(t, RolePensioner, u.ActorRole())

	// contradictory flags resolve to unknown, not to either role
	u.IsVolunteer = true
	assert.Equal(t, RoleUnknown, u.ActorRole())
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Ivan", LastName: "Petrov"}
	assert.Equal(t, "Petrov Ivan", u.FullName())
	u.MiddleName = "Sergeevich"
	assert.Equal(t, "Petrov Ivan Sergeevich", u.FullName())
}
