package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/care-connect/internal/domain/entity"
)

type stubActor struct {
	id   string
	role entity.Role
}

func (a stubActor) ActorID() string        { return a.id }
func (a stubActor) ActorRole() entity.Role { return a.role }

type stubResource struct{ owner string }

func (r stubResource) OwnerID() string { return r.owner }

func TestCanCreateAnnouncement(t *testing.T) {
	assert.True(t, CanCreateAnnouncement(stubActor{role: entity.RolePensioner}))
	assert.True(t, CanCreateAnnouncement(stubActor{role: entity.RoleStaff}))
	assert.False(t, CanCreateAnnouncement(stubActor{role: entity.RoleVolunteer}))
	assert.False(t, CanCreateAnnouncement(stubActor{role: entity.RoleUnknown}))
}

func TestCanModifyAnnouncement(t *testing.T) {
	res := stubResource{owner: "owner-1"}

	assert.True(t, CanModifyAnnouncement(stubActor{id: "owner-1", role: entity.RolePensioner}, res))
	assert.False(t, CanModifyAnnouncement(stubActor{id: "other", role: entity.RolePensioner}, res))

	// staff bypasses the ownership check
	assert.True(t, CanModifyAnnouncement(stubActor{id: "admin", role: entity.RoleStaff}, res))
}

func TestCanRespond(t *testing.T) {
	assert.True(t, CanRespond(stubActor{role: entity.RoleVolunteer}))
	assert.True(t, CanRespond(stubActor{role: entity.RoleStaff}))
	assert.False(t, CanRespond(stubActor{role: entity.RolePensioner}))
	assert.False(t, CanRespond(stubActor{role: entity.RoleUnknown}))
}

func TestCanSeeAllAnnouncements(t *testing.T) {
	assert.True(t, CanSeeAllAnnouncements(stubActor{role: entity.RoleVolunteer}))
	assert.True(t, CanSeeAllAnnouncements(stubActor{role: entity.RoleStaff}))
	assert.False(t, CanSeeAllAnnouncements(stubActor{role: entity.RolePensioner}))
	assert.False(t, CanSeeAllAnnouncements(stubActor{role: entity.RoleUnknown}))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(true))
	assert.ErrorIs(t, Authorize(false), ErrNotAuthorized)
}
