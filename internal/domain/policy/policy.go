// Package policy is the single authorization point of the application.
// Every write path asks it whether the acting user may perform the
// operation before the registry executes anything.
package policy

import (
	"errors"

	"github.com/oksasatya/care-connect/internal/domain/entity"
)

// ErrNotAuthorized is returned for every failed check. Callers surface it
// as a generic "not authorized for this action" without exposing which
// rule rejected the request.
var ErrNotAuthorized = errors.New("not authorized for this action")

// Actor is the capability interface the engine queries instead of reading
// raw user attributes. A missing or contradictory role set resolves to
// entity.RoleUnknown rather than silently falling through a flag check.
type Actor interface {
	ActorID() string
	ActorRole() entity.Role
}

// Owned is implemented by resources carrying an owner reference.
type Owned interface {
	OwnerID() string
}

// CanCreateAnnouncement reports whether the actor may post a help
// request. Only pensioners originate requests; staff may act on their
// behalf.
func CanCreateAnnouncement(actor Actor) bool {
	role := actor.ActorRole()
	return role == entity.RolePensioner || role == entity.RoleStaff
}

// CanModifyAnnouncement covers update, partial update and delete:
// the creator or staff, nobody else.
func CanModifyAnnouncement(actor Actor, resource Owned) bool {
	if actor.ActorRole() == entity.RoleStaff {
		return true
	}
	return resource.OwnerID() == actor.ActorID()
}

// CanRespond reports whether the actor may respond to an announcement.
func CanRespond(actor Actor) bool {
	role := actor.ActorRole()
	return role == entity.RoleVolunteer || role == entity.RoleStaff
}

// CanSeeAllAnnouncements decides the listing scope: volunteers and staff
// browse every announcement, pensioners only their own.
func CanSeeAllAnnouncements(actor Actor) bool {
	role := actor.ActorRole()
	return role == entity.RoleVolunteer || role == entity.RoleStaff
}

// Authorize converts a boolean check into the uniform authorization
// error. Convenience for services that want early returns.
func Authorize(allowed bool) error {
	if !allowed {
		return ErrNotAuthorized
	}
	return nil
}
