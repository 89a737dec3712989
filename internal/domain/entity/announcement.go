package entity

import "time"

// Announcement is a help request posted by a pensioner. CreatorID is
// always taken from the authenticated session, never from client input.
type Announcement struct {
	ID          string
	CreatorID   string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID implements policy.Owned.
func (a *Announcement) OwnerID() string { return a.CreatorID }

// VolunteerResponse links a volunteer to an announcement. At most one
// response exists per (announcement, volunteer) pair; the pair is unique
// at the storage layer. A response is created once and never updated.
type VolunteerResponse struct {
	ID             string
	AnnouncementID string
	VolunteerID    string
	CreatedAt      time.Time
}
