package entity

import "time"

// PensionerProfile is owned 1:1 by a user with the pensioner role.
type PensionerProfile struct {
	ID             string
	UserID         string
	Address        string
	ActualAddress  string
	AddressesMatch bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VolunteerProfile is owned 1:1 by a user with the volunteer role.
// PictureURL points at an uploaded object in cloud storage and may be empty.
type VolunteerProfile struct {
	ID          string
	UserID      string
	Experience  string
	WorkZone    string
	CompanyName string
	PictureURL  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
