package repository

import "github.com/oksasatya/care-connect/internal/domain/entity"

// UserRepository defines the interface for user and profile persistence.
// Registration creates the user together with exactly one profile in a
// single transaction, so a user row can never exist with a dangling role.
type UserRepository interface {
	CreatePensioner(u *entity.User, p *entity.PensionerProfile) error
	CreateVolunteer(u *entity.User, p *entity.VolunteerProfile) error
	GetByID(id string) (*entity.User, error)
	GetByPhone(phone string) (*entity.User, error)
	Update(u *entity.User) error

	GetPensionerProfile(userID string) (*entity.PensionerProfile, error)
	GetVolunteerProfile(userID string) (*entity.VolunteerProfile, error)
	UpdatePensionerProfile(p *entity.PensionerProfile) error
	UpdateVolunteerProfile(p *entity.VolunteerProfile) error
}
