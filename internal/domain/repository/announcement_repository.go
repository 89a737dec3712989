package repository

import "github.com/oksasatya/care-connect/internal/domain/entity"

// AnnouncementRepository defines persistence for announcements and
// volunteer responses. CreateResponse must enforce uniqueness of the
// (announcement, volunteer) pair atomically and return
// ErrDuplicateResponse for the losing writer.
type AnnouncementRepository interface {
	Create(a *entity.Announcement) error
	GetByID(id string) (*entity.Announcement, error)
	ListAll() ([]entity.Announcement, error)
	ListByCreator(creatorID string) ([]entity.Announcement, error)
	Update(a *entity.Announcement) error
	Delete(id string) error

	CreateResponse(r *entity.VolunteerResponse) error
	ListResponses(announcementID string) ([]entity.VolunteerResponse, error)
}
