package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/care-connect/internal/domain/entity"
	"github.com/oksasatya/care-connect/internal/domain/repository"
)

type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

func (r *AnnouncementRepository) Create(a *entity.Announcement) error {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO announcements (creator_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, a.CreatorID, a.Title, a.Description)
	return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AnnouncementRepository) GetByID(id string) (*entity.Announcement, error) {
	a := &entity.Announcement{}
	row := r.pool.QueryRow(context.Background(), `
		SELECT id, creator_id, title, description, created_at, updated_at
		FROM announcements
		WHERE id = $1
	`, id)
	if err := row.Scan(&a.ID, &a.CreatorID, &a.Title, &a.Description,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AnnouncementRepository) ListAll() ([]entity.Announcement, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT id, creator_id, title, description, created_at, updated_at
		FROM announcements
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnnouncements(rows)
}

func (r *AnnouncementRepository) ListByCreator(creatorID string) ([]entity.Announcement, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT id, creator_id, title, description, created_at, updated_at
		FROM announcements
		WHERE creator_id = $1
		ORDER BY created_at DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnnouncements(rows)
}

func collectAnnouncements(rows pgx.Rows) ([]entity.Announcement, error) {
	out := make([]entity.Announcement, 0)
	for rows.Next() {
		var a entity.Announcement
		if err := rows.Scan(&a.ID, &a.CreatorID, &a.Title, &a.Description,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnnouncementRepository) Update(a *entity.Announcement) error {
	a.UpdatedAt = time.Now()
	res, err := r.pool.Exec(context.Background(), `
		UPDATE announcements
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, a.Title, a.Description, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the announcement; its responses go with it via the
// ON DELETE CASCADE constraint on volunteer_responses.
func (r *AnnouncementRepository) Delete(id string) error {
	res, err := r.pool.Exec(context.Background(), `
		DELETE FROM announcements WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateResponse relies on the UNIQUE (announcement_id, volunteer_id)
// constraint: when two identical requests race, Postgres serializes them
// and the second insert fails with a unique violation, which is mapped to
// ErrDuplicateResponse. There is no read-then-write window.
func (r *AnnouncementRepository) CreateResponse(vr *entity.VolunteerResponse) error {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO volunteer_responses (announcement_id, volunteer_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, vr.AnnouncementID, vr.VolunteerID)
	if err := row.Scan(&vr.ID, &vr.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateResponse
		}
		return err
	}
	return nil
}

func (r *AnnouncementRepository) ListResponses(announcementID string) ([]entity.VolunteerResponse, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT id, announcement_id, volunteer_id, created_at
		FROM volunteer_responses
		WHERE announcement_id = $1
		ORDER BY created_at
	`, announcementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.VolunteerResponse, 0)
	for rows.Next() {
		var vr entity.VolunteerResponse
		if err := rows.Scan(&vr.ID, &vr.AnnouncementID, &vr.VolunteerID, &vr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, vr)
	}
	return out, rows.Err()
}

var _ repository.AnnouncementRepository = (*AnnouncementRepository)(nil)
