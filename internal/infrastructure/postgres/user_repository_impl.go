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

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, phone_number, email, password_hash,
	first_name, last_name, middle_name, sex, date_of_birth,
	passport_series, passport_number, passport_issued_by, passport_issue_date,
	is_pensioner, is_volunteer, is_staff, is_active,
	created_at, updated_at
`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.PhoneNumber, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.MiddleName, &u.Sex, &u.DateOfBirth,
		&u.PassportData.Series, &u.PassportData.Number, &u.PassportData.IssuedBy, &u.PassportData.IssueDate,
		&u.IsPensioner, &u.IsVolunteer, &u.IsStaff, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// insertUser writes the user row inside tx and fills in the generated
// id and timestamps.
func (r *UserRepository) insertUser(ctx context.Context, tx pgx.Tx, u *entity.User) error {
	row := tx.QueryRow(ctx, `
		INSERT INTO users (
			phone_number, email, password_hash,
			first_name, last_name, middle_name, sex, date_of_birth,
			passport_series, passport_number, passport_issued_by, passport_issue_date,
			is_pensioner, is_volunteer, is_staff, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`, u.PhoneNumber, u.Email, u.Password,
		u.FirstName, u.LastName, u.MiddleName, u.Sex, u.DateOfBirth,
		u.PassportData.Series, u.PassportData.Number, u.PassportData.IssuedBy, u.PassportData.IssueDate,
		u.IsPensioner, u.IsVolunteer, u.IsStaff, u.IsActive)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrPhoneTaken
		}
		return err
	}
	return nil
}

// CreatePensioner inserts the user and its pensioner profile in one
// transaction.
func (r *UserRepository) CreatePensioner(u *entity.User, p *entity.PensionerProfile) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u.IsPensioner = true
	if err := r.insertUser(ctx, tx, u); err != nil {
		return err
	}
	p.UserID = u.ID
	row := tx.QueryRow(ctx, `
		INSERT INTO pensioner_profiles (user_id, address, actual_address, addresses_match)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Address, p.ActualAddress, p.AddressesMatch)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateVolunteer inserts the user and its volunteer profile in one
// transaction.
func (r *UserRepository) CreateVolunteer(u *entity.User, p *entity.VolunteerProfile) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u.IsVolunteer = true
	if err := r.insertUser(ctx, tx, u); err != nil {
		return err
	}
	p.UserID = u.ID
	row := tx.QueryRow(ctx, `
		INSERT INTO volunteer_profiles (user_id, experience, work_zone, company_name, picture_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Experience, p.WorkZone, p.CompanyName, p.PictureURL)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByPhone(phone string) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE phone_number = $1
	`, phone)
	return scanUser(row)
}

func (r *UserRepository) Update(u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users
		SET phone_number = $1, email = $2, password_hash = $3,
		    first_name = $4, last_name = $5, middle_name = $6,
		    is_active = $7, updated_at = $8
		WHERE id = $9
	`, u.PhoneNumber, u.Email, u.Password,
		u.FirstName, u.LastName, u.MiddleName,
		u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetPensionerProfile(userID string) (*entity.PensionerProfile, error) {
	p := &entity.PensionerProfile{}
	row := r.pool.QueryRow(context.Background(), `
		SELECT id, user_id, address, actual_address, addresses_match, created_at, updated_at
		FROM pensioner_profiles
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.Address, &p.ActualAddress,
		&p.AddressesMatch, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) GetVolunteerProfile(userID string) (*entity.VolunteerProfile, error) {
	p := &entity.VolunteerProfile{}
	row := r.pool.QueryRow(context.Background(), `
		SELECT id, user_id, experience, work_zone, company_name, picture_url, created_at, updated_at
		FROM volunteer_profiles
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.Experience, &p.WorkZone,
		&p.CompanyName, &p.PictureURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) UpdatePensionerProfile(p *entity.PensionerProfile) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(context.Background(), `
		UPDATE pensioner_profiles
		SET address = $1, actual_address = $2, addresses_match = $3, updated_at = $4
		WHERE user_id = $5
	`, p.Address, p.ActualAddress, p.AddressesMatch, p.UpdatedAt, p.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateVolunteerProfile(p *entity.VolunteerProfile) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(context.Background(), `
		UPDATE volunteer_profiles
		SET experience = $1, work_zone = $2, company_name = $3, picture_url = $4, updated_at = $5
		WHERE user_id = $6
	`, p.Experience, p.WorkZone, p.CompanyName, p.PictureURL, p.UpdatedAt, p.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
