package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/care-connect/internal/domain/entity"
	repo "github.com/oksasatya/care-connect/internal/domain/repository"
	"github.com/oksasatya/care-connect/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is not active")
	ErrRoleSelection      = errors.New("exactly one of pensioner or volunteer role must be selected")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrNoVolunteerProfile = errors.New("user has no volunteer profile")
)

// UserService implements registration, authentication and profile
// resolution on top of the user repository.
type UserService struct {
	Repo      repo.UserRepository
	JWT       *helpers.JWTManager
	GCS       *storage.Client
	GCSBucket string
	Redis     *redis.Client
	Logger    *logrus.Logger
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, gcs *storage.Client, gcsBucket string, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{Repo: r, JWT: jwt, GCS: gcs, GCSBucket: gcsBucket, Redis: rdb, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// RegisterInput carries the identity fields plus the role selection and
// the role-specific profile fields. Exactly one of IsPensioner and
// IsVolunteer must be set.
type RegisterInput struct {
	PhoneNumber string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	MiddleName  string
	Sex         string
	DateOfBirth time.Time
	Passport    entity.PassportData

	IsPensioner bool
	IsVolunteer bool

	// Pensioner profile
	Address        string
	ActualAddress  string
	AddressesMatch bool

	// Volunteer profile
	Experience  string
	WorkZone    string
	CompanyName string
}

// Register creates the user with its role-bound profile. Claiming both
// roles or neither is a validation failure, preserving the one-profile-
// per-user invariant.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if in.IsPensioner == in.IsVolunteer {
		return nil, ErrRoleSelection
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		Password:     hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MiddleName:   in.MiddleName,
		Sex:          in.Sex,
		DateOfBirth:  in.DateOfBirth,
		PassportData: in.Passport,
		IsActive:     true,
	}

	if in.IsPensioner {
		p := &entity.PensionerProfile{
			Address:        in.Address,
			ActualAddress:  in.ActualAddress,
			AddressesMatch: in.AddressesMatch,
		}
		err = s.Repo.CreatePensioner(u, p)
	} else {
		p := &entity.VolunteerProfile{
			Experience:  in.Experience,
			WorkZone:    in.WorkZone,
			CompanyName: in.CompanyName,
		}
		err = s.Repo.CreateVolunteer(u, p)
	}
	if err != nil {
		if errors.Is(err, repo.ErrPhoneTaken) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.ActorRole().String()}).Info("user registered")
	}
	return u, nil
}

// Authenticate validates phone/password and the active flag without
// issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, phone, password string) (*entity.User, error) {
	u, err := s.Repo.GetByPhone(phone)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records the session in
// Redis keyed by user id.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"phone":      u.PhoneNumber,
			"name":       u.FullName(),
			"role":       u.ActorRole().String(),
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// LoginResponse is the minimal user summary returned on login.
type LoginResponse struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
}

func (s *UserService) Login(ctx context.Context, phone, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, phone, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{
		UserID:      u.ID,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.ActorRole().String(),
	}
	return resp, pair, nil
}

// Refresh rotates the token pair. The refresh token's session id must
// match the live session, so a superseded token cannot be replayed.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		key := sessionKey(u.ID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	return s.issueRotated(ctx, u)
}

func (s *UserService) issueRotated(ctx context.Context, u *entity.User) (TokenPair, string, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		_, _ = pipe.Exec(ctx)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, u.ID, nil
}

// Logout invalidates the server-side session.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

// Profile bundles a user with its role-specific profile. Exactly one of
// Pensioner and Volunteer is set, chosen by the resolved role.
type Profile struct {
	User      *entity.User
	Pensioner *entity.PensionerProfile
	Volunteer *entity.VolunteerProfile
}

// GetProfile resolves the user and the profile matching its role. Users
// with an unknown role get the bare user record.
func (s *UserService) GetProfile(userID string) (*Profile, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	p := &Profile{User: u}
	switch u.ActorRole() {
	case entity.RolePensioner:
		if pp, err := s.Repo.GetPensionerProfile(u.ID); err == nil {
			p.Pensioner = pp
		}
	case entity.RoleVolunteer:
		if vp, err := s.Repo.GetVolunteerProfile(u.ID); err == nil {
			p.Volunteer = vp
		}
	}
	return p, nil
}

// UpdatePensionerAddress lets the owning pensioner change their address
// fields.
func (s *UserService) UpdatePensionerAddress(userID, address, actualAddress string, addressesMatch bool) (*entity.PensionerProfile, error) {
	p, err := s.Repo.GetPensionerProfile(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if address != "" {
		p.Address = address
	}
	p.ActualAddress = actualAddress
	p.AddressesMatch = addressesMatch
	if err := s.Repo.UpdatePensionerProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UploadProfilePicture stores a volunteer's picture in GCS and records
// the public URL on the profile.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	p, err := s.Repo.GetVolunteerProfile(userID)
	if err != nil {
		return "", ErrNoVolunteerProfile
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("object storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("profiles", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	p.PictureURL = url
	if err := s.Repo.UpdateVolunteerProfile(p); err != nil {
		return "", err
	}
	return url, nil
}
