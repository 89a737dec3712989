package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/care-connect/internal/application"
	"github.com/oksasatya/care-connect/internal/domain/entity"
	"github.com/oksasatya/care-connect/pkg/helpers"
	"github.com/oksasatya/care-connect/pkg/response"
	"github.com/oksasatya/care-connect/pkg/validation"
)

const dateLayout = "2006-01-02"

type UserHandler struct {
	Svc     *userapp.UserService
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *userapp.UserService, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"required,pwd"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	MiddleName  string `json:"middle_name"`
	Sex         string `json:"sex" binding:"omitempty,oneof=male female"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`

	PassportSeries    string `json:"passport_series"`
	PassportNumber    string `json:"passport_number"`
	PassportIssuedBy  string `json:"passport_issued_by"`
	PassportIssueDate string `json:"passport_issue_date" binding:"omitempty,datetime=2006-01-02"`

	IsPensioner bool `json:"is_pensioner"`
	IsVolunteer bool `json:"is_volunteer"`

	Address        string `json:"address"`
	ActualAddress  string `json:"actual_address"`
	AddressesMatch bool   `json:"addresses_match"`

	Experience  string `json:"experience"`
	WorkZone    string `json:"work_zone"`
	CompanyName string `json:"company_name"`
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type updateAddressRequest struct {
	Address        string `json:"address"`
	ActualAddress  string `json:"actual_address"`
	AddressesMatch bool   `json:"addresses_match"`
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := userapp.RegisterInput{
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		MiddleName:  req.MiddleName,
		Sex:         req.Sex,
		DateOfBirth: parseDate(req.DateOfBirth),
		Passport: entity.PassportData{
			Series:    req.PassportSeries,
			Number:    req.PassportNumber,
			IssuedBy:  req.PassportIssuedBy,
			IssueDate: parseDate(req.PassportIssueDate),
		},
		IsPensioner:    req.IsPensioner,
		IsVolunteer:    req.IsVolunteer,
		Address:        req.Address,
		ActualAddress:  req.ActualAddress,
		AddressesMatch: req.AddressesMatch,
		Experience:     req.Experience,
		WorkZone:       req.WorkZone,
		CompanyName:    req.CompanyName,
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrRoleSelection):
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"role": "exactly one of is_pensioner or is_volunteer must be set"})
		case errors.Is(err, userapp.ErrPhoneTaken):
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"phone_number": "already registered"})
		default:
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":           u.ID,
		"phone_number": u.PhoneNumber,
		"role":         u.ActorRole().String(),
	}, "registration successful", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token": pair.AccessToken,
		"user":         res,
	}, "login successful", map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString("userID")
	h.Svc.Logout(c.Request.Context(), uid)
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// Me returns the user record merged with its role-specific profile.
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString("userID")
	p, err := h.Svc.GetProfile(uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	u := p.User
	data := gin.H{
		"id":            u.ID,
		"phone_number":  u.PhoneNumber,
		"email":         u.Email,
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"middle_name":   u.MiddleName,
		"sex":           u.Sex,
		"date_of_birth": u.DateOfBirth.Format(dateLayout),
		"role":          u.ActorRole().String(),
		"is_active":     u.IsActive,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
	if p.Pensioner != nil {
		data["profile"] = gin.H{
			"address":         p.Pensioner.Address,
			"actual_address":  p.Pensioner.ActualAddress,
			"addresses_match": p.Pensioner.AddressesMatch,
		}
	}
	if p.Volunteer != nil {
		data["profile"] = gin.H{
			"experience":   p.Volunteer.Experience,
			"work_zone":    p.Volunteer.WorkZone,
			"company_name": p.Volunteer.CompanyName,
			"picture_url":  p.Volunteer.PictureURL,
		}
	}
	response.Success(c, http.StatusOK, data, "profile", nil)
}

// UpdateAddress lets a pensioner change their address fields.
func (h *UserHandler) UpdateAddress(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdatePensionerAddress(uid, req.Address, req.ActualAddress, req.AddressesMatch)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "pensioner profile not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"address":         p.Address,
		"actual_address":  p.ActualAddress,
		"addresses_match": p.AddressesMatch,
	}, "address updated", nil)
}

// UploadPicture stores a volunteer profile picture.
func (h *UserHandler) UploadPicture(c *gin.Context) {
	uid := c.GetString("userID")
	file, header, err := c.Request.FormFile("picture")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"picture": "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.UploadProfilePicture(c.Request.Context(), uid, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, userapp.ErrNoVolunteerProfile) {
			response.Error[any](c, http.StatusForbidden, "not authorized for this action", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"picture_url": url}, "picture uploaded", nil)
}
