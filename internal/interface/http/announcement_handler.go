package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/care-connect/internal/application"
	"github.com/oksasatya/care-connect/internal/domain/entity"
	repo "github.com/oksasatya/care-connect/internal/domain/repository"
	"github.com/oksasatya/care-connect/pkg/response"
	"github.com/oksasatya/care-connect/pkg/validation"
)

type AnnouncementHandler struct {
	Svc    *app.AnnouncementService
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewAnnouncementHandler(svc *app.AnnouncementService, users repo.UserRepository, logger *logrus.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{Svc: svc, Users: users, Logger: logger}
}

type announcementRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

type announcementPatchRequest struct {
	Title       string `json:"title" binding:"omitempty,max=255"`
	Description string `json:"description"`
}

// actor loads the authenticated user set by the auth middleware. The
// policy engine works on the full user, not just the id.
func (h *AnnouncementHandler) actor(c *gin.Context) (*entity.User, bool) {
	uid := c.GetString("userID")
	u, err := h.Users.GetByID(uid)
	if err != nil || u == nil {
		response.Error[any](c, http.StatusUnauthorized, "session user not found", nil)
		c.Abort()
		return nil, false
	}
	return u, true
}

func (h *AnnouncementHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrNotAuthorized):
		response.Error[any](c, http.StatusForbidden, "not authorized for this action", nil)
	case errors.Is(err, app.ErrAnnouncementNotFound):
		response.Error[any](c, http.StatusNotFound, "announcement not found", nil)
	case errors.Is(err, app.ErrAlreadyResponded):
		response.Error[any](c, http.StatusBadRequest, "you have already responded to this announcement", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("announcement operation failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func announcementJSON(a *entity.Announcement) gin.H {
	return gin.H{
		"id":          a.ID,
		"creator_id":  a.CreatorID,
		"title":       a.Title,
		"description": a.Description,
		"created_at":  a.CreatedAt,
		"updated_at":  a.UpdatedAt,
	}
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), u, app.AnnouncementInput{Title: req.Title, Description: req.Description})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, announcementJSON(a), "announcement created", nil)
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Svc.List(c.Request.Context(), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, announcementJSON(&list[i]))
	}
	response.Success(c, http.StatusOK, out, "announcements", map[string]any{"count": len(out)})
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	a, err := h.Svc.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, announcementJSON(a), "announcement", nil)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), u, c.Param("id"), app.AnnouncementInput{Title: req.Title, Description: req.Description})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, announcementJSON(a), "announcement updated", nil)
}

func (h *AnnouncementHandler) Patch(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	var req announcementPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), u, c.Param("id"), app.AnnouncementInput{Title: req.Title, Description: req.Description})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, announcementJSON(a), "announcement updated", nil)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), u, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "announcement deleted", nil)
}

func (h *AnnouncementHandler) Respond(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	vr, err := h.Svc.Respond(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":              vr.ID,
		"announcement_id": vr.AnnouncementID,
		"volunteer_id":    vr.VolunteerID,
		"created_at":      vr.CreatedAt,
	}, "you have responded to the announcement", nil)
}

func (h *AnnouncementHandler) Responses(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Svc.Responses(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, vr := range list {
		out = append(out, gin.H{
			"id":              vr.ID,
			"announcement_id": vr.AnnouncementID,
			"volunteer_id":    vr.VolunteerID,
			"created_at":      vr.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "responses", map[string]any{"count": len(out)})
}

func (h *AnnouncementHandler) Search(c *gin.Context) {
	u, ok := h.actor(c)
	if !ok {
		return
	}
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), u, q, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
