package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/care-connect/internal/container"
	handlers "github.com/oksasatya/care-connect/internal/interface/http"
	"github.com/oksasatya/care-connect/internal/interface/middleware"
	"github.com/oksasatya/care-connect/pkg/helpers"
)

// AnnouncementModule registers the announcement registry routes. All of
// them require authentication; role and ownership checks happen in the
// service behind the policy engine.

type AnnouncementModule struct {
	Handler *handlers.AnnouncementHandler
	JWT     *helpers.JWTManager
}

func NewAnnouncementModule(h *handlers.AnnouncementHandler, jwt *helpers.JWTManager) *AnnouncementModule {
	return &AnnouncementModule{Handler: h, JWT: jwt}
}

func (m *AnnouncementModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/announcements", m.Handler.List)
		auth.POST("/announcements", m.Handler.Create)
		auth.GET("/announcements/search", m.Handler.Search)
		auth.GET("/announcements/:id", m.Handler.Get)
		auth.PUT("/announcements/:id", m.Handler.Update)
		auth.PATCH("/announcements/:id", m.Handler.Patch)
		auth.DELETE("/announcements/:id", m.Handler.Delete)
		auth.POST("/announcements/:id/respond", m.Handler.Respond)
		auth.GET("/announcements/:id/responses", m.Handler.Responses)
	}
}
