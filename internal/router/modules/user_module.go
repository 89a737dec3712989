package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/care-connect/internal/container"
	handlers "github.com/oksasatya/care-connect/internal/interface/http"
	"github.com/oksasatya/care-connect/internal/interface/middleware"
	"github.com/oksasatya/care-connect/pkg/helpers"
)

// UserModule wires user HTTP handlers and JWT middleware into routes
// Public: POST /api/users/register, POST /api/users/login, POST /api/refresh
// Protected: POST /api/users/logout, GET /api/users/me, PUT /api/users/me/address,
// POST /api/users/me/picture

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/users/register", registerLimiter, m.Handler.Register)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/users/logout", m.Handler.Logout)
		auth.GET("/users/me", m.Handler.Me)
		auth.PUT("/users/me/address", m.Handler.UpdateAddress)
		auth.POST("/users/me/picture", m.Handler.UploadPicture)
	}
}
