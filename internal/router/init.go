package router

import (
	app "github.com/oksasatya/care-connect/internal/application"
	"github.com/oksasatya/care-connect/internal/container"
	pginfra "github.com/oksasatya/care-connect/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/care-connect/internal/interface/http"
	"github.com/oksasatya/care-connect/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the
// container singletons and registers every feature module. Called once
// during startup.
func InitModules(r *Registry) {
	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	annRepo := pginfra.NewAnnouncementRepository(container.GetPGPool())

	userSvc := app.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetGCS(),
		container.GetConfig().GCSBucket,
		container.GetRedis(),
		container.GetLogger(),
	)
	annSvc := app.NewAnnouncementService(
		annRepo,
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESAnnouncements,
	)

	userHandler := handlers.NewUserHandler(
		userSvc,
		container.GetJWT(),
		container.GetLogger(),
		container.GetConfig().CookieDomain,
		container.GetConfig().CookieSecure,
	)
	annHandler := handlers.NewAnnouncementHandler(annSvc, userRepo, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewAnnouncementModule(annHandler, container.GetJWT()))
	r.Add(modules.NewDebugModule())
}
