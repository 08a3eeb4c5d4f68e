package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/taskmaster/core/api/handler"
)

type Handlers struct {
	Session *apiHandler.SessionHandler
	Task    *apiHandler.TaskHandler
	Theme   *apiHandler.ThemeHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session routes
	r.GET("/api/v1/session", handlers.Session.Current)
	r.POST("/api/v1/session/login", handlers.Session.Login)
	r.POST("/api/v1/session/logout", handlers.Session.Logout)

	// Task routes, scoped to the active session
	r.GET("/api/v1/tasks", handlers.Task.List)
	r.POST("/api/v1/tasks", handlers.Task.Create)
	r.PUT("/api/v1/tasks/filter", handlers.Task.SetFilter)
	r.POST("/api/v1/tasks/{id}/toggle", handlers.Task.Toggle)
	r.PUT("/api/v1/tasks/{id}", handlers.Task.Update)
	r.DELETE("/api/v1/tasks/{id}", handlers.Task.Delete)

	// Theme routes
	r.GET("/api/v1/theme", handlers.Theme.Get)
	r.POST("/api/v1/theme/toggle", handlers.Theme.Toggle)

	return r
}
