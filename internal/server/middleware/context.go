package middleware

import (
	"github.com/OFFIS-RIT/holocron/internal/jobs"

	"github.com/labstack/echo/v4"
)

type App struct {
	Jobs *jobs.Registry
}

// AppContext carries the shared application state into handlers.
type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(registry *jobs.Registry) echo.MiddlewareFunc {
	app := &App{Jobs: registry}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
