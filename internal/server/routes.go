package server

import (
	"github.com/OFFIS-RIT/holocron/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Statistics routes
	apiRoutes.POST("/statistics", routes.StartStatisticsHandler)
	apiRoutes.GET("/statistics/:id", routes.GetStatisticsHandler)
}
