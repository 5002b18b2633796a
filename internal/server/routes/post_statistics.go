package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/holocron/internal/jobs"
	"github.com/OFFIS-RIT/holocron/internal/server/middleware"
	"github.com/OFFIS-RIT/holocron/pkg/report"

	"github.com/labstack/echo/v4"
)

type statisticsResponse struct {
	ID string `json:"id"`
	report.Snapshot
}

func StartStatisticsHandler(c echo.Context) error {
	type startStatisticsBody struct {
		Parallel int `json:"parallel" validate:"omitempty,min=1,max=64"`
	}

	body := new(startStatisticsBody)
	if c.Request().ContentLength > 0 {
		if err := c.Bind(body); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	registry := c.(*middleware.AppContext).App.Jobs
	job, err := registry.Start(body.Parallel)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrShuttingDown):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Server is shutting down"})
		case errors.Is(err, jobs.ErrRegistryFull):
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many statistics jobs running"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, statisticsResponse{ID: job.ID, Snapshot: job.Agg.Snapshot()})
}
