package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/holocron/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetStatisticsHandler(c echo.Context) error {
	type getStatisticsParams struct {
		ID   string `param:"id" validate:"required,max=64"`
		Wait bool   `query:"wait"`
	}

	params := new(getStatisticsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	registry := c.(*middleware.AppContext).App.Jobs
	job, ok := registry.Get(params.ID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Statistics job not found"})
	}

	if params.Wait {
		select {
		case <-job.Agg.Done():
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	return c.JSON(http.StatusOK, statisticsResponse{ID: job.ID, Snapshot: job.Agg.Snapshot()})
}
