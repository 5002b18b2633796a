package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/holocron/internal/jobs"
	mid "github.com/OFFIS-RIT/holocron/internal/server/middleware"
	"github.com/OFFIS-RIT/holocron/internal/util"
	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/stats"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New builds the echo instance with middleware and routes wired to registry.
func New(registry *jobs.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(registry))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)
	return e
}

// NewSourceFromEnv builds the catalog client from SWAPI_* environment variables.
func NewSourceFromEnv() (*swapi.Client, error) {
	return swapi.NewClient(swapi.NewClientParams{
		BaseURL:               util.GetEnvString("SWAPI_BASE_URL", swapi.DefaultBaseURL),
		Timeout:               util.GetEnvSeconds("SWAPI_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries:            util.GetEnvInt("SWAPI_MAX_RETRIES", 3),
		Backoff:               250 * time.Millisecond,
		MaxConcurrentRequests: int64(util.GetEnvInt("SWAPI_PARALLEL_REQ", stats.DefaultParallel)),
		RequestsPerSecond:     util.GetEnvFloat("SWAPI_RATE_LIMIT", 0),
	})
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := NewSourceFromEnv()
	if err != nil {
		logger.Fatal("Failed to create catalog client", "err", err)
	}

	registry := jobs.NewRegistry(jobs.RegistryParams{
		Source:   source,
		Parallel: util.GetEnvInt("SWAPI_PARALLEL_REQ", stats.DefaultParallel),
		Timeout:  util.GetEnvSeconds("COMPUTE_TIMEOUT_SECONDS", 2*time.Minute),
		Retain:   util.GetEnvInt("JOBS_RETAIN", 100),
	})
	defer registry.Close()

	e := New(registry)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
