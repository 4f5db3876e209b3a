package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/pkg/version"
)

var startedAt time.Time

func init() {
	startedAt = time.Now()
}

// HealthResponse defines the data the Health
// REST endpoint returns.
type HealthResponse struct {
	Status  Status        `json:"status"`
	Uptime  time.Duration `json:"uptime"`
	Version string        `json:"version"`
	Commit  string        `json:"commit"`
}

// Health is used to determine if Strontium is healthy.
// The response also includes the uptime and build identity.
func Health(c echo.Context) error {
	return c.JSON(
		http.StatusOK,
		HealthResponse{
			Status:  Healthy,
			Uptime:  time.Since(startedAt),
			Version: version.Version,
			Commit:  version.Commit,
		},
	)
}

// Status enumerates the health statuses of Strontium.
type Status string

const (
	// Healthy implies Strontium is having no major issues.
	Healthy Status = "healthy"
)
