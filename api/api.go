package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/bind"
	"github.com/strontium-cloud/strontium/pkg/env"
)

// Start launches Strontium's API.
func Start() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// health
	e.GET("/health", Health)

	// metrics
	prometheus.NewPrometheus("strontium", nil).Use(e)

	// REST
	bind.Bind(e.Group("/api"))

	return e.Start(fmt.Sprintf(":%v", env.Variables().Port))
}
