// Package bind attaches the REST controllers to their routes.
package bind

import (
	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/controller/schedule"
	"github.com/strontium-cloud/strontium/api/rest/controller/stats"
	"github.com/strontium-cloud/strontium/api/rest/controller/worker"
)

// Bind the REST endpoints to the API group.
func Bind(group *echo.Group) {
	group.GET("/schedules", schedule.List)
	group.POST("/schedules", schedule.Post)
	group.GET("/schedules/stats/summary", stats.Summary)
	group.GET("/schedules/:id", schedule.Get)
	group.PUT("/schedules/:id", schedule.Put)
	group.DELETE("/schedules/:id", schedule.Delete)
	group.POST("/schedules/:id/run-now", schedule.RunNow)
	group.GET("/schedules/:id/runs", schedule.Runs)

	group.GET("/worker/status", worker.Status)
}
