package schedule

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/schedule"
	"github.com/strontium-cloud/strontium/pkg/log"
)

func Post(c echo.Context) error {
	req := &svc.CreateRequest{}

	if err := c.Bind(req); err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, "malformed request body"))
	}

	log.Info("creating schedule",
		"suite_id", req.SuiteID,
		"run_at", req.RunAt,
		"timezone", req.Timezone,
		"recurrence", req.Recurrence,
	)

	sched, err := svc.Service(c.Request().Context()).Create(req)
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, sched)
}
