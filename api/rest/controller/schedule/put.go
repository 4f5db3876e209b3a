package schedule

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/schedule"
	"github.com/strontium-cloud/strontium/pkg/log"
)

func Put(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, "invalid schedule id"))
	}

	req := &svc.UpdateRequest{}
	if err := c.Bind(req); err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, "malformed request body"))
	}

	log.Info("updating schedule", "id", id)

	sched, err := svc.Service(c.Request().Context()).Update(id, req)
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusOK, sched)
}
