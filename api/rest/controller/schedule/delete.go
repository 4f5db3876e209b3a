package schedule

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/schedule"
	"github.com/strontium-cloud/strontium/pkg/log"
)

// Delete cancels a schedule rather than removing the row, so run
// history stays reachable.
func Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, "invalid schedule id"))
	}

	log.Info("cancelling schedule", "id", id)

	sched, err := svc.Service(c.Request().Context()).Cancel(id)
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusOK, sched)
}
