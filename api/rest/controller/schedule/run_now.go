package schedule

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/schedule"
	"github.com/strontium-cloud/strontium/pkg/log"
)

// RunNow queues an immediate manual execution. The request only moves
// the schedule's due time; the next worker poll picks it up through
// the normal claim path.
func RunNow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, "invalid schedule id"))
	}

	log.Info("manual run requested", "id", id)

	sched, err := svc.Service(c.Request().Context()).RunNow(id)
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusAccepted, sched)
}
