package schedule

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/schedule"
)

// Runs returns a schedule's execution history, most recent first.
func Runs(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, "invalid schedule id"))
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return apierror.Respond(c,
				apierror.BadRequest(apierror.CodeInvalidRequest, "invalid limit"))
		}
	}

	runs, err := svc.Service(c.Request().Context()).Runs(id, limit)
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusOK, runs)
}
