package worker

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/worker"
)

func Status(c echo.Context) error {
	status, err := svc.New(c.Request().Context()).Status()
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusOK, status)
}
