package stats

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/stats"
)

func Summary(c echo.Context) error {
	summary, err := svc.New(c.Request().Context()).Summary()
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}
