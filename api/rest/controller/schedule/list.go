package schedule

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	svc "github.com/strontium-cloud/strontium/api/rest/service/schedule"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return apierror.Respond(c,
			apierror.BadRequest(apierror.CodeInvalidRequest, err.Error()))
	}

	schedules, err := svc.Service(c.Request().Context()).List(req)
	if err != nil {
		return apierror.Respond(c, err)
	}

	return c.JSON(http.StatusOK, schedules)
}

func parseListRequest(c echo.Context) (req *svc.ListRequest, err error) {
	req = &svc.ListRequest{
		Status: c.QueryParam("status"),
	}

	if toDate := c.QueryParam("to_date"); toDate != "" {
		if req.ToDate, err = time.Parse(time.RFC3339, toDate); err != nil {
			return nil, err
		}
	}

	if limit := c.QueryParam("limit"); limit != "" {
		if req.Limit, err = strconv.Atoi(limit); err != nil {
			return nil, err
		}
	}

	if offset := c.QueryParam("offset"); offset != "" {
		if req.Offset, err = strconv.Atoi(offset); err != nil {
			return nil, err
		}
	}

	return
}
