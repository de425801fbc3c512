package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// newPaymentReference mints the reference stored on confirmed online
// payments.
var newPaymentReference = utils.PaymentReference

// parseIDParam reads a positive integer path parameter.  On failure it
// writes a 400 response and returns false.
func parseIDParam(c echo.Context, name string) (uint64, bool, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name, "field": name})
	}
	return id, true, nil
}

// queryUint parses an optional positive integer query parameter.  An empty
// value yields 0.
func queryUint(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

// queryInt parses an optional integer query parameter, returning def when
// the parameter is absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (*model.Date, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func badQuery(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name, "field": name})
}
