package weather

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Handler handles the public weather endpoint.
type Handler struct {
	service Service
}

// NewHandler creates a new weather handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Current returns conditions for a coordinate pair
// (GET /weather?lat=41.88&lon=-87.63). When the upstream can't be
// reached the response is still 200 with an unavailable marker so
// display clients don't treat a weather outage as a portal outage.
func (h *Handler) Current(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return apperror.NewBadRequest("lat must be a number")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return apperror.NewBadRequest("lon must be a number")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return apperror.NewBadRequest("coordinates out of range")
	}

	report := h.service.Get(c.Request().Context(), lat, lon)
	if report == nil {
		return c.JSON(http.StatusOK, map[string]bool{"unavailable": true})
	}
	return c.JSON(http.StatusOK, report)
}
