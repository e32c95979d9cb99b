package explore

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/explore/departments", h.ListDepartments)
	api.GET("/explore/histogram", h.GetHistogram)
	api.GET("/explore/timeline", h.GetTimeline)
	api.GET("/explore/scatter", h.GetScatter)
	api.GET("/explore/radar", h.GetRadar)
}

func filterFromContext(c echo.Context) Filter {
	f := Filter{
		Department: c.QueryParam("department"),
		Sex:        c.QueryParam("sex"),
	}
	if v := c.QueryParam("emergency"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			f.Emergency = &b
		}
	}
	return f
}

func (h *Handler) ListDepartments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Departments())
}

func (h *Handler) GetHistogram(c echo.Context) error {
	field := c.QueryParam("field")
	if field == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "field parameter is required")
	}
	bin := 5.0
	if v := c.QueryParam("bin"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid bin width")
		}
		bin = parsed
	}
	hist, err := h.svc.Histogram(field, bin, filterFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, hist)
}

func (h *Handler) GetTimeline(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Timeline(filterFromContext(c)))
}

func (h *Handler) GetScatter(c echo.Context) error {
	x, y := c.QueryParam("x"), c.QueryParam("y")
	if x == "" || y == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "x and y parameters are required")
	}
	sc, err := h.svc.Scatter(x, y, filterFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) GetRadar(c echo.Context) error {
	radar, err := h.svc.Radar(c.QueryParam("department"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, radar)
}
