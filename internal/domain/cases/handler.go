package cases

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casedash/casedash/internal/dataset"
	"github.com/casedash/casedash/pkg/pagination"
)

type Handler struct {
	svc   *Service
	store *dataset.Store
}

func NewHandler(svc *Service, store *dataset.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

// RegisterRoutes mounts the read endpoints on api and the reload endpoint on
// admin, which the server wraps with auth.
func (h *Handler) RegisterRoutes(api, admin *echo.Group) {
	api.GET("/cases", h.ListCases)
	api.GET("/cases/:caseid", h.GetCase)
	api.GET("/dataset/info", h.DatasetInfo)
	admin.POST("/dataset/reload", h.ReloadDataset)
}

func filterFromContext(c echo.Context) Filter {
	f := Filter{
		Department: c.QueryParam("department"),
		Sex:        c.QueryParam("sex"),
	}
	if v := c.QueryParam("emergency"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Emergency = &b
		}
	}
	numParam := func(name string) *float64 {
		v := c.QueryParam(name)
		if v == "" {
			return nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &n
	}
	f.ASA = numParam("asa")
	f.AgeMin = numParam("age_min")
	f.AgeMax = numParam("age_max")
	return f
}

func (h *Handler) ListCases(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), filterFromContext(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetCase(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("caseid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caseid")
	}
	sc, err := h.svc.GetByCaseID(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

// DatasetInfo reports the loaded snapshot.
func (h *Handler) DatasetInfo(c echo.Context) error {
	id, at := h.store.Snapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"snapshot":  id,
		"loaded_at": at,
		"cases":     h.store.Len(),
	})
}

// ReloadDataset re-reads the CSV from disk and swaps the snapshot.
func (h *Handler) ReloadDataset(c echo.Context) error {
	if err := h.store.Load(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.DatasetInfo(c)
}
