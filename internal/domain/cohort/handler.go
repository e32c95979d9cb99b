package cohort

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casedash/casedash/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/cohort/match", h.MatchCohort)
	api.POST("/cohort/estimate", h.Estimate)
	api.POST("/cohort/score", h.ScoreGuesses)
	api.GET("/cohort/tolerances", h.GetTolerances)
}

type scoreRequest struct {
	Profile Profile `json:"profile"`
	Guesses Guesses `json:"guesses"`
}

// MatchCohort returns the matching cases for a profile, paginated.
func (h *Handler) MatchCohort(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cohort, err := h.svc.Match(p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(cohort)
	lo := pg.Offset
	if lo > total {
		lo = total
	}
	hi := lo + pg.Limit
	if hi > total {
		hi = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(cohort[lo:hi], total, pg.Limit, pg.Offset))
}

// Estimate returns the aggregate outcome for a profile's cohort.
func (h *Handler) Estimate(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.Estimate(p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

// ScoreGuesses rates user guesses against the cohort's actual outcomes.
func (h *Handler) ScoreGuesses(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.ScoreGuesses(req.Profile, req.Guesses)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// GetTolerances reports the canonical matching bands.
func (h *Handler) GetTolerances(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Tolerances())
}
