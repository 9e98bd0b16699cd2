package reporting

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleLabTech))
	g.GET("/reports/summary", h.Summary)
	g.GET("/reports/requests/:id", h.RequestReport)
	g.GET("/reports/requests/:id/pdf", h.RequestPDF)
	g.GET("/reports/requests.xlsx", h.RequestsExcel)
}

// window parses the from/to query parameters, defaulting to the last 30 days.
func window(c echo.Context) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		from = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		to = t.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

func (h *Handler) Summary(c echo.Context) error {
	from, to, err := window(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Summarize(c.Request().Context(), from, to)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) RequestReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	report, err := h.svc.RequestReport(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) RequestPDF(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/pdf")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="resultado-`+id.String()+`.pdf"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := h.svc.WriteRequestPDF(c.Request().Context(), c.Response(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return nil
}

func (h *Handler) RequestsExcel(c echo.Context) error {
	from, to, err := window(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="solicitudes.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := h.svc.WriteRequestsExcel(c.Request().Context(), c.Response(), from, to, c.QueryParam("state")); err != nil {
		return apperror.ToHTTP(err)
	}
	return nil
}
