package admin

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/auth"
)

type Handler struct {
	svc *AdminService
}

func NewHandler(svc *AdminService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleLabTech))
	read.GET("/services", h.ListServices)
	read.GET("/services/:id", h.GetService)

	adm := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adm.GET("/dashboard", h.Dashboard)
	adm.POST("/services", h.CreateService)
	adm.PUT("/services/:id", h.UpdateService)
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.BuildDashboard(c.Request().Context(), time.Now())
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateService(c echo.Context) error {
	var svc Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateService(c.Request().Context(), &svc); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	svc, err := h.svc.GetService(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) ListServices(c echo.Context) error {
	activeOnly := c.QueryParam("include_inactive") != "true"
	services, err := h.svc.ListServices(c.Request().Context(), activeOnly)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, services)
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var svc Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc.ID = id
	if err := h.svc.UpdateService(c.Request().Context(), &svc); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, svc)
}
