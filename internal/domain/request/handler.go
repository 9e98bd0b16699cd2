package request

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/auth"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleLabTech))
	read.GET("/requests", h.Search)
	read.GET("/requests/:id", h.Get)
	read.GET("/details/:id", h.GetDetail)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleLabTech))
	write.POST("/requests", h.Create)
	write.PUT("/requests/:id", h.Update)
	write.DELETE("/requests/:id", h.Delete)
	write.PUT("/details/:id/values/:fieldId", h.RecordValue)
	write.POST("/details/:id/values", h.SubmitValues)
	write.PUT("/details/:id/result", h.RecordLegacyResult)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/details/:id/reset", h.ResetDetailState)
}

type createRequestBody struct {
	Request
	ExamIDs []uuid.UUID `json:"exam_ids"`
}

func (h *Handler) Create(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &body.Request, body.ExamIDs); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, body.Request)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) Search(c echo.Context) error {
	p := pagination.FromContext(c)
	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"doctor_id":  c.QueryParam("doctor_id"),
		"service_id": c.QueryParam("service_id"),
		"state":      c.QueryParam("state"),
		"from":       c.QueryParam("from"),
		"to":         c.QueryParam("to"),
	}
	requests, total, err := h.svc.Search(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, p.Limit, p.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.ID = id
	if err := h.svc.Update(c.Request().Context(), &req); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetDetail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDetail(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) RecordValue(c echo.Context) error {
	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid detail id")
	}
	fieldID, err := uuid.Parse(c.Param("fieldId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid field id")
	}
	var body struct {
		Value       string  `json:"value"`
		Observation *string `json:"observation,omitempty"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	value, warning, err := h.svc.RecordValue(c.Request().Context(), detailID, fieldID,
		body.Value, body.Observation, auth.UserName(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	resp := map[string]interface{}{"value": value}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) SubmitValues(c echo.Context) error {
	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid detail id")
	}
	var body struct {
		Values []ValueInput `json:"values"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	outcomes, err := h.svc.SubmitValues(c.Request().Context(), detailID, body.Values, auth.UserName(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"outcomes": outcomes})
}

func (h *Handler) RecordLegacyResult(c echo.Context) error {
	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid detail id")
	}
	var body struct {
		Result       string  `json:"resultado"`
		Observations *string `json:"observations,omitempty"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.RecordLegacyResult(c.Request().Context(), detailID, body.Result,
		body.Observations, auth.UserName(c))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ResetDetailState(c echo.Context) error {
	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid detail id")
	}
	var body struct {
		State string `json:"state"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ResetDetailState(c.Request().Context(), detailID, body.State, auth.UserName(c)); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
