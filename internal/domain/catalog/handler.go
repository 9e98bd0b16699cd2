package catalog

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
	read.GET("/categories", h.ListCategories)
	read.GET("/categories/:id", h.GetCategory)
	read.GET("/exams", h.SearchExams)
	read.GET("/exams/:id", h.GetExam)
	read.GET("/exams/:id/children", h.ListChildren)
	read.GET("/exams/:id/fields", h.ListFields)
	read.GET("/exams/:id/fields/resolved", h.ResolveAllFields)
	read.GET("/fields/:id", h.GetField)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("/categories", h.CreateCategory)
	write.PUT("/categories/:id", h.UpdateCategory)
	write.POST("/exams", h.CreateExam)
	write.PUT("/exams/:id", h.UpdateExam)
	write.DELETE("/exams/:id", h.DeleteExam)
	write.POST("/exams/:id/children", h.AddChild)
	write.DELETE("/exams/:id/children/:childId", h.RemoveChild)
	write.POST("/exams/:id/fields", h.CreateField)
	write.PUT("/fields/:id", h.UpdateField)
	write.PATCH("/fields/:id/deactivate", h.DeactivateField)
	write.DELETE("/fields/:id", h.DeleteField)
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// --- Categories ---

func (h *Handler) CreateCategory(c echo.Context) error {
	var cat ExamCategory
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCategory(c.Request().Context(), &cat); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) ListCategories(c echo.Context) error {
	activeOnly := c.QueryParam("include_inactive") != "true"
	cats, err := h.svc.ListCategories(c.Request().Context(), activeOnly)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var cat ExamCategory
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cat.ID = id
	if err := h.svc.UpdateCategory(c.Request().Context(), &cat); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cat)
}

// --- Exams ---

func (h *Handler) CreateExam(c echo.Context) error {
	var exam Exam
	if err := c.Bind(&exam); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateExam(c.Request().Context(), &exam); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, exam)
}

func (h *Handler) GetExam(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	exam, err := h.svc.GetExam(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, exam)
}

func (h *Handler) SearchExams(c echo.Context) error {
	p := pagination.FromContext(c)
	params := map[string]string{
		"q":                c.QueryParam("q"),
		"kind":             c.QueryParam("kind"),
		"category_id":      c.QueryParam("category_id"),
		"include_inactive": c.QueryParam("include_inactive"),
	}
	exams, total, err := h.svc.SearchExams(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(exams, total, p.Limit, p.Offset))
}

func (h *Handler) UpdateExam(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var exam Exam
	if err := c.Bind(&exam); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	exam.ID = id
	if err := h.svc.UpdateExam(c.Request().Context(), &exam); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, exam)
}

func (h *Handler) DeleteExam(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteExam(c.Request().Context(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Composition ---

func (h *Handler) AddChild(c echo.Context) error {
	parentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		ChildID  uuid.UUID `json:"child_id"`
		Position int       `json:"position"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	edge, err := h.svc.AddChild(c.Request().Context(), parentID, body.ChildID, body.Position)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, edge)
}

func (h *Handler) ListChildren(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	edges, err := h.svc.ListChildren(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, edges)
}

func (h *Handler) RemoveChild(c echo.Context) error {
	parentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid child id")
	}
	if err := h.svc.RemoveChild(c.Request().Context(), parentID, childID); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Fields ---

func (h *Handler) CreateField(c echo.Context) error {
	examID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var f FieldDefinition
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.ExamID = examID
	if err := h.svc.CreateField(c.Request().Context(), &f); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetField(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	f, err := h.svc.GetField(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListFields(c echo.Context) error {
	examID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	activeOnly := c.QueryParam("include_inactive") != "true"
	fields, err := h.svc.ListFields(c.Request().Context(), examID, activeOnly)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, fields)
}

func (h *Handler) ResolveAllFields(c echo.Context) error {
	examID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	fields, err := h.svc.ResolveAllFields(c.Request().Context(), examID)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, fields)
}

func (h *Handler) UpdateField(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var update FieldUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := h.svc.UpdateField(c.Request().Context(), id, update)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeactivateField(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.DeactivateField(c.Request().Context(), id, body.Reason); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteField(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteField(c.Request().Context(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
