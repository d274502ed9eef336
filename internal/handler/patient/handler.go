package patient

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MCTHIAS/CathPed/internal/handler"
	"github.com/MCTHIAS/CathPed/internal/model"
	"github.com/MCTHIAS/CathPed/internal/service/patient"
	apperrors "github.com/MCTHIAS/CathPed/pkg/errors"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	registerValidations()
	return &Handler{service: service}
}

// registerValidations installs the severity rule used by stage payloads.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterAlias("severity", "max=20")
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.DELETE("/:id", h.DeletePatient)
		patients.GET("/:id/summary", h.GetSummary)

		patients.POST("/:id/case-evaluation", h.SubmitCaseEvaluation)
		patients.POST("/:id/authorization", h.SubmitAuthorization)
		patients.POST("/:id/procedure-execution", h.SubmitProcedureExecution)
		patients.POST("/:id/follow-up", h.SubmitFollowUp)
	}
}

// ListPatients reconciles with the intake sheet and returns all patients,
// optionally filtered by the search query parameter.
func (h *Handler) ListPatients(c *gin.Context) {
	search := c.Query("search")

	patients, err := h.service.ListPatients(c.Request.Context(), search)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "patient deleted successfully"})
}

func (h *Handler) GetSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}

func (h *Handler) SubmitCaseEvaluation(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}

	var req model.CreateCaseEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ce, err := h.service.SubmitCaseEvaluation(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(ce))
}

func (h *Handler) SubmitAuthorization(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}

	var req model.CreateAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	a, err := h.service.SubmitAuthorization(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(a))
}

func (h *Handler) SubmitProcedureExecution(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}

	var req model.CreateProcedureExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	pe, err := h.service.SubmitProcedureExecution(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(pe))
}

func (h *Handler) SubmitFollowUp(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}

	var req model.CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	f, err := h.service.SubmitFollowUp(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(f))
}

func (h *Handler) patientID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
}
