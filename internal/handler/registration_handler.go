package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// RegistrationHandler exposes registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Create godoc
// @Summary Register the signed-in student for a subject
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil || session.Role != models.RoleStudent {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Register(c.Request.Context(), session.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// List godoc
// @Summary List all registrations for a subject
// @Tags Registrations
// @Produce json
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	subjectID := c.Query("subjectId")
	if subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId is required"))
		return
	}
	subject, registrations, err := h.registrations.Roster(c.Request.Context(), subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]gin.H, 0, len(registrations))
	for _, reg := range registrations {
		items = append(items, gin.H{
			"id":            reg.ID,
			"student_id":    reg.StudentID,
			"student_name":  reg.StudentName(),
			"email":         reg.StudentEmail,
			"academic_year": reg.AcademicYear,
			"term":          reg.Term,
			"grade":         reg.Grade,
		})
	}
	meta := map[string]interface{}{
		"subject": subject,
		"count":   len(items),
	}
	response.JSON(c, http.StatusOK, items, nil, meta)
}

// Export godoc
// @Summary Export a subject roster as CSV or PDF
// @Tags Registrations
// @Produce text/csv
// @Produce application/pdf
// @Param subjectId query string true "Subject ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} byte
// @Router /registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	subjectID := c.Query("subjectId")
	if subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId is required"))
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.registrations.ExportRoster(c.Request.Context(), subjectID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("registrations-%s.%s", subjectID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
