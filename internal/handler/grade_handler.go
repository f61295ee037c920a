package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// GradeHandler exposes grade assignment endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Assign godoc
// @Summary Assign or clear the grade of a registration
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body service.AssignGradeRequest true "Grade payload (null clears)"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id}/grade [put]
func (h *GradeHandler) Assign(c *gin.Context) {
	var req service.AssignGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.grades.AssignGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}
