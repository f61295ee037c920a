package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// SubjectHandler exposes the subject catalog and the per-student
// availability view.
type SubjectHandler struct {
	availability *service.AvailabilityService
}

// NewSubjectHandler constructs SubjectHandler.
func NewSubjectHandler(availability *service.AvailabilityService) *SubjectHandler {
	return &SubjectHandler{availability: availability}
}

// List godoc
// @Summary List the subject catalog
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.availability.Catalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Available godoc
// @Summary List subjects the signed-in student can still register for
// @Tags Subjects
// @Produce json
// @Param course query string false "Course name filter"
// @Param major query string false "Major name filter"
// @Param term query string false "Term filter (S1 or S2)"
// @Success 200 {object} response.Envelope
// @Router /subjects/available [get]
func (h *SubjectHandler) Available(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil || session.Role != models.RoleStudent {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	filter := models.CurriculumFilter{
		Course: c.Query("course"),
		Major:  c.Query("major"),
	}
	if raw := c.Query("term"); raw != "" {
		term, ok := models.ParseTerm(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term must be S1 or S2"))
			return
		}
		filter.Term = term
	}

	available, err := h.availability.AvailableSubjects(c.Request.Context(), session.StudentID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"count": len(available),
		"filters": gin.H{
			"course": filter.Course,
			"major":  filter.Major,
			"term":   filter.Term,
		},
	}
	response.JSON(c, http.StatusOK, available, nil, meta)
}
