package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// AuthHandler exposes session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignIn godoc
// @Summary Sign in as a student or the admin
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.SignInRequest true "Sign-in payload"
// @Success 200 {object} response.Envelope
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
