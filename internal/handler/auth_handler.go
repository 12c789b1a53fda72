package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/print24/pricing_api/internal/service"
	"github.com/print24/pricing_api/internal/utils"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	auth *service.AdminAuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies admin credentials and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "email and password are required")
		return
	}

	token, admin, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
		"admin": admin,
	})
}
