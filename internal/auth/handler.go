package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell/internal/middleware"
	apperrors "github.com/inkwell-labs/inkwell/pkg/errors"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

// Handler handles authentication HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new authentication handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RefreshRequest carries the opaque refresh token id.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Register handles account creation
// POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := ValidateRegisterRequest(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	usr, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": usr})
}

// Login handles email/password login
// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := ValidateLoginRequest(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	start := time.Now()
	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		middleware.RecordLoginAttempt("email", "failure", time.Since(start))
		response.Error(c, err)
		return
	}

	middleware.RecordLoginAttempt("email", "success", time.Since(start))
	response.Success(c, http.StatusOK, result)
}

// Refresh exchanges a refresh token for a new token pair
// POST /auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.RecordRefreshRotation(rotationStatus(err))
		response.Error(c, err)
		return
	}

	middleware.RecordRefreshRotation("success")
	response.Success(c, http.StatusOK, gin.H{"token": pair})
}

// Logout invalidates a refresh token
// POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user's information
// GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	usr, err := h.service.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": usr})
}

func rotationStatus(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrTokenReused):
		return "reused"
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return "expired"
	default:
		return "failure"
	}
}
