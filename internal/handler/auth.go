package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// AuthHandler handles HTTP requests for identity resolution.
type AuthHandler struct {
	directory *service.DirectoryService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(directory *service.DirectoryService) *AuthHandler {
	return &AuthHandler{directory: directory}
}

// AuthRequest is the HTTP request body for identify-or-register.
type AuthRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"` // passenger (default) or driver
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID     string  `json:"id"`
	Phone  string  `json:"phone"`
	Name   string  `json:"name"`
	Role   string  `json:"role"`
	Rating float64 `json:"rating"`
}

// Auth handles POST /v1/auth
func (h *AuthHandler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.directory.IdentifyOrRegister(c.Request.Context(), service.IdentifyRequest{
		Phone: req.Phone,
		Name:  req.Name,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UserResponse{
		ID:     user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
		Role:   string(user.Role),
		Rating: user.Rating,
	})
}
