package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/authgate/domain"
)

// UserHandlers handles the user-creation API
type UserHandlers struct {
	authSvc domain.AuthService
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(authSvc domain.AuthService) *UserHandlers {
	return &UserHandlers{authSvc: authSvc}
}

// CreateUserRequest represents a user creation request. Password is typed
// loosely on purpose: a non-string value must produce a field-level
// validation error, not a bind failure.
type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password interface{} `json:"password" binding:"required"`
	Name     string      `json:"name"`
}

// Create handles POST /api/users
func (h *UserHandlers) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	password, ok := req.Password.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password format"})
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Email, password, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// Generic on purpose: the same message regardless of which
			// constraint fired, so the endpoint cannot enumerate accounts.
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		log.Printf("USER_CREATE_FAILED: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"name":          user.Name,
			"role":          user.Role,
			"emailVerified": user.EmailVerified,
			"createdAt":     user.CreatedAt,
		},
	})
}
