// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	authService *auth.Service
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// LoginRequest carries the login form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.Login(c.Request.Context(), sess, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"data":    user,
	})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered successfully",
		"data":    user,
	})
}

// Session handles GET /auth/session. The storefront header polls it to
// decide between the login link and the account menu.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	name, loggedIn, err := sess.UserName(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{"logged_in": loggedIn}
	if loggedIn {
		role, _, err := sess.UserRole(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		data["name"] = name
		data["role"] = role
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session state retrieved successfully",
		"data":    data,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
