package controller

import (
	"net/http"
	"strings"
	"time"

	"leetlab/internal/common/http/middleware"
	"leetlab/internal/user/service"
	"leetlab/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthController handles auth-related HTTP endpoints.
type AuthController struct {
	authService *service.AuthService
	cookie      CookieConfig
}

// NewAuthController creates a new AuthController.
func NewAuthController(authService *service.AuthService, cookie CookieConfig) *AuthController {
	return &AuthController{authService: authService, cookie: cookie}
}

// Register handles user registration.
func (h *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	response.Created(c, "User created successfully", toUserResponse(result.User))
}

// Login handles user login.
func (h *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	response.SuccessWithMessage(c, "User logged in successfully", toUserResponse(result.User))
}

// Logout revokes the current token and clears the session cookie.
func (h *AuthController) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		response.Error(c, err)
		return
	}

	h.clearSessionCookie(c)
	response.SuccessWithMessage(c, "User logged out successfully", nil)
}

// Check returns the signed-in user.
func (h *AuthController) Check(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	user, err := h.authService.Check(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "User authenticated successfully", toUserResponse(user))
}

func (h *AuthController) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthController) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}

// RegisterRequest defines registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest defines login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse defines the public user payload.
type UserResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
	Image *string `json:"image"`
}

func toUserResponse(user service.UserInfo) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		Image: user.Image,
	}
}
