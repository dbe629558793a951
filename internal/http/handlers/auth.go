package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.RespondFailure(c, err, "registration_failed")
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	pair, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondFailure(c, err, "login_failed")
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/refresh
// body: { "refresh_token": "..." }, falling back to the bearer header so
// older clients that sent the refresh token there keep working.
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			response.RespondFailure(c, err, "invalid_request")
			return
		}
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			token = strings.TrimSpace(h[7:])
		}
	}
	if token == "" {
		response.RespondFailure(c, apierr.Unauthorized("missing_refresh_token", "refresh token required"), "refresh_failed")
		return
	}
	pair, err := ah.authService.RefreshUser(c.Request.Context(), token)
	if err != nil {
		response.RespondFailure(c, err, "refresh_failed")
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondFailure(c, err, "logout_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "logged out"})
}
