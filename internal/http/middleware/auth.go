package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth accepts a bearer token from the Authorization header only.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.require(false)
}

// RequireStreamAuth also accepts ?token= since EventSource clients cannot
// set headers.
func (am *AuthMiddleware) RequireStreamAuth() gin.HandlerFunc {
	return am.require(true)
}

func (am *AuthMiddleware) require(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" && allowQuery {
			tokenString = strings.TrimSpace(c.Query("token"))
		}
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			status, code := apierr.Resolve(err, "unauthorized")
			if status >= http.StatusInternalServerError {
				am.log.Error("Token check failed", "error", err)
				abort(c, status, code, http.StatusText(status))
				return
			}
			abort(c, status, code, err.Error())
			return
		}
		if ctxutil.UserID(ctx) == uuid.Nil {
			abort(c, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, response.ErrorEnvelope{
		Error: response.APIError{Message: msg, Code: code},
	})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
