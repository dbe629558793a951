package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondFailure maps a service error onto its status and code. 5xx
// responses carry a generic message; the cause stays in the logs.
func RespondFailure(c *gin.Context, err error, fallbackCode string) {
	status, code := apierr.Resolve(err, fallbackCode)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, ErrorEnvelope{Error: APIError{Message: http.StatusText(status), Code: code}})
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
