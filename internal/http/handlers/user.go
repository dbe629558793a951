package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondFailure(c, err, "get_me_failed")
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
// body: { "first_name": "...", "last_name": "..." }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	me, err := uh.userService.UpdateMe(c.Request.Context(), services.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.RespondFailure(c, err, "update_me_failed")
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
