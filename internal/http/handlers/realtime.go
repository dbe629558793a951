package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/sse/stream
// Every open stream listens on the caller's user channel, so all of a
// user's tabs and devices see the same inventory events.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondFailure(c, apierr.Unauthorized("unauthorized", "not authenticated"), "unauthorized")
		return
	}

	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, userID.String())
	observability.Current().SSEClientConnected()
	h.log.Debug("SSE stream open", "user_id", userID.String(), "client_id", client.ID.String())
	defer func() {
		h.hub.CloseClient(client)
		observability.Current().SSEClientDisconnected()
		h.log.Debug("SSE stream closed", "client_id", client.ID.String())
	}()

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
