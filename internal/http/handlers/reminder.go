package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type ReminderHandler struct {
	reminderService services.ReminderService
	bucket          gcp.BucketService
}

func NewReminderHandler(reminderService services.ReminderService, bucket gcp.BucketService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, bucket: bucket}
}

// GET /api/reminders?within=72h
func (h *ReminderHandler) Upcoming(c *gin.Context) {
	var within time.Duration
	if raw := strings.TrimSpace(c.Query("within")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			response.RespondFailure(c, apierr.BadRequest("invalid_window", "within must be a duration like 72h"), "invalid_request")
			return
		}
		within = d
	}
	items, err := h.reminderService.Upcoming(c.Request.Context(), within)
	if err != nil {
		response.RespondFailure(c, err, "list_reminders_failed")
		return
	}
	normalizeItemURLs(h.bucket, items...)
	response.RespondOK(c, gin.H{"items": items})
}
