package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type ItemHandler struct {
	itemService services.ItemService
	bucket      gcp.BucketService
}

func NewItemHandler(itemService services.ItemService, bucket gcp.BucketService) *ItemHandler {
	return &ItemHandler{itemService: itemService, bucket: bucket}
}

type itemRequest struct {
	SpaceID       *string    `json:"space_id"`
	GridID        *string    `json:"grid_id"`
	ClearGrid     bool       `json:"clear_grid"`
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	Tags          *[]string  `json:"tags"`
	Quantity      *int       `json:"quantity"`
	ReminderAt    *time.Time `json:"reminder_at"`
	ReminderNote  *string    `json:"reminder_note"`
	ClearReminder bool       `json:"clear_reminder"`
}

// GET /api/items?space_id=&grid_id=&unplaced=&category=
func (h *ItemHandler) ListItems(c *gin.Context) {
	spaceID, err := queryUUID(c, "space_id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	gridID, err := queryUUID(c, "grid_id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	q := services.ItemQuery{SpaceID: spaceID, GridID: gridID, Category: c.Query("category")}
	if raw := strings.TrimSpace(c.Query("unplaced")); raw != "" {
		unplaced, perr := strconv.ParseBool(raw)
		if perr != nil {
			response.RespondFailure(c, apierr.BadRequest("invalid_unplaced", "unplaced must be a boolean"), "invalid_request")
			return
		}
		q.Unplaced = unplaced
	}
	items, err := h.itemService.ListItems(c.Request.Context(), q)
	if err != nil {
		response.RespondFailure(c, err, "list_items_failed")
		return
	}
	normalizeItemURLs(h.bucket, items...)
	response.RespondOK(c, gin.H{"items": items})
}

// GET /api/items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	item, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err, "get_item_failed")
		return
	}
	normalizeItemURLs(h.bucket, item)
	response.RespondOK(c, gin.H{"item": item})
}

// POST /api/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	spaceID, err := parseUUIDPtr("space_id", req.SpaceID)
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	if spaceID == nil {
		response.RespondFailure(c, apierr.BadRequest("invalid_space_id", "space_id is required"), "invalid_request")
		return
	}
	gridID, err := parseUUIDPtr("grid_id", req.GridID)
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	in := services.ItemInput{
		SpaceID:    *spaceID,
		GridID:     gridID,
		Quantity:   req.Quantity,
		ReminderAt: req.ReminderAt,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	if req.ReminderNote != nil {
		in.ReminderNote = *req.ReminderNote
	}
	item, err := h.itemService.CreateItem(c.Request.Context(), in)
	if err != nil {
		response.RespondFailure(c, err, "create_item_failed")
		return
	}
	normalizeItemURLs(h.bucket, item)
	response.RespondCreated(c, gin.H{"item": item})
}

// PUT /api/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	var req itemRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	spaceID, err := parseUUIDPtr("space_id", req.SpaceID)
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	gridID, err := parseUUIDPtr("grid_id", req.GridID)
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	item, err := h.itemService.UpdateItem(c.Request.Context(), id, services.ItemPatch{
		SpaceID:       spaceID,
		GridID:        gridID,
		ClearGrid:     req.ClearGrid,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Tags:          req.Tags,
		Quantity:      req.Quantity,
		ReminderAt:    req.ReminderAt,
		ReminderNote:  req.ReminderNote,
		ClearReminder: req.ClearReminder,
	})
	if err != nil {
		response.RespondFailure(c, err, "update_item_failed")
		return
	}
	normalizeItemURLs(h.bucket, item)
	response.RespondOK(c, gin.H{"item": item})
}

// DELETE /api/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	if err := h.itemService.DeleteItem(c.Request.Context(), id); err != nil {
		response.RespondFailure(c, err, "delete_item_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "item deleted", "id": id})
}

// POST /api/items/:id/image (multipart "image")
func (h *ItemHandler) UploadItemImage(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	raw, err := readImage(c, gcp.BucketCategoryItem)
	if err != nil {
		response.RespondFailure(c, err, "upload_failed")
		return
	}
	item, err := h.itemService.UploadItemImage(c.Request.Context(), id, raw)
	if err != nil {
		response.RespondFailure(c, err, "upload_item_image_failed")
		return
	}
	normalizeItemURLs(h.bucket, item)
	response.RespondOK(c, gin.H{"item": item})
}
