package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type SpaceHandler struct {
	spaceService services.SpaceService
	bucket       gcp.BucketService
}

func NewSpaceHandler(spaceService services.SpaceService, bucket gcp.BucketService) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService, bucket: bucket}
}

type spaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Rows        *int    `json:"rows"`
	Cols        *int    `json:"cols"`
}

// GET /api/spaces
func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	spaces, err := h.spaceService.ListSpaces(c.Request.Context())
	if err != nil {
		response.RespondFailure(c, err, "list_spaces_failed")
		return
	}
	normalizeSpaceURLs(h.bucket, spaces...)
	response.RespondOK(c, gin.H{"spaces": spaces})
}

// GET /api/spaces/:id
func (h *SpaceHandler) GetSpace(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	space, grids, err := h.spaceService.GetSpace(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err, "get_space_failed")
		return
	}
	normalizeSpaceURLs(h.bucket, space)
	response.RespondOK(c, gin.H{"space": space, "grids": grids})
}

// POST /api/spaces
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	var req spaceRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	in := services.SpaceInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Rows != nil {
		in.Rows = *req.Rows
	}
	if req.Cols != nil {
		in.Cols = *req.Cols
	}
	space, err := h.spaceService.CreateSpace(c.Request.Context(), in)
	if err != nil {
		response.RespondFailure(c, err, "create_space_failed")
		return
	}
	normalizeSpaceURLs(h.bucket, space)
	response.RespondCreated(c, gin.H{"space": space})
}

// PUT /api/spaces/:id
func (h *SpaceHandler) UpdateSpace(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	var req spaceRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	space, err := h.spaceService.UpdateSpace(c.Request.Context(), id, services.SpacePatch{
		Name:        req.Name,
		Description: req.Description,
		Rows:        req.Rows,
		Cols:        req.Cols,
	})
	if err != nil {
		response.RespondFailure(c, err, "update_space_failed")
		return
	}
	normalizeSpaceURLs(h.bucket, space)
	response.RespondOK(c, gin.H{"space": space})
}

// DELETE /api/spaces/:id
func (h *SpaceHandler) DeleteSpace(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	if err := h.spaceService.DeleteSpace(c.Request.Context(), id); err != nil {
		response.RespondFailure(c, err, "delete_space_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "space deleted", "id": id})
}

// POST /api/spaces/:id/image (multipart "image")
func (h *SpaceHandler) UploadSpaceImage(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	raw, err := readImage(c, gcp.BucketCategorySpace)
	if err != nil {
		response.RespondFailure(c, err, "upload_failed")
		return
	}
	space, err := h.spaceService.UploadSpaceImage(c.Request.Context(), id, raw)
	if err != nil {
		response.RespondFailure(c, err, "upload_space_image_failed")
		return
	}
	normalizeSpaceURLs(h.bucket, space)
	response.RespondOK(c, gin.H{"space": space})
}
