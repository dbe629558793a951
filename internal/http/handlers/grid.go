package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type GridHandler struct {
	gridService services.GridService
}

func NewGridHandler(gridService services.GridService) *GridHandler {
	return &GridHandler{gridService: gridService}
}

type gridRequest struct {
	Name    *string `json:"name"`
	Row     *int    `json:"row"`
	Col     *int    `json:"col"`
	RowSpan *int    `json:"row_span"`
	ColSpan *int    `json:"col_span"`
	Color   *string `json:"color"`
}

// GET /api/spaces/:id/grids
func (h *GridHandler) ListGrids(c *gin.Context) {
	spaceID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	grids, err := h.gridService.ListGrids(c.Request.Context(), spaceID)
	if err != nil {
		response.RespondFailure(c, err, "list_grids_failed")
		return
	}
	response.RespondOK(c, gin.H{"grids": grids})
}

// POST /api/spaces/:id/grids
func (h *GridHandler) CreateGrid(c *gin.Context) {
	spaceID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	var req gridRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	in := services.GridInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Row != nil {
		in.Row = *req.Row
	}
	if req.Col != nil {
		in.Col = *req.Col
	}
	if req.RowSpan != nil {
		in.RowSpan = *req.RowSpan
	}
	if req.ColSpan != nil {
		in.ColSpan = *req.ColSpan
	}
	if req.Color != nil {
		in.Color = *req.Color
	}
	grid, err := h.gridService.CreateGrid(c.Request.Context(), spaceID, in)
	if err != nil {
		response.RespondFailure(c, err, "create_grid_failed")
		return
	}
	response.RespondCreated(c, gin.H{"grid": grid})
}

// PUT /api/grids/:id
func (h *GridHandler) UpdateGrid(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	var req gridRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	grid, err := h.gridService.UpdateGrid(c.Request.Context(), id, services.GridPatch{
		Name:    req.Name,
		Row:     req.Row,
		Col:     req.Col,
		RowSpan: req.RowSpan,
		ColSpan: req.ColSpan,
		Color:   req.Color,
	})
	if err != nil {
		response.RespondFailure(c, err, "update_grid_failed")
		return
	}
	response.RespondOK(c, gin.H{"grid": grid})
}

// DELETE /api/grids/:id
func (h *GridHandler) DeleteGrid(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_id")
		return
	}
	if err := h.gridService.DeleteGrid(c.Request.Context(), id); err != nil {
		response.RespondFailure(c, err, "delete_grid_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "grid deleted", "id": id})
}
