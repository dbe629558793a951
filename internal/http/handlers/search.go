package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/http/response"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type SearchHandler struct {
	searchService services.SearchService
	bucket        gcp.BucketService
}

func NewSearchHandler(searchService services.SearchService, bucket gcp.BucketService) *SearchHandler {
	return &SearchHandler{searchService: searchService, bucket: bucket}
}

// GET /api/search?q=&space_id=&category=&limit=
func (h *SearchHandler) Search(c *gin.Context) {
	spaceID, err := queryUUID(c, "space_id")
	if err != nil {
		response.RespondFailure(c, err, "invalid_request")
		return
	}
	q := services.SearchQuery{
		Text:     c.Query("q"),
		SpaceID:  spaceID,
		Category: c.Query("category"),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, perr := strconv.Atoi(raw)
		if perr != nil {
			response.RespondFailure(c, apierr.BadRequest("invalid_limit", "limit must be an integer"), "invalid_request")
			return
		}
		q.Limit = limit
	}
	items, err := h.searchService.Search(c.Request.Context(), q)
	if err != nil {
		response.RespondFailure(c, err, "search_failed")
		return
	}
	normalizeItemURLs(h.bucket, items...)
	response.RespondOK(c, gin.H{"items": items, "query": q.Text})
}
