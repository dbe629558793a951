package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 100
)

type SearchQuery struct {
	Text     string
	SpaceID  *uuid.UUID
	Category string
	Limit    int
}

type SearchService interface {
	Search(ctx context.Context, q SearchQuery) ([]*types.Item, error)
}

type searchService struct {
	log       *logger.Logger
	spaceRepo repos.SpaceRepo
	itemRepo  repos.ItemRepo
}

func NewSearchService(log *logger.Logger, spaceRepo repos.SpaceRepo, itemRepo repos.ItemRepo) SearchService {
	return &searchService{
		log:       log.With("service", "SearchService"),
		spaceRepo: spaceRepo,
		itemRepo:  itemRepo,
	}
}

// Search needs text or at least one filter. Limit 0 means DefaultSearchLimit.
func (ss *searchService) Search(ctx context.Context, q SearchQuery) ([]*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	if q.Text == "" && q.SpaceID == nil && q.Category == "" {
		return nil, apierr.BadRequest("invalid_query", "q, space_id or category is required")
	}
	switch {
	case q.Limit == 0:
		q.Limit = DefaultSearchLimit
	case q.Limit < 0 || q.Limit > MaxSearchLimit:
		return nil, apierr.BadRequest("invalid_limit", "limit must be between 1 and %d", MaxSearchLimit)
	}

	dbc := dbctx.New(ctx)
	if q.SpaceID != nil {
		space, err := ss.spaceRepo.GetByID(dbc, userID, *q.SpaceID)
		if err != nil {
			return nil, fmt.Errorf("load space: %w", err)
		}
		if space == nil {
			return nil, apierr.NotFound("space_not_found", "space %s not found", *q.SpaceID)
		}
	}
	items, err := ss.itemRepo.Search(dbc, userID, repos.ItemSearch{
		Text:     q.Text,
		SpaceID:  q.SpaceID,
		Category: q.Category,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	ss.log.Debug("Search served", "results", len(items), "limit", q.Limit)
	return items, nil
}
