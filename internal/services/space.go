package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type SpaceInput struct {
	Name        string
	Description string
	Rows        int
	Cols        int
}

// SpacePatch updates only the non-nil fields.
type SpacePatch struct {
	Name        *string
	Description *string
	Rows        *int
	Cols        *int
}

type SpaceService interface {
	ListSpaces(ctx context.Context) ([]*types.Space, error)
	GetSpace(ctx context.Context, spaceID uuid.UUID) (*types.Space, []*types.Grid, error)
	CreateSpace(ctx context.Context, in SpaceInput) (*types.Space, error)
	UpdateSpace(ctx context.Context, spaceID uuid.UUID, patch SpacePatch) (*types.Space, error)
	DeleteSpace(ctx context.Context, spaceID uuid.UUID) error
	UploadSpaceImage(ctx context.Context, spaceID uuid.UUID, raw []byte) (*types.Space, error)
}

type spaceService struct {
	db        *gorm.DB
	log       *logger.Logger
	spaceRepo repos.SpaceRepo
	gridRepo  repos.GridRepo
	itemRepo  repos.ItemRepo
	images    ImageService
	notify    InventoryNotifier
}

func NewSpaceService(
	db *gorm.DB,
	log *logger.Logger,
	spaceRepo repos.SpaceRepo,
	gridRepo repos.GridRepo,
	itemRepo repos.ItemRepo,
	images ImageService,
	notify InventoryNotifier,
) SpaceService {
	return &spaceService{
		db:        db,
		log:       log.With("service", "SpaceService"),
		spaceRepo: spaceRepo,
		gridRepo:  gridRepo,
		itemRepo:  itemRepo,
		images:    images,
		notify:    notify,
	}
}

func (ss *spaceService) ListSpaces(ctx context.Context) ([]*types.Space, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	spaces, err := ss.spaceRepo.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

func (ss *spaceService) GetSpace(ctx context.Context, spaceID uuid.UUID) (*types.Space, []*types.Grid, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	dbc := dbctx.New(ctx)
	space, err := ss.loadSpace(dbc, userID, spaceID)
	if err != nil {
		return nil, nil, err
	}
	grids, err := ss.gridRepo.ListBySpace(dbc, userID, spaceID)
	if err != nil {
		return nil, nil, fmt.Errorf("list grids: %w", err)
	}
	return space, grids, nil
}

func (ss *spaceService) CreateSpace(ctx context.Context, in SpaceInput) (*types.Space, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name, err := cleanName("name", in.Name)
	if err != nil {
		return nil, err
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return nil, err
	}
	rows, err := spaceDimension("rows", in.Rows, types.DefaultSpaceRows)
	if err != nil {
		return nil, err
	}
	cols, err := spaceDimension("cols", in.Cols, types.DefaultSpaceCols)
	if err != nil {
		return nil, err
	}

	space := &types.Space{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: desc,
		Rows:        rows,
		Cols:        cols,
	}
	dbc := dbctx.New(ctx)
	ss.applyPlaceholder(dbc, space)

	if _, err := ss.spaceRepo.Create(dbc, []*types.Space{space}); err != nil {
		ss.images.Delete(dbc, gcp.BucketCategorySpace, space.ThumbnailKey)
		return nil, fmt.Errorf("create space: %w", err)
	}
	ss.log.Info("Space created", "space_id", space.ID, "user_id", userID)
	ss.notify.SpaceChanged(userID, ActionCreated, space)
	return space, nil
}

func (ss *spaceService) UpdateSpace(ctx context.Context, spaceID uuid.UUID, patch SpacePatch) (*types.Space, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var (
		space      *types.Space
		staleThumb string
		renamed    bool
	)
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := ss.loadSpace(dbc, userID, spaceID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			name, err := cleanName("name", *patch.Name)
			if err != nil {
				return err
			}
			renamed = name != s.Name
			s.Name = name
		}
		if patch.Description != nil {
			desc, err := cleanDescription(*patch.Description)
			if err != nil {
				return err
			}
			s.Description = desc
		}
		if patch.Rows != nil || patch.Cols != nil {
			rows, cols := s.Rows, s.Cols
			if patch.Rows != nil {
				if rows, err = spaceDimension("rows", *patch.Rows, 0); err != nil {
					return err
				}
			}
			if patch.Cols != nil {
				if cols, err = spaceDimension("cols", *patch.Cols, 0); err != nil {
					return err
				}
			}
			if rows < s.Rows || cols < s.Cols {
				needRows, needCols, err := ss.gridRepo.Extent(dbc, s.ID)
				if err != nil {
					return fmt.Errorf("space extent: %w", err)
				}
				if needRows > rows || needCols > cols {
					return apierr.Conflict("space_too_small",
						"existing grids need at least %dx%d, requested %dx%d", needRows, needCols, rows, cols)
				}
			}
			s.Rows, s.Cols = rows, cols
		}
		if renamed && s.ImageKey == "" {
			staleThumb = s.ThumbnailKey
			ss.applyPlaceholder(dbc, s)
			if s.ThumbnailKey == staleThumb {
				staleThumb = ""
			}
		}
		if err := ss.spaceRepo.Save(dbc, s); err != nil {
			return fmt.Errorf("save space: %w", err)
		}
		space = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if staleThumb != "" {
		ss.images.Delete(dbctx.New(ctx), gcp.BucketCategorySpace, staleThumb)
	}
	ss.notify.SpaceChanged(userID, ActionUpdated, space)
	return space, nil
}

// DeleteSpace removes the space with its grids and items, then their stored
// images.
func (ss *spaceService) DeleteSpace(ctx context.Context, spaceID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}

	var (
		space *types.Space
		items []*types.Item
	)
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := ss.loadSpace(dbc, userID, spaceID)
		if err != nil {
			return err
		}
		deleted, err := ss.itemRepo.SoftDeleteBySpace(dbc, s.ID)
		if err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := ss.gridRepo.SoftDeleteBySpace(dbc, s.ID); err != nil {
			return fmt.Errorf("delete grids: %w", err)
		}
		if err := ss.spaceRepo.SoftDelete(dbc, userID, s.ID); err != nil {
			return fmt.Errorf("delete space: %w", err)
		}
		space, items = s, deleted
		return nil
	})
	if err != nil {
		return err
	}

	dbc := dbctx.New(ctx)
	ss.images.Delete(dbc, gcp.BucketCategorySpace, space.ImageKey, space.ThumbnailKey)
	for _, it := range items {
		ss.images.Delete(dbc, gcp.BucketCategoryItem, it.ImageKey, it.ThumbnailKey)
	}
	ss.log.Info("Space deleted", "space_id", space.ID, "items", len(items))
	ss.notify.SpaceChanged(userID, ActionDeleted, space)
	return nil
}

func (ss *spaceService) UploadSpaceImage(ctx context.Context, spaceID uuid.UUID, raw []byte) (*types.Space, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	space, err := ss.loadSpace(dbc, userID, spaceID)
	if err != nil {
		return nil, err
	}
	img, err := ss.images.StoreUpload(dbc, SpaceImageTarget(space.ID), raw)
	if err != nil {
		return nil, err
	}

	oldKeys := []string{space.ImageKey, space.ThumbnailKey}
	space.ImageKey, space.ImageURL = img.Key, img.URL
	space.ThumbnailKey, space.ThumbnailURL = img.ThumbnailKey, img.ThumbnailURL
	if err := ss.spaceRepo.Save(dbc, space); err != nil {
		ss.images.Delete(dbc, gcp.BucketCategorySpace, img.Key, img.ThumbnailKey)
		return nil, fmt.Errorf("save space image: %w", err)
	}
	ss.images.Delete(dbc, gcp.BucketCategorySpace, oldKeys...)
	ss.notify.SpaceChanged(userID, ActionUploaded, space)
	return space, nil
}

func (ss *spaceService) loadSpace(dbc dbctx.Context, userID, spaceID uuid.UUID) (*types.Space, error) {
	space, err := ss.spaceRepo.GetByID(dbc, userID, spaceID)
	if err != nil {
		return nil, fmt.Errorf("load space: %w", err)
	}
	if space == nil {
		return nil, apierr.NotFound("space_not_found", "space %s not found", spaceID)
	}
	return space, nil
}

// applyPlaceholder sets an initials tile as the thumbnail. Failures leave the
// space without a thumbnail.
func (ss *spaceService) applyPlaceholder(dbc dbctx.Context, space *types.Space) {
	img, err := ss.images.StorePlaceholder(dbc, SpaceImageTarget(space.ID), space.Name)
	if err != nil {
		ss.log.Warn("Space placeholder failed (ignored)", "space_id", space.ID, "error", err)
		return
	}
	space.ThumbnailKey, space.ThumbnailURL = img.ThumbnailKey, img.ThumbnailURL
}

// spaceDimension applies def to a zero value and bounds the result.
func spaceDimension(field string, v, def int) (int, error) {
	if v == 0 && def > 0 {
		v = def
	}
	if v < 1 || v > types.MaxSpaceDim {
		return 0, apierr.BadRequest("invalid_"+field, "%s must be between 1 and %d", field, types.MaxSpaceDim)
	}
	return v, nil
}
