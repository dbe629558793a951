package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/normalization"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const (
	maxTags       = 32
	maxNoteLength = 500
)

type ItemQuery struct {
	SpaceID  *uuid.UUID
	GridID   *uuid.UUID
	Unplaced bool
	Category string
}

type ItemInput struct {
	SpaceID      uuid.UUID
	GridID       *uuid.UUID
	Name         string
	Description  string
	Category     string
	Tags         []string
	Quantity     *int
	ReminderAt   *time.Time
	ReminderNote string
}

// ItemPatch updates only the non-nil fields. ClearGrid and ClearReminder
// unset the grid and reminder; a new SpaceID without a GridID drops the
// placement.
type ItemPatch struct {
	SpaceID       *uuid.UUID
	GridID        *uuid.UUID
	ClearGrid     bool
	Name          *string
	Description   *string
	Category      *string
	Tags          *[]string
	Quantity      *int
	ReminderAt    *time.Time
	ReminderNote  *string
	ClearReminder bool
}

type ItemService interface {
	ListItems(ctx context.Context, q ItemQuery) ([]*types.Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*types.Item, error)
	CreateItem(ctx context.Context, in ItemInput) (*types.Item, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, patch ItemPatch) (*types.Item, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	UploadItemImage(ctx context.Context, itemID uuid.UUID, raw []byte) (*types.Item, error)
}

type itemService struct {
	db        *gorm.DB
	log       *logger.Logger
	spaceRepo repos.SpaceRepo
	gridRepo  repos.GridRepo
	itemRepo  repos.ItemRepo
	images    ImageService
	notify    InventoryNotifier
}

func NewItemService(
	db *gorm.DB,
	log *logger.Logger,
	spaceRepo repos.SpaceRepo,
	gridRepo repos.GridRepo,
	itemRepo repos.ItemRepo,
	images ImageService,
	notify InventoryNotifier,
) ItemService {
	return &itemService{
		db:        db,
		log:       log.With("service", "ItemService"),
		spaceRepo: spaceRepo,
		gridRepo:  gridRepo,
		itemRepo:  itemRepo,
		images:    images,
		notify:    notify,
	}
}

func (is *itemService) ListItems(ctx context.Context, q ItemQuery) ([]*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if q.SpaceID != nil {
		if err := is.ensureSpace(dbc, userID, *q.SpaceID); err != nil {
			return nil, err
		}
	}
	if q.GridID != nil && !q.Unplaced {
		grid, err := is.gridRepo.GetByID(dbc, userID, *q.GridID)
		if err != nil {
			return nil, fmt.Errorf("load grid: %w", err)
		}
		if grid == nil {
			return nil, apierr.NotFound("grid_not_found", "grid %s not found", *q.GridID)
		}
	}
	items, err := is.itemRepo.List(dbc, userID, repos.ItemFilter{
		SpaceID:  q.SpaceID,
		GridID:   q.GridID,
		Unplaced: q.Unplaced,
		Category: q.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (is *itemService) GetItem(ctx context.Context, itemID uuid.UUID) (*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return is.loadItem(dbctx.New(ctx), userID, itemID)
}

func (is *itemService) CreateItem(ctx context.Context, in ItemInput) (*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.SpaceID == uuid.Nil {
		return nil, apierr.BadRequest("invalid_space_id", "space_id is required")
	}
	item := &types.Item{
		ID:         uuid.New(),
		UserID:     userID,
		SpaceID:    in.SpaceID,
		GridID:     in.GridID,
		Category:   normalization.CollapseWhitespace(in.Category),
		Quantity:   1,
		ReminderAt: utcPtr(in.ReminderAt),
	}
	if item.Name, err = cleanName("name", in.Name); err != nil {
		return nil, err
	}
	if item.Description, err = cleanDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Quantity != nil {
		if item.Quantity, err = cleanQuantity(*in.Quantity); err != nil {
			return nil, err
		}
	}
	if err := setTags(item, in.Tags); err != nil {
		return nil, err
	}
	if item.ReminderNote, err = cleanNote(in.ReminderNote); err != nil {
		return nil, err
	}

	dbc := dbctx.New(ctx)
	err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbc.WithTx(tx)
		if err := is.ensureSpace(txc, userID, item.SpaceID); err != nil {
			return err
		}
		if err := is.checkGrid(txc, userID, item); err != nil {
			return err
		}
		is.applyPlaceholder(txc, item)
		if _, err := is.itemRepo.Create(txc, []*types.Item{item}); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return nil
	})
	if err != nil {
		is.images.Delete(dbc, gcp.BucketCategoryItem, item.ThumbnailKey)
		return nil, err
	}
	is.notify.ItemChanged(userID, ActionCreated, item)
	return item, nil
}

func (is *itemService) UpdateItem(ctx context.Context, itemID uuid.UUID, patch ItemPatch) (*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var (
		item       *types.Item
		staleThumb string
	)
	err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		it, err := is.loadItem(dbc, userID, itemID)
		if err != nil {
			return err
		}
		renamed := false
		if patch.Name != nil {
			name, err := cleanName("name", *patch.Name)
			if err != nil {
				return err
			}
			renamed = name != it.Name
			it.Name = name
		}
		if patch.Description != nil {
			if it.Description, err = cleanDescription(*patch.Description); err != nil {
				return err
			}
		}
		if patch.Category != nil {
			it.Category = normalization.CollapseWhitespace(*patch.Category)
		}
		if patch.Tags != nil {
			if err := setTags(it, *patch.Tags); err != nil {
				return err
			}
		}
		if patch.Quantity != nil {
			if it.Quantity, err = cleanQuantity(*patch.Quantity); err != nil {
				return err
			}
		}

		placementChanged := false
		if patch.SpaceID != nil && *patch.SpaceID != it.SpaceID {
			if err := is.ensureSpace(dbc, userID, *patch.SpaceID); err != nil {
				return err
			}
			it.SpaceID = *patch.SpaceID
			it.GridID = nil
			placementChanged = true
		}
		switch {
		case patch.ClearGrid:
			it.GridID = nil
		case patch.GridID != nil:
			gid := *patch.GridID
			it.GridID = &gid
			placementChanged = true
		}
		if placementChanged {
			if err := is.checkGrid(dbc, userID, it); err != nil {
				return err
			}
		}

		switch {
		case patch.ClearReminder:
			it.ReminderAt = nil
			it.ReminderNote = ""
			it.ReminderSentAt = nil
		case patch.ReminderAt != nil:
			next := patch.ReminderAt.UTC()
			if it.ReminderAt == nil || !it.ReminderAt.Equal(next) {
				it.ReminderSentAt = nil
			}
			it.ReminderAt = &next
		}
		if patch.ReminderNote != nil && !patch.ClearReminder {
			if it.ReminderNote, err = cleanNote(*patch.ReminderNote); err != nil {
				return err
			}
		}

		if renamed && it.ImageKey == "" {
			staleThumb = it.ThumbnailKey
			is.applyPlaceholder(dbc, it)
			if it.ThumbnailKey == staleThumb {
				staleThumb = ""
			}
		}
		if err := is.itemRepo.Save(dbc, it); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	if staleThumb != "" {
		is.images.Delete(dbctx.New(ctx), gcp.BucketCategoryItem, staleThumb)
	}
	is.notify.ItemChanged(userID, ActionUpdated, item)
	return item, nil
}

func (is *itemService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.New(ctx)
	item, err := is.loadItem(dbc, userID, itemID)
	if err != nil {
		return err
	}
	if err := is.itemRepo.SoftDelete(dbc, userID, item.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	is.images.Delete(dbc, gcp.BucketCategoryItem, item.ImageKey, item.ThumbnailKey)
	is.notify.ItemChanged(userID, ActionDeleted, item)
	return nil
}

func (is *itemService) UploadItemImage(ctx context.Context, itemID uuid.UUID, raw []byte) (*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	item, err := is.loadItem(dbc, userID, itemID)
	if err != nil {
		return nil, err
	}
	img, err := is.images.StoreUpload(dbc, ItemImageTarget(item.ID), raw)
	if err != nil {
		return nil, err
	}

	oldKeys := []string{item.ImageKey, item.ThumbnailKey}
	item.ImageKey, item.ImageURL = img.Key, img.URL
	item.ThumbnailKey, item.ThumbnailURL = img.ThumbnailKey, img.ThumbnailURL
	if err := is.itemRepo.Save(dbc, item); err != nil {
		is.images.Delete(dbc, gcp.BucketCategoryItem, img.Key, img.ThumbnailKey)
		return nil, fmt.Errorf("save item image: %w", err)
	}
	is.images.Delete(dbc, gcp.BucketCategoryItem, oldKeys...)
	is.notify.ItemChanged(userID, ActionUploaded, item)
	return item, nil
}

func (is *itemService) loadItem(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.Item, error) {
	item, err := is.itemRepo.GetByID(dbc, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if item == nil {
		return nil, apierr.NotFound("item_not_found", "item %s not found", itemID)
	}
	return item, nil
}

func (is *itemService) ensureSpace(dbc dbctx.Context, userID, spaceID uuid.UUID) error {
	space, err := is.spaceRepo.GetByID(dbc, userID, spaceID)
	if err != nil {
		return fmt.Errorf("load space: %w", err)
	}
	if space == nil {
		return apierr.NotFound("space_not_found", "space %s not found", spaceID)
	}
	return nil
}

// checkGrid requires a set GridID to name one of the user's grids inside the
// item's space.
func (is *itemService) checkGrid(dbc dbctx.Context, userID uuid.UUID, item *types.Item) error {
	if item.GridID == nil {
		return nil
	}
	grid, err := is.gridRepo.GetByID(dbc, userID, *item.GridID)
	if err != nil {
		return fmt.Errorf("load grid: %w", err)
	}
	if grid == nil {
		return apierr.NotFound("grid_not_found", "grid %s not found", *item.GridID)
	}
	if grid.SpaceID != item.SpaceID {
		return apierr.BadRequest("grid_space_mismatch", "grid %s belongs to another space", grid.ID)
	}
	return nil
}

func (is *itemService) applyPlaceholder(dbc dbctx.Context, item *types.Item) {
	img, err := is.images.StorePlaceholder(dbc, ItemImageTarget(item.ID), item.Name)
	if err != nil {
		is.log.Warn("Item placeholder failed (ignored)", "item_id", item.ID, "error", err)
		return
	}
	item.ThumbnailKey, item.ThumbnailURL = img.ThumbnailKey, img.ThumbnailURL
}

func setTags(item *types.Item, raw []string) error {
	tags := normalization.NormalizeTags(raw)
	if len(tags) > maxTags {
		return apierr.BadRequest("invalid_tags", "at most %d tags are allowed", maxTags)
	}
	item.SetTags(tags)
	return nil
}

func cleanQuantity(q int) (int, error) {
	if q < 0 {
		return 0, apierr.BadRequest("invalid_quantity", "quantity must not be negative")
	}
	return q, nil
}

func cleanNote(raw string) (string, error) {
	note := strings.TrimSpace(raw)
	if len([]rune(note)) > maxNoteLength {
		return "", apierr.BadRequest("invalid_reminder_note", "reminder note must be at most %d characters", maxNoteLength)
	}
	return note, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
