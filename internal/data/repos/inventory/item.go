package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// ItemFilter narrows List. Unplaced selects items without a grid and wins
// over GridID.
type ItemFilter struct {
	SpaceID  *uuid.UUID
	GridID   *uuid.UUID
	Unplaced bool
	Category string
}

type ItemSearch struct {
	Text     string
	SpaceID  *uuid.UUID
	Category string
	Limit    int
}

type ItemRepo interface {
	Create(dbc dbctx.Context, items []*types.Item) ([]*types.Item, error)
	GetByID(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.Item, error)
	List(dbc dbctx.Context, userID uuid.UUID, filter ItemFilter) ([]*types.Item, error)
	Search(dbc dbctx.Context, userID uuid.UUID, q ItemSearch) ([]*types.Item, error)
	ListUpcomingReminders(dbc dbctx.Context, userID uuid.UUID, from, until time.Time) ([]*types.Item, error)
	ListDueReminders(dbc dbctx.Context, now time.Time, limit int) ([]*types.Item, error)
	ClaimReminder(dbc dbctx.Context, itemID uuid.UUID, at time.Time) (bool, error)
	Save(dbc dbctx.Context, item *types.Item) error
	UnlinkGrid(dbc dbctx.Context, gridID uuid.UUID) (int64, error)
	SoftDelete(dbc dbctx.Context, userID, itemID uuid.UUID) error
	SoftDeleteBySpace(dbc dbctx.Context, spaceID uuid.UUID) ([]*types.Item, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (ir *itemRepo) Create(dbc dbctx.Context, items []*types.Item) ([]*types.Item, error) {
	if len(items) == 0 {
		return []*types.Item{}, nil
	}
	if err := dbc.DB(ir.db).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (ir *itemRepo) GetByID(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.Item, error) {
	var item types.Item
	err := dbc.DB(ir.db).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (ir *itemRepo) List(dbc dbctx.Context, userID uuid.UUID, filter ItemFilter) ([]*types.Item, error) {
	var results []*types.Item
	q := dbc.DB(ir.db).Where("user_id = ?", userID)
	if filter.SpaceID != nil {
		q = q.Where("space_id = ?", *filter.SpaceID)
	}
	switch {
	case filter.Unplaced:
		q = q.Where("grid_id IS NULL")
	case filter.GridID != nil:
		q = q.Where("grid_id = ?", *filter.GridID)
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	if err := q.Order("name ASC").Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Search matches q.Text as a case-insensitive substring of name,
// description, category or any tag.
func (ir *itemRepo) Search(dbc dbctx.Context, userID uuid.UUID, s ItemSearch) ([]*types.Item, error) {
	var results []*types.Item
	q := dbc.DB(ir.db).Where("user_id = ?", userID)
	if text := strings.TrimSpace(s.Text); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		q = q.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}
	if s.SpaceID != nil {
		q = q.Where("space_id = ?", *s.SpaceID)
	}
	if c := strings.TrimSpace(s.Category); c != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	if s.Limit > 0 {
		q = q.Limit(s.Limit)
	}
	if err := q.Order("name ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListUpcomingReminders returns reminders due before until that are either
// still pending or not yet in the past.
func (ir *itemRepo) ListUpcomingReminders(dbc dbctx.Context, userID uuid.UUID, from, until time.Time) ([]*types.Item, error) {
	var results []*types.Item
	if err := dbc.DB(ir.db).
		Where("user_id = ?", userID).
		Where("reminder_at IS NOT NULL AND reminder_at <= ?", until).
		Where("reminder_sent_at IS NULL OR reminder_at >= ?", from).
		Order("reminder_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListDueReminders locks the returned rows for the caller's transaction;
// rows locked by another worker are skipped.
func (ir *itemRepo) ListDueReminders(dbc dbctx.Context, now time.Time, limit int) ([]*types.Item, error) {
	var results []*types.Item
	q := dbc.DB(ir.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("reminder_at IS NOT NULL AND reminder_at <= ?", now).
		Where("reminder_sent_at IS NULL").
		Order("reminder_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ClaimReminder stamps reminder_sent_at unless another worker already did,
// and reports whether this call won.
func (ir *itemRepo) ClaimReminder(dbc dbctx.Context, itemID uuid.UUID, at time.Time) (bool, error) {
	res := dbc.DB(ir.db).
		Model(&types.Item{}).
		Where("id = ? AND reminder_sent_at IS NULL", itemID).
		Update("reminder_sent_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (ir *itemRepo) Save(dbc dbctx.Context, item *types.Item) error {
	return dbc.DB(ir.db).Save(item).Error
}

func (ir *itemRepo) UnlinkGrid(dbc dbctx.Context, gridID uuid.UUID) (int64, error) {
	res := dbc.DB(ir.db).
		Model(&types.Item{}).
		Where("grid_id = ?", gridID).
		Update("grid_id", nil)
	return res.RowsAffected, res.Error
}

func (ir *itemRepo) SoftDelete(dbc dbctx.Context, userID, itemID uuid.UUID) error {
	return dbc.DB(ir.db).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&types.Item{}).Error
}

// SoftDeleteBySpace deletes and returns the space's items so callers can
// clean up their stored images.
func (ir *itemRepo) SoftDeleteBySpace(dbc dbctx.Context, spaceID uuid.UUID) ([]*types.Item, error) {
	var items []*types.Item
	if err := dbc.DB(ir.db).Where("space_id = ?", spaceID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	if err := dbc.DB(ir.db).Where("space_id = ?", spaceID).Delete(&types.Item{}).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
