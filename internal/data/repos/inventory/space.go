package inventory

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type SpaceRepo interface {
	Create(dbc dbctx.Context, spaces []*types.Space) ([]*types.Space, error)
	GetByID(dbc dbctx.Context, userID, spaceID uuid.UUID) (*types.Space, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Space, error)
	Save(dbc dbctx.Context, space *types.Space) error
	SoftDelete(dbc dbctx.Context, userID, spaceID uuid.UUID) error
}

type spaceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpaceRepo(db *gorm.DB, baseLog *logger.Logger) SpaceRepo {
	repoLog := baseLog.With("repo", "SpaceRepo")
	return &spaceRepo{db: db, log: repoLog}
}

func (sr *spaceRepo) Create(dbc dbctx.Context, spaces []*types.Space) ([]*types.Space, error) {
	if len(spaces) == 0 {
		return []*types.Space{}, nil
	}
	if err := dbc.DB(sr.db).Create(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

// GetByID returns nil, nil when the space does not exist or belongs to
// another user.
func (sr *spaceRepo) GetByID(dbc dbctx.Context, userID, spaceID uuid.UUID) (*types.Space, error) {
	var space types.Space
	err := dbc.DB(sr.db).
		Where("id = ? AND user_id = ?", spaceID, userID).
		First(&space).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := sr.fillCounts(dbc, []*types.Space{&space}); err != nil {
		return nil, err
	}
	return &space, nil
}

func (sr *spaceRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Space, error) {
	var results []*types.Space
	if err := dbc.DB(sr.db).
		Where("user_id = ?", userID).
		Order("name ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	if err := sr.fillCounts(dbc, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *spaceRepo) Save(dbc dbctx.Context, space *types.Space) error {
	return dbc.DB(sr.db).Save(space).Error
}

func (sr *spaceRepo) SoftDelete(dbc dbctx.Context, userID, spaceID uuid.UUID) error {
	return dbc.DB(sr.db).
		Where("id = ? AND user_id = ?", spaceID, userID).
		Delete(&types.Space{}).Error
}

type spaceCount struct {
	SpaceID uuid.UUID
	N       int64
}

func (sr *spaceRepo) fillCounts(dbc dbctx.Context, spaces []*types.Space) error {
	if len(spaces) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(spaces))
	for _, s := range spaces {
		ids = append(ids, s.ID)
	}

	var gridCounts []spaceCount
	if err := dbc.DB(sr.db).
		Model(&types.Grid{}).
		Select("space_id, COUNT(*) AS n").
		Where("space_id IN ?", ids).
		Group("space_id").
		Scan(&gridCounts).Error; err != nil {
		return err
	}
	var itemCounts []spaceCount
	if err := dbc.DB(sr.db).
		Model(&types.Item{}).
		Select("space_id, COUNT(*) AS n").
		Where("space_id IN ?", ids).
		Group("space_id").
		Scan(&itemCounts).Error; err != nil {
		return err
	}

	grids := make(map[uuid.UUID]int64, len(gridCounts))
	for _, c := range gridCounts {
		grids[c.SpaceID] = c.N
	}
	items := make(map[uuid.UUID]int64, len(itemCounts))
	for _, c := range itemCounts {
		items[c.SpaceID] = c.N
	}
	for _, s := range spaces {
		s.GridCount = grids[s.ID]
		s.ItemCount = items[s.ID]
	}
	return nil
}
