package inventory

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type GridRepo interface {
	Create(dbc dbctx.Context, grids []*types.Grid) ([]*types.Grid, error)
	GetByID(dbc dbctx.Context, userID, gridID uuid.UUID) (*types.Grid, error)
	ListBySpace(dbc dbctx.Context, userID, spaceID uuid.UUID) ([]*types.Grid, error)
	FindOverlapping(dbc dbctx.Context, candidate *types.Grid) ([]*types.Grid, error)
	Extent(dbc dbctx.Context, spaceID uuid.UUID) (rows int, cols int, err error)
	Save(dbc dbctx.Context, grid *types.Grid) error
	SoftDelete(dbc dbctx.Context, userID, gridID uuid.UUID) error
	SoftDeleteBySpace(dbc dbctx.Context, spaceID uuid.UUID) error
}

type gridRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGridRepo(db *gorm.DB, baseLog *logger.Logger) GridRepo {
	repoLog := baseLog.With("repo", "GridRepo")
	return &gridRepo{db: db, log: repoLog}
}

func (gr *gridRepo) Create(dbc dbctx.Context, grids []*types.Grid) ([]*types.Grid, error) {
	if len(grids) == 0 {
		return []*types.Grid{}, nil
	}
	if err := dbc.DB(gr.db).Create(&grids).Error; err != nil {
		return nil, err
	}
	return grids, nil
}

func (gr *gridRepo) GetByID(dbc dbctx.Context, userID, gridID uuid.UUID) (*types.Grid, error) {
	var grid types.Grid
	err := dbc.DB(gr.db).
		Where("id = ? AND user_id = ?", gridID, userID).
		First(&grid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := gr.fillCounts(dbc, []*types.Grid{&grid}); err != nil {
		return nil, err
	}
	return &grid, nil
}

// ListBySpace orders grids top-to-bottom, left-to-right.
func (gr *gridRepo) ListBySpace(dbc dbctx.Context, userID, spaceID uuid.UUID) ([]*types.Grid, error) {
	var results []*types.Grid
	if err := dbc.DB(gr.db).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Order("grid_row ASC").
		Order("grid_col ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	if err := gr.fillCounts(dbc, results); err != nil {
		return nil, err
	}
	return results, nil
}

// FindOverlapping returns grids in the candidate's space that share a cell
// with it, excluding the candidate itself.
func (gr *gridRepo) FindOverlapping(dbc dbctx.Context, candidate *types.Grid) ([]*types.Grid, error) {
	var results []*types.Grid
	q := dbc.DB(gr.db).
		Where("space_id = ?", candidate.SpaceID).
		Where("grid_row < ? AND ? < grid_row + row_span", candidate.Row+candidate.RowSpan, candidate.Row).
		Where("grid_col < ? AND ? < grid_col + col_span", candidate.Col+candidate.ColSpan, candidate.Col)
	if candidate.ID != uuid.Nil {
		q = q.Where("id <> ?", candidate.ID)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type extentRow struct {
	MaxRow int
	MaxCol int
}

// Extent returns the smallest rows x cols layout that still contains every
// grid of the space.
func (gr *gridRepo) Extent(dbc dbctx.Context, spaceID uuid.UUID) (int, int, error) {
	var ext extentRow
	if err := dbc.DB(gr.db).
		Model(&types.Grid{}).
		Select("COALESCE(MAX(grid_row + row_span), 0) AS max_row, COALESCE(MAX(grid_col + col_span), 0) AS max_col").
		Where("space_id = ?", spaceID).
		Scan(&ext).Error; err != nil {
		return 0, 0, err
	}
	return ext.MaxRow, ext.MaxCol, nil
}

func (gr *gridRepo) Save(dbc dbctx.Context, grid *types.Grid) error {
	return dbc.DB(gr.db).Save(grid).Error
}

func (gr *gridRepo) SoftDelete(dbc dbctx.Context, userID, gridID uuid.UUID) error {
	return dbc.DB(gr.db).
		Where("id = ? AND user_id = ?", gridID, userID).
		Delete(&types.Grid{}).Error
}

func (gr *gridRepo) SoftDeleteBySpace(dbc dbctx.Context, spaceID uuid.UUID) error {
	return dbc.DB(gr.db).
		Where("space_id = ?", spaceID).
		Delete(&types.Grid{}).Error
}

type gridCount struct {
	GridID uuid.UUID
	N      int64
}

func (gr *gridRepo) fillCounts(dbc dbctx.Context, grids []*types.Grid) error {
	if len(grids) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(grids))
	for _, g := range grids {
		ids = append(ids, g.ID)
	}
	var counts []gridCount
	if err := dbc.DB(gr.db).
		Model(&types.Item{}).
		Select("grid_id, COUNT(*) AS n").
		Where("grid_id IN ?", ids).
		Group("grid_id").
		Scan(&counts).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byID[c.GridID] = c.N
	}
	for _, g := range grids {
		g.ItemCount = byID[g.ID]
	}
	return nil
}
