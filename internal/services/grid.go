package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// GridInput positions a new grid. Zero spans default to 1 and an empty name
// becomes "Grid <row>-<col>" (1-based).
type GridInput struct {
	Name    string
	Row     int
	Col     int
	RowSpan int
	ColSpan int
	Color   string
}

type GridPatch struct {
	Name    *string
	Row     *int
	Col     *int
	RowSpan *int
	ColSpan *int
	Color   *string
}

type GridService interface {
	ListGrids(ctx context.Context, spaceID uuid.UUID) ([]*types.Grid, error)
	CreateGrid(ctx context.Context, spaceID uuid.UUID, in GridInput) (*types.Grid, error)
	UpdateGrid(ctx context.Context, gridID uuid.UUID, patch GridPatch) (*types.Grid, error)
	DeleteGrid(ctx context.Context, gridID uuid.UUID) error
}

type gridService struct {
	db        *gorm.DB
	log       *logger.Logger
	spaceRepo repos.SpaceRepo
	gridRepo  repos.GridRepo
	itemRepo  repos.ItemRepo
	notify    InventoryNotifier
}

func NewGridService(
	db *gorm.DB,
	log *logger.Logger,
	spaceRepo repos.SpaceRepo,
	gridRepo repos.GridRepo,
	itemRepo repos.ItemRepo,
	notify InventoryNotifier,
) GridService {
	return &gridService{
		db:        db,
		log:       log.With("service", "GridService"),
		spaceRepo: spaceRepo,
		gridRepo:  gridRepo,
		itemRepo:  itemRepo,
		notify:    notify,
	}
}

func (gs *gridService) ListGrids(ctx context.Context, spaceID uuid.UUID) ([]*types.Grid, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if _, err := gs.loadSpace(dbc, userID, spaceID); err != nil {
		return nil, err
	}
	grids, err := gs.gridRepo.ListBySpace(dbc, userID, spaceID)
	if err != nil {
		return nil, fmt.Errorf("list grids: %w", err)
	}
	return grids, nil
}

func (gs *gridService) CreateGrid(ctx context.Context, spaceID uuid.UUID, in GridInput) (*types.Grid, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	grid := &types.Grid{
		ID:      uuid.New(),
		UserID:  userID,
		SpaceID: spaceID,
		Row:     in.Row,
		Col:     in.Col,
		RowSpan: defaultSpan(in.RowSpan),
		ColSpan: defaultSpan(in.ColSpan),
	}
	if strings.TrimSpace(in.Name) == "" {
		grid.Name = fmt.Sprintf("Grid %d-%d", in.Row+1, in.Col+1)
	} else if grid.Name, err = cleanName("name", in.Name); err != nil {
		return nil, err
	}
	if grid.Color, err = cleanColor(in.Color); err != nil {
		return nil, err
	}

	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		space, err := gs.loadSpace(dbc, userID, spaceID)
		if err != nil {
			return err
		}
		if err := gs.checkPlacement(dbc, space, grid); err != nil {
			return err
		}
		if _, err := gs.gridRepo.Create(dbc, []*types.Grid{grid}); err != nil {
			return fmt.Errorf("create grid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	gs.notify.GridChanged(userID, ActionCreated, grid)
	return grid, nil
}

func (gs *gridService) UpdateGrid(ctx context.Context, gridID uuid.UUID, patch GridPatch) (*types.Grid, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var grid *types.Grid
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		g, err := gs.loadGrid(dbc, userID, gridID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			if g.Name, err = cleanName("name", *patch.Name); err != nil {
				return err
			}
		}
		if patch.Color != nil {
			if g.Color, err = cleanColor(*patch.Color); err != nil {
				return err
			}
		}
		moved := patch.Row != nil || patch.Col != nil || patch.RowSpan != nil || patch.ColSpan != nil
		if patch.Row != nil {
			g.Row = *patch.Row
		}
		if patch.Col != nil {
			g.Col = *patch.Col
		}
		if patch.RowSpan != nil {
			g.RowSpan = *patch.RowSpan
		}
		if patch.ColSpan != nil {
			g.ColSpan = *patch.ColSpan
		}
		if moved {
			space, err := gs.loadSpace(dbc, userID, g.SpaceID)
			if err != nil {
				return err
			}
			if err := gs.checkPlacement(dbc, space, g); err != nil {
				return err
			}
		}
		if err := gs.gridRepo.Save(dbc, g); err != nil {
			return fmt.Errorf("save grid: %w", err)
		}
		grid = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	gs.notify.GridChanged(userID, ActionUpdated, grid)
	return grid, nil
}

// DeleteGrid removes the grid; its items stay in the space, unplaced.
func (gs *gridService) DeleteGrid(ctx context.Context, gridID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}

	var grid *types.Grid
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		g, err := gs.loadGrid(dbc, userID, gridID)
		if err != nil {
			return err
		}
		n, err := gs.itemRepo.UnlinkGrid(dbc, g.ID)
		if err != nil {
			return fmt.Errorf("unlink items: %w", err)
		}
		if err := gs.gridRepo.SoftDelete(dbc, userID, g.ID); err != nil {
			return fmt.Errorf("delete grid: %w", err)
		}
		gs.log.Debug("Grid deleted", "grid_id", g.ID, "unlinked_items", n)
		grid = g
		return nil
	})
	if err != nil {
		return err
	}
	gs.notify.GridChanged(userID, ActionDeleted, grid)
	return nil
}

// checkPlacement enforces that g lies inside the space and shares no cell
// with another grid of it.
func (gs *gridService) checkPlacement(dbc dbctx.Context, space *types.Space, g *types.Grid) error {
	if g.Row < 0 || g.Col < 0 {
		return apierr.BadRequest("invalid_position", "row and col must not be negative")
	}
	if g.RowSpan < 1 || g.ColSpan < 1 {
		return apierr.BadRequest("invalid_span", "row_span and col_span must be at least 1")
	}
	if !g.FitsIn(space.Rows, space.Cols) {
		return apierr.BadRequest("out_of_bounds",
			"grid at (%d,%d) spanning %dx%d does not fit a %dx%d space",
			g.Row, g.Col, g.RowSpan, g.ColSpan, space.Rows, space.Cols)
	}
	overlapping, err := gs.gridRepo.FindOverlapping(dbc, g)
	if err != nil {
		return fmt.Errorf("find overlapping grids: %w", err)
	}
	if len(overlapping) > 0 {
		return apierr.Conflict("grid_overlap", "grid overlaps %q", overlapping[0].Name)
	}
	return nil
}

func (gs *gridService) loadSpace(dbc dbctx.Context, userID, spaceID uuid.UUID) (*types.Space, error) {
	space, err := gs.spaceRepo.GetByID(dbc, userID, spaceID)
	if err != nil {
		return nil, fmt.Errorf("load space: %w", err)
	}
	if space == nil {
		return nil, apierr.NotFound("space_not_found", "space %s not found", spaceID)
	}
	return space, nil
}

func (gs *gridService) loadGrid(dbc dbctx.Context, userID, gridID uuid.UUID) (*types.Grid, error) {
	grid, err := gs.gridRepo.GetByID(dbc, userID, gridID)
	if err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}
	if grid == nil {
		return nil, apierr.NotFound("grid_not_found", "grid %s not found", gridID)
	}
	return grid, nil
}

func defaultSpan(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

// cleanColor accepts "" or #RRGGBB and lowercases the hex digits.
func cleanColor(raw string) (string, error) {
	c := strings.TrimSpace(raw)
	if c == "" {
		return "", nil
	}
	if !hexColorPattern.MatchString(c) {
		return "", apierr.BadRequest("invalid_color", "color must look like #RRGGBB")
	}
	return strings.ToLower(c), nil
}
