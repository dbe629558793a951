package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Grid is a positioned cell block within a space's layout. It covers rows
// [Row, Row+RowSpan) and columns [Col, Col+ColSpan).
type Grid struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	SpaceID uuid.UUID `gorm:"type:uuid;index;not null" json:"space_id"`
	Name    string    `gorm:"not null;column:name" json:"name"`
	Row     int       `gorm:"not null;column:grid_row" json:"row"`
	Col     int       `gorm:"not null;column:grid_col" json:"col"`
	RowSpan int       `gorm:"not null;column:row_span" json:"row_span"`
	ColSpan int       `gorm:"not null;column:col_span" json:"col_span"`
	Color   string    `gorm:"column:color" json:"color"`

	ItemCount int64 `gorm:"-" json:"item_count"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Grid) TableName() string { return "grid" }

func (g *Grid) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// FitsIn reports whether the grid lies entirely inside a rows x cols layout.
func (g *Grid) FitsIn(rows, cols int) bool {
	if g.Row < 0 || g.Col < 0 || g.RowSpan < 1 || g.ColSpan < 1 {
		return false
	}
	return g.Row+g.RowSpan <= rows && g.Col+g.ColSpan <= cols
}

// Overlaps reports whether two grids share at least one cell.
func (g *Grid) Overlaps(o *Grid) bool {
	if g == nil || o == nil {
		return false
	}
	return g.Row < o.Row+o.RowSpan && o.Row < g.Row+g.RowSpan &&
		g.Col < o.Col+o.ColSpan && o.Col < g.Col+g.ColSpan
}

// Covers reports whether the cell (row, col) belongs to the grid.
func (g *Grid) Covers(row, col int) bool {
	return row >= g.Row && row < g.Row+g.RowSpan && col >= g.Col && col < g.Col+g.ColSpan
}
