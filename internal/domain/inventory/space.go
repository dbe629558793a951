package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultSpaceRows = 4
	DefaultSpaceCols = 4
	MaxSpaceDim      = 64
)

// Space is a top-level storage location owned by a user. Rows and Cols size
// the layout that its grids are positioned in.
type Space struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name         string    `gorm:"not null;column:name" json:"name"`
	Description  string    `gorm:"column:description" json:"description"`
	Rows         int       `gorm:"not null;column:row_count" json:"rows"`
	Cols         int       `gorm:"not null;column:col_count" json:"cols"`
	ImageKey     string    `gorm:"column:image_key" json:"-"`
	ImageURL     string    `gorm:"column:image_url" json:"image_url"`
	ThumbnailKey string    `gorm:"column:thumbnail_key" json:"-"`
	ThumbnailURL string    `gorm:"column:thumbnail_url" json:"thumbnail_url"`

	GridCount int64 `gorm:"-" json:"grid_count"`
	ItemCount int64 `gorm:"-" json:"item_count"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Space) TableName() string { return "space" }

func (s *Space) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
