package inventory

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item is a catalogued object inside a space, optionally placed in one of
// the space's grids.
type Item struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	SpaceID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"space_id"`
	GridID      *uuid.UUID     `gorm:"type:uuid;index" json:"grid_id,omitempty"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Category    string         `gorm:"index;column:category" json:"category"`
	Tags        datatypes.JSON `gorm:"column:tags" json:"tags"`
	Quantity    int            `gorm:"not null;column:quantity" json:"quantity"`

	ImageKey     string `gorm:"column:image_key" json:"-"`
	ImageURL     string `gorm:"column:image_url" json:"image_url"`
	ThumbnailKey string `gorm:"column:thumbnail_key" json:"-"`
	ThumbnailURL string `gorm:"column:thumbnail_url" json:"thumbnail_url"`

	ReminderAt     *time.Time `gorm:"index;column:reminder_at" json:"reminder_at,omitempty"`
	ReminderNote   string     `gorm:"column:reminder_note" json:"reminder_note"`
	ReminderSentAt *time.Time `gorm:"column:reminder_sent_at" json:"reminder_sent_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string { return "item" }

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if len(i.Tags) == 0 {
		i.Tags = datatypes.JSON([]byte("[]"))
	}
	return nil
}

// TagList decodes Tags; malformed JSON yields no tags.
func (i *Item) TagList() []string {
	if i == nil || len(i.Tags) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(i.Tags, &out); err != nil {
		return nil
	}
	return out
}

func (i *Item) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	i.Tags = datatypes.JSON(raw)
}
