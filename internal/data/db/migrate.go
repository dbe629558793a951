package db

import (
	"fmt"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureIndexes adds the composite indexes the list and reminder queries
// rely on. Statements are portable across postgres and sqlite.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_space_user_name", `CREATE INDEX IF NOT EXISTS idx_space_user_name ON space(user_id, name);`},
		{"idx_grid_space_position", `CREATE INDEX IF NOT EXISTS idx_grid_space_position ON grid(space_id, grid_row, grid_col);`},
		{"idx_item_user_space", `CREATE INDEX IF NOT EXISTS idx_item_user_space ON item(user_id, space_id);`},
		{"idx_item_reminder_pending", `CREATE INDEX IF NOT EXISTS idx_item_reminder_pending ON item(reminder_at, reminder_sent_at);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
