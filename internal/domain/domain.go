package domain

import (
	"github.com/yungbote/spacekeeper-backend/internal/domain/auth"
	"github.com/yungbote/spacekeeper-backend/internal/domain/inventory"
	"github.com/yungbote/spacekeeper-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type Space = inventory.Space
type Grid = inventory.Grid
type Item = inventory.Item

const (
	DefaultSpaceRows = inventory.DefaultSpaceRows
	DefaultSpaceCols = inventory.DefaultSpaceCols
	MaxSpaceDim      = inventory.MaxSpaceDim
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Space{},
		&Grid{},
		&Item{},
	}
}
