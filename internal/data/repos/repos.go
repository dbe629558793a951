package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos/auth"
	"github.com/yungbote/spacekeeper-backend/internal/data/repos/inventory"
	"github.com/yungbote/spacekeeper-backend/internal/data/repos/user"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type SpaceRepo = inventory.SpaceRepo
type GridRepo = inventory.GridRepo
type ItemRepo = inventory.ItemRepo

type ItemFilter = inventory.ItemFilter
type ItemSearch = inventory.ItemSearch

// Repos bundles every repository built on one database handle.
type Repos struct {
	User      UserRepo
	UserToken UserTokenRepo
	Space     SpaceRepo
	Grid      GridRepo
	Item      ItemRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:      user.NewUserRepo(db, log),
		UserToken: auth.NewUserTokenRepo(db, log),
		Space:     inventory.NewSpaceRepo(db, log),
		Grid:      inventory.NewGridRepo(db, log),
		Item:      inventory.NewItemRepo(db, log),
	}
}
