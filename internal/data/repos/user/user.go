package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error
	UpdateAvatarURL(dbc dbctx.Context, userID uuid.UUID, avatarURL string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	return dbctx.FindIn[types.User](dbc, r.db, "id", userIDs, "")
}

// GetByEmails expects normalized (trimmed, lowercased) addresses.
func (r *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	return dbctx.FindIn[types.User](dbc, r.db, "email", userEmails, "")
}

func (r *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.User{}).Where("email = ?", userEmail).Count(&count).Error
	return count > 0, err
}

func (r *userRepo) UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error {
	return r.update(dbc, userID, map[string]any{"first_name": firstName, "last_name": lastName})
}

func (r *userRepo) UpdateAvatarURL(dbc dbctx.Context, userID uuid.UUID, avatarURL string) error {
	return r.update(dbc, userID, map[string]any{"avatar_url": avatarURL})
}

func (r *userRepo) update(dbc dbctx.Context, userID uuid.UUID, cols map[string]any) error {
	return dbc.DB(r.db).Model(&types.User{}).Where("id = ?", userID).Updates(cols).Error
}
