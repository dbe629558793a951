package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// UserTokenRepo stores issued access/refresh pairs. A row lives until its
// refresh token is rotated, the user logs out, or it expires.
type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error)
	FullDeleteByTokens(dbc dbctx.Context, userTokens []*types.UserToken) error
	FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	FullDeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := dbc.DB(r.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

// GetByUserIDs returns the newest sessions first.
func (r *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	return dbctx.FindIn[types.UserToken](dbc, r.db, "user_id", userIDs, "expires_at DESC")
}

func (r *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error) {
	return dbctx.FindIn[types.UserToken](dbc, r.db, "access_token", accessTokens, "")
}

func (r *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error) {
	return dbctx.FindIn[types.UserToken](dbc, r.db, "refresh_token", refreshTokens, "")
}

func (r *userTokenRepo) FullDeleteByTokens(dbc dbctx.Context, userTokens []*types.UserToken) error {
	ids := make([]uuid.UUID, 0, len(userTokens))
	for _, t := range userTokens {
		if t != nil {
			ids = append(ids, t.ID)
		}
	}
	return r.hardDelete(dbc, "id", ids)
}

func (r *userTokenRepo) FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	return r.hardDelete(dbc, "user_id", userIDs)
}

func (r *userTokenRepo) hardDelete(dbc dbctx.Context, column string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Unscoped().Where(column+" IN ?", ids).Delete(&types.UserToken{}).Error
}

// FullDeleteExpired purges sessions whose refresh window closed before the
// cutoff and reports how many went.
func (r *userTokenRepo) FullDeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.DB(r.db).Unscoped().Where("expires_at < ?", before).Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}
