package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type UserPatch struct {
	FirstName *string
	LastName  *string
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateMe(ctx context.Context, patch UserPatch) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	images   ImageService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, images ImageService) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		images:   images,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return us.loadUser(dbctx.New(ctx), userID)
}

// UpdateMe renames the caller and regenerates the initials avatar.
func (us *userService) UpdateMe(ctx context.Context, patch UserPatch) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var user *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := us.loadUser(dbc, userID)
		if err != nil {
			return err
		}
		first, last := u.FirstName, u.LastName
		if patch.FirstName != nil {
			if first, err = cleanName("first_name", *patch.FirstName); err != nil {
				return err
			}
		}
		if patch.LastName != nil {
			if last, err = cleanName("last_name", *patch.LastName); err != nil {
				return err
			}
		}
		if first == u.FirstName && last == u.LastName {
			user = u
			return nil
		}
		if err := us.userRepo.UpdateName(dbc, u.ID, first, last); err != nil {
			return fmt.Errorf("update name: %w", err)
		}
		u.FirstName, u.LastName = first, last

		if us.images != nil {
			img, err := us.images.StorePlaceholder(dbc, AvatarImageTarget(u.ID), first+" "+last)
			if err != nil {
				us.log.Warn("Avatar placeholder failed (ignored)", "user_id", u.ID, "error", err)
			} else if err := us.userRepo.UpdateAvatarURL(dbc, u.ID, img.ThumbnailURL); err != nil {
				return fmt.Errorf("update avatar: %w", err)
			} else {
				u.AvatarURL = img.ThumbnailURL
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (us *userService) loadUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("user_not_found", "user does not exist")
	}
	return found[0], nil
}
