package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/normalization"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const minPasswordLength = 8

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	images        ImageService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	images ImageService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		images:        images,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	user := &types.User{
		Email:     normalization.ParseInputString(in.Email),
		Password:  strings.TrimSpace(in.Password),
		FirstName: normalization.CollapseWhitespace(in.FirstName),
		LastName:  normalization.CollapseWhitespace(in.LastName),
	}
	if err := validateRegistration(user); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	user.ID = uuid.New()

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, user.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Conflict("email_taken", "email is already in use")
		}
		if as.images != nil {
			img, err := as.images.StorePlaceholder(dbc, AvatarImageTarget(user.ID), user.FirstName+" "+user.LastName)
			if err != nil {
				as.log.Warn("Avatar placeholder failed (ignored)", "user_id", user.ID, "error", err)
			} else {
				user.AvatarURL = img.ThumbnailURL
			}
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

func validateRegistration(user *types.User) error {
	if user.Email == "" {
		return apierr.BadRequest("invalid_email", "an email is required to register")
	}
	if addr, err := mail.ParseAddress(user.Email); err != nil || addr.Address != user.Email {
		return apierr.BadRequest("invalid_email", "%q is not a valid email address", user.Email)
	}
	if len(user.Password) < minPasswordLength {
		return apierr.BadRequest("weak_password", "password must be at least %d characters", minPasswordLength)
	}
	if user.FirstName == "" || user.LastName == "" {
		return apierr.BadRequest("invalid_name", "first and last name are required")
	}
	return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalization.ParseInputString(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, apierr.BadRequest("invalid_request", "email and password are required")
	}

	dbc := dbctx.New(ctx)
	users, err := as.userRepo.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.Unauthorized("invalid_credentials", "invalid email or password")
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid_credentials", "invalid email or password")
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbc.WithTx(tx)
		if n, err := as.userTokenRepo.FullDeleteExpired(txc, time.Now().UTC()); err != nil {
			return fmt.Errorf("prune expired tokens: %w", err)
		} else if n > 0 {
			as.log.Debug("Pruned expired user tokens", "count", n)
		}
		p, err := as.issueTokens(txc, user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// RefreshUser rotates a refresh token: the presented token is consumed and a
// new pair is issued. Expired tokens are deleted and rejected.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			refreshToken = rd.RefreshToken
		}
	}
	if refreshToken == "" {
		return nil, apierr.BadRequest("invalid_request", "refresh_token is required")
	}

	dbc := dbctx.New(ctx)
	found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if len(found) == 0 {
		return nil, apierr.Unauthorized("invalid_refresh_token", "refresh token not recognised")
	}
	existing := found[0]
	if existing.ExpiresAt.Before(time.Now()) {
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, []*types.UserToken{existing}); err != nil {
			as.log.Warn("Failed to delete expired refresh token", "error", err)
		}
		return nil, apierr.Unauthorized("refresh_expired", "refresh token expired")
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbc.WithTx(tx)
		users, err := as.userRepo.GetByIDs(txc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return apierr.Unauthorized("invalid_refresh_token", "no user for refresh token")
		}
		if err := as.userTokenRepo.FullDeleteByTokens(txc, []*types.UserToken{existing}); err != nil {
			return fmt.Errorf("delete old refresh token: %w", err)
		}
		p, err := as.issueTokens(txc, users[0])
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized("unauthorized", "no session in request")
	}
	dbc := dbctx.New(ctx)
	found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
	if err != nil {
		return fmt.Errorf("load user token: %w", err)
	}
	if err := as.userTokenRepo.FullDeleteByTokens(dbc, found); err != nil {
		return fmt.Errorf("delete user token: %w", err)
	}
	return nil
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (*TokenPair, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	token := &types.UserToken{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().UTC().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{token}); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the JWT and checks the session still exists,
// so logged-out tokens stop working before they expire.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("unauthorized", "missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", "failed to parse token: %v", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized("invalid_token", "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", "invalid user id in token")
	}

	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.New(ctx), []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load user token: %w", err)
	}
	if len(found) == 0 || found[0].UserID != userID {
		return ctx, apierr.Unauthorized("session_ended", "session has ended")
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		UserID:       userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
