package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	goredis "github.com/stitchfade/boutique-backend/internal/clients/redis"
	"github.com/stitchfade/boutique-backend/internal/normalization"
	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
	"github.com/stitchfade/boutique-backend/internal/requestdata"
	"github.com/stitchfade/boutique-backend/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User, confirmPassword string) error
	LoginUser(ctx context.Context, username, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	LogoutAllUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	tokenCache    goredis.TokenCache
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	tokenCache goredis.TokenCache,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		tokenCache:    tokenCache,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User, confirmPassword string) error {
	user.Username = normalization.ParseInputString(user.Username)
	user.Email = normalization.ParseInputString(user.Email)
	user.Password = normalization.TrimInputString(user.Password)
	confirmPassword = normalization.TrimInputString(confirmPassword)

	if user.Username == "" {
		return apierr.ValidationFailure(fmt.Errorf("a username is required to register"))
	}
	if user.Email == "" {
		return apierr.ValidationFailure(fmt.Errorf("an email is required to register"))
	}
	if user.Password == "" {
		return apierr.ValidationFailure(fmt.Errorf("a password is required to register"))
	}
	if user.Password != confirmPassword {
		return apierr.ValidationFailure(fmt.Errorf("passwords do not match"))
	}

	emailExists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return apierr.PersistenceFailure(fmt.Errorf("check email: %w", err))
	}
	if emailExists {
		return apierr.ValidationFailure(fmt.Errorf("email is already in use"))
	}
	usernameExists, err := as.userRepo.UsernameExists(ctx, nil, user.Username)
	if err != nil {
		return apierr.PersistenceFailure(fmt.Errorf("check username: %w", err))
	}
	if usernameExists {
		return apierr.ValidationFailure(fmt.Errorf("username already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apierr.PersistenceFailure(fmt.Errorf("hash password: %w", err))
	}
	user.Password = string(hashedPassword)

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if as.avatarService != nil {
			if avErr := as.avatarService.CreateUserAvatar(ctx, user); avErr != nil {
				// A missing avatar never blocks signup.
				as.log.Warn("Avatar generation failed", "user_id", user.ID, "error", avErr)
			}
		}
		if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
			return apierr.PersistenceFailure(fmt.Errorf("create user: %w", cErr))
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, username, password string) (string, string, error) {
	username = normalization.ParseInputString(username)
	password = normalization.TrimInputString(password)

	if username == "" || password == "" {
		return "", "", apierr.ValidationFailure(fmt.Errorf("username and password are required to login"))
	}

	users, err := as.userRepo.GetByUsernames(ctx, nil, []string{username})
	if err != nil {
		return "", "", apierr.PersistenceFailure(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return "", "", apierr.Unauthenticated(fmt.Errorf("invalid username or password"))
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apierr.Unauthenticated(fmt.Errorf("invalid username or password"))
	}

	var accessToken string
	var refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); cErr != nil {
			return fmt.Errorf("create user token: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return "", "", apierr.PersistenceFailure(err)
	}

	as.cacheToken(ctx, accessToken, user.ID)
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = normalization.TrimInputString(refreshToken)
	if refreshToken == "" {
		return "", "", apierr.ValidationFailure(fmt.Errorf("refresh token is required"))
	}

	var accessToken string
	var newRefreshToken string
	var userID uuid.UUID
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{refreshToken})
		if ftErr != nil {
			return fmt.Errorf("load refresh token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return apierr.Unauthenticated(fmt.Errorf("unknown refresh token"))
		}
		existing := foundTokens[0]
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
				return fmt.Errorf("delete expired token: %w", dErr)
			}
			return apierr.Unauthenticated(fmt.Errorf("refresh token expired"))
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return apierr.Unauthenticated(fmt.Errorf("no user for refresh token"))
		}
		user := users[0]

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		userID = user.ID
		newUserToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
			return fmt.Errorf("create rotated token: %w", cErr)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
			return fmt.Errorf("delete old token: %w", dErr)
		}
		as.evictToken(ctx, existing.AccessToken)
		return nil
	})
	if err != nil {
		return "", "", apierr.From(err)
	}

	as.cacheToken(ctx, accessToken, userID)
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthenticated(fmt.Errorf("no resolved token on request"))
	}
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if ftErr != nil {
			return fmt.Errorf("load user token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{foundTokens[0].ID}); dErr != nil {
			return fmt.Errorf("delete user token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return apierr.PersistenceFailure(err)
	}
	as.evictToken(ctx, rd.TokenString)
	return nil
}

// LogoutAllUser revokes every live session of the current user, not just
// the one behind the presented token.
func (as *authService) LogoutAllUser(ctx context.Context) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("no resolved user on request"))
	}
	var revoked []string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{userID})
		if ftErr != nil {
			return fmt.Errorf("load user tokens: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		tokenIDs := make([]uuid.UUID, 0, len(foundTokens))
		for _, ut := range foundTokens {
			tokenIDs = append(tokenIDs, ut.ID)
			revoked = append(revoked, ut.AccessToken)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, tokenIDs); dErr != nil {
			return fmt.Errorf("delete user tokens: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return apierr.PersistenceFailure(err)
	}
	for _, accessToken := range revoked {
		as.evictToken(ctx, accessToken)
	}
	return nil
}

// SetContextFromToken verifies the bearer token and, when valid, attaches
// the resolved identity to the context. Revoked tokens (logged out) fail
// even when their JWT signature still verifies.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthenticated(fmt.Errorf("missing token"))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.Unauthenticated(fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthenticated(fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthenticated(fmt.Errorf("invalid user id in token: %w", err))
	}

	if as.tokenCache != nil {
		cachedID, hit, lErr := as.tokenCache.Lookup(ctx, tokenString)
		if lErr != nil {
			as.log.Warn("Token cache lookup failed, falling back to postgres", "error", lErr)
		} else if hit {
			if cachedID != userID {
				return ctx, apierr.Unauthenticated(fmt.Errorf("token subject mismatch"))
			}
			return requestdata.WithRequestData(ctx, &requestdata.RequestData{
				TokenString: tokenString,
				UserID:      userID,
			}), nil
		}
	}

	foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if ftErr != nil {
		return ctx, apierr.PersistenceFailure(fmt.Errorf("load user token: %w", ftErr))
	}
	if len(foundTokens) == 0 {
		return ctx, apierr.Unauthenticated(fmt.Errorf("token has been revoked"))
	}
	as.cacheToken(ctx, tokenString, userID)

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: foundTokens[0].RefreshToken,
		UserID:       userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens minted within the same second distinct;
			// access_token carries a unique index.
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) cacheToken(ctx context.Context, accessToken string, userID uuid.UUID) {
	if as.tokenCache == nil {
		return
	}
	if err := as.tokenCache.Store(ctx, accessToken, userID, as.accessTTL); err != nil {
		as.log.Warn("Token cache store failed", "error", err)
	}
}

func (as *authService) evictToken(ctx context.Context, accessToken string) {
	if as.tokenCache == nil {
		return
	}
	if err := as.tokenCache.Delete(ctx, accessToken); err != nil {
		as.log.Warn("Token cache delete failed", "error", err)
	}
}
