package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Bio      string
	Skills   []string
}

type AuthService interface {
	Register(dbc dbctx.Context, in RegisterInput) (*types.User, string, error)
	Login(dbc dbctx.Context, email, password string) (*types.User, string, error)
	Me(dbc dbctx.Context, userID uint) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	users        userrepo.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users userrepo.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		users:        users,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

var errInvalidCredentials = apierr.Unauthorized("invalid email or password")

func (as *authService) Register(dbc dbctx.Context, in RegisterInput) (*types.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := as.users.GetByEmail(dbc, email); err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, "", apierr.BadRequest("email_taken", "email already registered")
	}
	if existing, err := as.users.GetByUsername(dbc, username); err != nil {
		return nil, "", fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, "", apierr.BadRequest("username_taken", "username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Avatar:   types.DefaultAvatar,
		Bio:      in.Bio,
		Skills:   datatypes.JSONSlice[string](nonNilStrings(in.Skills)),
	}
	if err := as.users.Create(dbc, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apierr.BadRequest("user_exists", "email or username already registered")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	tok, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("user registered", "user_id", u.ID)
	return u, tok, nil
}

func (as *authService) Login(dbc dbctx.Context, email, password string) (*types.User, string, error) {
	u, err := as.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", errInvalidCredentials
	}
	tok, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (as *authService) Me(dbc dbctx.Context, userID uint) (*types.User, error) {
	u, err := as.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	return u, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized("invalid or expired token")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return ctx, apierr.Unauthorized("invalid token subject")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      uint(id),
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
