package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/slot-swap-service/internal/auth"
	"github.com/spec-kit/slot-swap-service/internal/config"
	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/store"
	apperrors "github.com/spec-kit/slot-swap-service/pkg/util"
)

// AuthService coordinates registration and login flows on top of the users
// collection.
type AuthService struct {
	store      *store.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, st *store.Store) *AuthService {
	return &AuthService{
		store:      st,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// Hash before entering the transaction: bcrypt is deliberately slow and
	// must not hold the store's exclusive section.
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	var user *domain.User
	err = s.store.Transact(ctx, func(tx *store.Tx) error {
		if _, exists := tx.Users.FindOne(func(u *domain.User) bool { return u.Email == email }); exists {
			return apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		created, err := tx.Users.Insert(&domain.User{
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user *domain.User
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		found, ok := tx.Users.FindOne(func(u *domain.User) bool { return u.Email == email })
		if !ok {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}
