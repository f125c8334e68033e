package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/store"
	apperrors "github.com/spec-kit/slot-swap-service/pkg/util"
)

const callerKey = "auth_caller"

// AuthMiddleware validates bearer tokens and resolves the caller identity
// against the users collection. The core operations downstream never see
// credentials, only the resolved user.
type AuthMiddleware struct {
	tokens *TokenManager
	store  *store.Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, st *store.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: st}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	var caller *domain.User
	err = m.store.Transact(c.UserContext(), func(tx *store.Tx) error {
		user, ok := tx.Users.Get(claims.UserID)
		if !ok {
			return apperrors.NewUnauthorized("user no longer exists")
		}
		caller = user
		return nil
	})
	if err != nil {
		return err
	}

	c.Locals(callerKey, caller)
	return c.Next()
}

// CallerFromContext retrieves the authenticated user.
func CallerFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(callerKey)
	if val == nil {
		return nil, false
	}
	caller, ok := val.(*domain.User)
	return caller, ok
}
