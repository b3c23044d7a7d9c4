package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	jwtpkg "github.com/flipflow/flipflow-backend/pkg/jwt"
)

const (
	LocalsUserID    = "userID"
	LocalsUserEmail = "userEmail"
)

type AuthMiddleware struct {
	tokens *jwtpkg.Manager
}

func NewAuthMiddleware(tokens *jwtpkg.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Required rejects requests without a valid bearer token.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, email, err := m.parse(c)
		if err != nil {
			return err
		}

		c.Locals(LocalsUserID, userID)
		c.Locals(LocalsUserEmail, email)
		return c.Next()
	}
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through. Used on public flipbook reads, where the
// permission table decides per row.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}

		userID, email, err := m.parse(c)
		if err != nil {
			// A presented-but-broken token is an error, not anonymity.
			return err
		}

		c.Locals(LocalsUserID, userID)
		c.Locals(LocalsUserEmail, email)
		return c.Next()
	}
}

func (m *AuthMiddleware) parse(c *fiber.Ctx) (uint, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, "", apperror.New(apperror.KindAuth, "authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, "", apperror.New(apperror.KindAuth, "invalid authorization header format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := m.tokens.ValidateToken(tokenString)
	if err != nil {
		return 0, "", apperror.Wrap(apperror.KindAuth, "invalid token", err)
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", apperror.New(apperror.KindAuth, "invalid user id in token")
	}
	email, ok := claims["email"].(string)
	if !ok {
		return 0, "", apperror.New(apperror.KindAuth, "invalid email in token")
	}

	return uint(userIDFloat), email, nil
}

// UserID returns the authenticated user id, or (0, false) on anonymous
// requests.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalsUserID).(uint)
	return id, ok
}
