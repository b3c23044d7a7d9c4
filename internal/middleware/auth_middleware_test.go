package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/middleware"
	jwtpkg "github.com/flipflow/flipflow-backend/pkg/jwt"
)

func newApp(t *testing.T) (*fiber.App, *jwtpkg.Manager) {
	t.Helper()

	tokens := jwtpkg.NewManager("test-secret", "flipflow-test")
	auth := middleware.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.Handler(zap.NewNop()),
	})

	app.Get("/protected", auth.Required(), func(c *fiber.Ctx) error {
		id, _ := middleware.UserID(c)
		return c.JSON(fiber.Map{"user_id": id})
	})
	app.Get("/open", auth.Optional(), func(c *fiber.Ctx) error {
		id, ok := middleware.UserID(c)
		return c.JSON(fiber.Map{"user_id": id, "authenticated": ok})
	})

	return app, tokens
}

func TestRequiredRejectsMissingHeader(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequiredRejectsMalformedHeader(t *testing.T) {
	app, tokens := newApp(t)

	token, err := tokens.GenerateToken("user@example.com", 7)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	for _, header := range []string{
		"Token " + token,
		token,
		"Bearer not.a.token",
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, resp.StatusCode)
		}
	}
}

func TestRequiredAcceptsValidToken(t *testing.T) {
	app, tokens := newApp(t)

	token, err := tokens.GenerateToken("user@example.com", 7)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestOptionalAllowsAnonymous(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestOptionalRejectsBrokenToken(t *testing.T) {
	// A presented-but-invalid token is an error, not anonymity; treating
	// it as anonymous would hide expired sessions from the client.
	app, _ := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer expired.or.garbage")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
