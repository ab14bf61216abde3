package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

const secret = "test-secret"

var owner = models.MustAddress("0x00000000000000000000000000000000000000a1")

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTFromCookie(secret), AttachJWTLocals(), func(c *fiber.Ctx) error {
		return c.SendString(Caller(c).String())
	})
	app.Get("/admin", JWTFromCookie(secret), AttachJWTLocals(), RequireRoles(utils.RoleOwner), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func token(t *testing.T, addr, role string) string {
	t.Helper()
	tok, err := utils.SignJWT(secret, addr, role, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestJWTSources(t *testing.T) {
	app := newApp()
	tok := token(t, owner.String(), utils.RoleMember)

	tests := []struct {
		name   string
		setup  func(r *testRequest)
		status int
	}{
		{name: "cookie", setup: func(r *testRequest) { r.cookie = tok }, status: fiber.StatusOK},
		{name: "bearer", setup: func(r *testRequest) { r.auth = "Bearer " + tok }, status: fiber.StatusOK},
		{name: "missing", setup: func(*testRequest) {}, status: fiber.StatusUnauthorized},
		{name: "garbage", setup: func(r *testRequest) { r.auth = "Bearer nope" }, status: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &testRequest{path: "/me"}
			tt.setup(r)
			resp, err := app.Test(r.build())
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != owner.String() {
					t.Fatalf("expected caller %s, got %s", owner, body)
				}
			}
		})
	}
}

func TestTokenWithBadAddressIsRejected(t *testing.T) {
	app := newApp()
	r := &testRequest{path: "/me", auth: "Bearer " + token(t, "alice", utils.RoleMember)}
	resp, err := app.Test(r.build())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireRoles(t *testing.T) {
	app := newApp()
	for role, status := range map[string]int{
		utils.RoleOwner:  fiber.StatusNoContent,
		utils.RoleMember: fiber.StatusForbidden,
	} {
		r := &testRequest{path: "/admin", auth: "Bearer " + token(t, owner.String(), role)}
		resp, err := app.Test(r.build())
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != status {
			t.Fatalf("role %s: expected %d, got %d", role, status, resp.StatusCode)
		}
	}
}

func TestLimiterPerKey(t *testing.T) {
	l := NewLimiter(1, 2, time.Minute)
	now := time.Now()
	if !l.Allow("a", now) || !l.Allow("a", now) {
		t.Fatalf("burst should be allowed")
	}
	if l.Allow("a", now) {
		t.Fatalf("third request in the same instant should be limited")
	}
	if !l.Allow("b", now) {
		t.Fatalf("other keys have their own bucket")
	}
	if !l.Allow("a", now.Add(time.Second)) {
		t.Fatalf("bucket should refill")
	}

	var off *Limiter
	if !off.Allow("a", now) {
		t.Fatalf("nil limiter allows everything")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimit(NewLimiter(0.001, 1, time.Minute)), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i, want := range []int{fiber.StatusNoContent, fiber.StatusTooManyRequests} {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, resp.StatusCode)
		}
	}
}

type testRequest struct {
	path   string
	cookie string
	auth   string
}

func (r *testRequest) build() *http.Request {
	req := httptest.NewRequest("GET", r.path, nil)
	if r.cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: r.cookie})
	}
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}
	return req
}
