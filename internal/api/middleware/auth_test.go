package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

type stubLookup struct {
	user *domain.User
	err  error
}

func (s *stubLookup) Authenticate(_ context.Context, userID string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u := *s.user
	u.ID = userID
	return &u, nil
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "u1",
		"email": "alice@example.com",
		"role":  "employee",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

// runAuth executes the middleware against a request carrying header and
// returns the recorder plus whether next was reached.
func runAuth(t *testing.T, header string, lookup UserLookup, check func(c echo.Context)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", lookup)(func(c echo.Context) error {
		called = true
		if check != nil {
			check(c)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, "secret", validClaims())

	rec, called := runAuth(t, "Bearer "+token, nil, func(c echo.Context) {
		if c.Get("user_id") != "u1" {
			t.Fatalf("user_id not set")
		}
		if c.Get("role") != "employee" {
			t.Fatalf("role not set")
		}
		if c.Get("email") != "alice@example.com" {
			t.Fatalf("email not set")
		}
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_LookupOverridesRole(t *testing.T) {
	token := signToken(t, "secret", validClaims())
	lookup := &stubLookup{user: &domain.User{Role: domain.RoleAdmin, Email: "alice@example.com", IsActive: true}}

	_, called := runAuth(t, "Bearer "+token, lookup, func(c echo.Context) {
		if c.Get("role") != domain.RoleAdmin {
			t.Fatalf("expected role from stored user, got %v", c.Get("role"))
		}
	})
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noSubject := validClaims()
	delete(noSubject, "sub")

	tests := []struct {
		name   string
		header string
		lookup UserLookup
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", validClaims())},
		{name: "expired", header: "Bearer " + signToken(t, "secret", expired)},
		{name: "no subject", header: "Bearer " + signToken(t, "secret", noSubject)},
		{name: "user deleted", header: "Bearer " + signToken(t, "secret", validClaims()), lookup: &stubLookup{err: domain.ErrUserNotFound}},
		{name: "user inactive", header: "Bearer " + signToken(t, "secret", validClaims()), lookup: &stubLookup{err: domain.ErrUserInactive}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runAuth(t, tt.header, tt.lookup, nil)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_RejectsNoneAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec, called := runAuth(t, "Bearer "+unsigned, nil, nil)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for alg=none, got %d", rec.Code)
	}
}
