package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/token"
)

func performAuth(t *testing.T, codec token.Codec, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(codec)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", httpErr.Code)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	signed, err := codec.Issue("u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	rec, c, err := performAuth(t, codec, "Bearer "+signed)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	p, ok := c.Get(PrincipalKey).(domain.Principal)
	if !ok {
		t.Fatalf("principal not set on context")
	}
	if p.ID != "u1" || p.Role != domain.RoleAdmin {
		t.Fatalf("principal = %+v", p)
	}
	if raw, _ := c.Get(TokenKey).(string); raw != signed {
		t.Fatalf("raw token not preserved on context")
	}
}

func TestAuth_SchemeIsCaseInsensitive(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	signed, err := codec.Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, _, err := performAuth(t, codec, "bearer "+signed); err != nil {
		t.Fatalf("lowercase scheme rejected: %v", err)
	}
}

func TestAuth_Rejections(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expired, err := expiredToken.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	foreign, err := token.NewCodec("other-secret", time.Hour).Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic dXNlcjpwYXNz",
		"no token":       "Bearer",
		"garbage token":  "Bearer not-a-token",
		"expired token":  "Bearer " + expired,
		"bad signature":  "Bearer " + foreign,
	}
	for name, header := range cases {
		_, _, err := performAuth(t, codec, header)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		assertUnauthorized(t, err)
	}
}
