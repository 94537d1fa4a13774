package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/authclient"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

var secret = []byte("test-jwt-secret")

type stubRefresher struct {
	resp  *authclient.RefreshResponse
	err   error
	calls int
}

func (s *stubRefresher) RefreshTokens(context.Context, string, string) (*authclient.RefreshResponse, error) {
	s.calls++
	return s.resp, s.err
}

func sign(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.SignAccess(sub, role, exp, secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, c, err, called
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	tok := sign(t, "7", "user", time.Now().Add(time.Minute))

	_, c, err, called := run(t, m.RequireAuth, &http.Cookie{Name: tokens.AccessCookie, Value: tok})
	require.NoError(t, err)
	assert.True(t, called)

	id, err := UserID(c)
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)
	assert.Equal(t, "user", Role(c))
}

func TestRequireAuth_Rejects(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)

	_, _, err, called := run(t, m.RequireAuth)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.False(t, called)

	_, _, err, _ = run(t, m.RequireAuth, &http.Cookie{Name: tokens.AccessCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	expired := sign(t, "7", "user", time.Now().Add(-time.Minute))
	_, _, err, _ = run(t, m.RequireAuth, &http.Cookie{Name: tokens.AccessCookie, Value: expired})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAuth_RefreshesExpiredToken(t *testing.T) {
	fresh := sign(t, "9", "user", time.Now().Add(time.Minute))
	stub := &stubRefresher{resp: &authclient.RefreshResponse{
		AccessToken:  fresh,
		RefreshToken: "r2",
		AccessExp:    time.Now().Add(time.Minute).Unix(),
		RefreshExp:   time.Now().Add(time.Hour).Unix(),
	}}
	m := NewAutoRefreshMiddleware(secret, stub)

	expired := sign(t, "9", "user", time.Now().Add(-time.Minute))
	rec, c, err, called := run(t, m.RequireAuth,
		&http.Cookie{Name: tokens.AccessCookie, Value: expired},
		&http.Cookie{Name: tokens.RefreshCookie, Value: "r1"},
	)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, stub.calls)

	id, err := UserID(c)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)

	setCookies := rec.Result().Cookies()
	names := map[string]string{}
	for _, ck := range setCookies {
		names[ck.Name] = ck.Value
	}
	assert.Equal(t, fresh, names[tokens.AccessCookie])
	assert.Equal(t, "r2", names[tokens.RefreshCookie])
}

func TestRequireAuth_RefreshFailureClearsCookies(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &stubRefresher{err: errors.New("nope")})
	expired := sign(t, "9", "user", time.Now().Add(-time.Minute))

	rec, _, err, called := run(t, m.RequireAuth,
		&http.Cookie{Name: tokens.AccessCookie, Value: expired},
		&http.Cookie{Name: tokens.RefreshCookie, Value: "r1"},
	)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.False(t, called)
	for _, ck := range rec.Result().Cookies() {
		assert.Equal(t, -1, ck.MaxAge, ck.Name)
	}
}

func TestRequireStaff(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)

	user := sign(t, "1", "user", time.Now().Add(time.Minute))
	_, _, err, called := run(t, m.RequireStaff, &http.Cookie{Name: tokens.AccessCookie, Value: user})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.False(t, called)

	for _, role := range []string{RoleStaff, RoleAdmin} {
		tok := sign(t, "1", role, time.Now().Add(time.Minute))
		_, _, err, called = run(t, m.RequireStaff, &http.Cookie{Name: tokens.AccessCookie, Value: tok})
		require.NoError(t, err, role)
		assert.True(t, called, role)
	}
}

func TestOptionalAuth(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)

	_, c, err, called := run(t, m.OptionalAuth)
	require.NoError(t, err)
	assert.True(t, called)
	_, err = UserID(c)
	assert.ErrorIs(t, err, ErrUnauthorized)

	tok := sign(t, "3", "staff", time.Now().Add(time.Minute))
	_, c, err, _ = run(t, m.OptionalAuth, &http.Cookie{Name: tokens.AccessCookie, Value: tok})
	require.NoError(t, err)
	assert.True(t, IsStaff(Role(c)))
}

func TestUserID_RejectsNonNumericSubject(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxUserID, "not-a-number")
	_, err := UserID(c)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
