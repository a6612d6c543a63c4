package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"disaster-prep-community/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoles struct {
	roles map[string]string
}

func (s stubRoles) RoleOf(userID string) (string, error) {
	role, ok := s.roles[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return role, nil
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func doRequest(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRequireUserDeniesUnresolvedToken(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	inner, called := okHandler()
	h := Auth(sessions, RequireUser(inner))

	w := doRequest(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.False(t, *called)

	w = doRequest(t, h, "bogus-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
}

func TestRequireUserAllowsResolvedToken(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	inner, called := okHandler()
	h := Auth(sessions, RequireUser(inner))

	token, err := sessions.Establish("user-1", RoleUser)
	require.NoError(t, err)

	w := doRequest(t, h, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
}

func TestRequireAdminDeniesUserRole(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	roles := stubRoles{roles: map[string]string{"user-1": RoleUser, "admin-1": RoleAdmin}}
	inner, called := okHandler()
	h := Auth(sessions, RequireAdmin(roles, inner))

	token, err := sessions.Establish("user-1", RoleUser)
	require.NoError(t, err)

	w := doRequest(t, h, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, AdminLoginPath, w.Header().Get("Location"))
	assert.False(t, *called)
}

func TestRequireAdminDeniesAnonymous(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	roles := stubRoles{roles: map[string]string{}}
	inner, _ := okHandler()
	h := Auth(sessions, RequireAdmin(roles, inner))

	w := doRequest(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, AdminLoginPath, w.Header().Get("Location"))
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	roles := stubRoles{roles: map[string]string{"admin-1": RoleAdmin}}
	inner, called := okHandler()
	h := Auth(sessions, RequireAdmin(roles, inner))

	token, err := sessions.Establish("admin-1", RoleAdmin)
	require.NoError(t, err)

	w := doRequest(t, h, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
}

// A demoted admin is locked out immediately even though the session still
// carries the admin role from login time.
func TestRequireAdminReResolvesRole(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	roles := stubRoles{roles: map[string]string{"admin-1": RoleAdmin}}
	inner, _ := okHandler()
	h := Auth(sessions, RequireAdmin(roles, inner))

	token, err := sessions.Establish("admin-1", RoleAdmin)
	require.NoError(t, err)

	w := doRequest(t, h, token)
	require.Equal(t, http.StatusOK, w.Code)

	roles.roles["admin-1"] = RoleUser

	w = doRequest(t, h, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireClaimedRole(t *testing.T) {
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	inner, called := okHandler()
	h := Auth(sessions, RequireClaimedRole(RoleAdmin, inner))

	userToken, err := sessions.Establish("user-1", RoleUser)
	require.NoError(t, err)
	adminToken, err := sessions.Establish("admin-1", RoleAdmin)
	require.NoError(t, err)

	w := doRequest(t, h, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *called)

	w = doRequest(t, h, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
}
