package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutinsight/gutinsight/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.Issue("sess-123", "visitor")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-123", claims.Sub)
	assert.Equal(t, "visitor", claims.Role)

	_, err = svc.Parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewService("other-secret", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)
	token, err := svc.Issue("sess-123", "visitor")
	require.NoError(t, err)
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	var gotSub, gotRole string
	h := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := svc.Issue("sess-9", "admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-9", gotSub)
	assert.Equal(t, "admin", gotRole)
}

func TestVerifyAdminPassword(t *testing.T) {
	assert.True(t, VerifyAdminPassword("demo123", "demo123", ""))
	assert.False(t, VerifyAdminPassword("wrong", "demo123", ""))
	assert.False(t, VerifyAdminPassword("anything", "", ""))

	// bcrypt hash of "demo123" takes precedence over the plain field.
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMye1J9fCeBBej5zZ0cXMuXHvhQ0sVqtGVe"
	assert.False(t, VerifyAdminPassword("demo123", "demo123", hash+"corrupt"))
}
