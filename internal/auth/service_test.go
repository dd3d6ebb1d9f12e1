package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/evita-erp/evita-erp/internal/shared"
)

type memoryUserRepo struct {
	users map[string]*User
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func newTestAuth(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto-123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &memoryUserRepo{users: map[string]*User{
		"ana@evita.ar":  {ID: 1, Email: "ana@evita.ar", Name: "Ana", PasswordHash: string(hash), IsActive: true},
		"baja@evita.ar": {ID: 2, Email: "baja@evita.ar", PasswordHash: string(hash), IsActive: false},
	}}
	return NewService(repo, rdb, time.Hour)
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	token, user, err := svc.Login(ctx, "ana@evita.ar", "secreto-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(1), user.ID)

	sess, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(1), sess.UserID)
	require.Equal(t, "ana@evita.ar", sess.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "ana@evita.ar", "otra-clave")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nadie@evita.ar", "secreto-123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// deactivated accounts cannot log in even with the right password
	_, _, err = svc.Login(ctx, "baja@evita.ar", "secreto-123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "ana@evita.ar", "secreto-123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ResolveToken(ctx, token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRequireAuthMiddleware(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "ana@evita.ar", "secreto-123")
	require.NoError(t, err)

	var seen *shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(svc)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/cobranzas/cuentas", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, int64(1), seen.UserID)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cobranzas/cuentas", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/cobranzas/cuentas", nil)
	req.Header.Set("Authorization", "Bearer no-existe")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
