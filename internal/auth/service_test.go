package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studiofief/lune/internal/platform/httpx"
)

type memUsers struct {
	users map[string]*User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &memUsers{users: map[string]*User{
		"elise@studiofief.fr": {
			ID:           1,
			Email:        "elise@studiofief.fr",
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		},
	}}
	return NewService(users, NewSessionStore(client, time.Hour))
}

func TestLoginIssuesSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "elise@studiofief.fr", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, int64(1), sess.UserID)

	resolved, err := svc.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, "elise@studiofief.fr", resolved.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "elise@studiofief.fr", "nope")
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "ghost@studiofief.fr", "s3cret")
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "", "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "elise@studiofief.fr", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))

	resolved, err := svc.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	require.Nil(t, resolved)
}

func TestResolveUnknownToken(t *testing.T) {
	svc := newTestService(t)

	resolved, err := svc.Resolve(context.Background(), fmt.Sprintf("bogus-%d", time.Now().Unix()))
	require.NoError(t, err)
	require.Nil(t, resolved)
}
