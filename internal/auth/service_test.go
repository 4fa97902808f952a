package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medivault/internal/audit"
	auditmemory "medivault/internal/audit/store/memory"
	"medivault/internal/credential"
	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
	"medivault/pkg/testutil"
)

type brokenAuditStore struct{}

func (brokenAuditStore) Append(context.Context, audit.Entry) (int64, error) {
	return 0, errors.New("trail unavailable")
}

func (brokenAuditStore) Query(context.Context, audit.Filter) ([]audit.Entry, error) {
	return nil, errors.New("trail unavailable")
}

func newTestService(t *testing.T, store audit.Store) (*Service, *InMemoryUserStore) {
	t.Helper()
	creds, err := credential.New(4, nil)
	require.NoError(t, err)
	users := NewInMemoryUserStore()
	tokens := NewTokenIssuer([]byte("test-signing-key"), time.Hour)
	svc := NewService(users, creds, tokens, audit.NewPublisher(store, nil, nil), nil)
	return svc, users
}

func TestLogin(t *testing.T) {
	trail := auditmemory.New()
	svc, _ := newTestService(t, trail)
	ctx := testutil.ContextAt(testutil.FixedDate)

	registered, err := svc.Register(ctx, "dr_bob", "Dr. Bob Mansoor", "admin123", id.RoleClinician)
	require.NoError(t, err)

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, "dr_bob", "admin123")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, result.ActorID)
		assert.Equal(t, id.RoleClinician, result.Role)
		assert.False(t, result.SessionID.IsNil())
		assert.NotEmpty(t, result.Token)

		action := audit.ActionLogin
		entries, err := trail.Query(ctx, audit.Filter{Action: &action})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, registered.ID, entries[0].ActorID)
		assert.Equal(t, id.RoleClinician, entries[0].Role)
	})

	t.Run("records last login", func(t *testing.T) {
		user, err := svc.users.FindByUsername(ctx, "dr_bob")
		require.NoError(t, err)
		require.NotNil(t, user.LastLogin)
		assert.Equal(t, testutil.FixedDate, *user.LastLogin)
	})
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	trail := auditmemory.New()
	svc, users := newTestService(t, trail)
	ctx := testutil.ContextAt(testutil.FixedDate)

	_, err := svc.Register(ctx, "alice_recep", "Alice Mahmood", "admin123", id.RoleFrontdesk)
	require.NoError(t, err)

	wrongPassword := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAuthenticationFailed))
		// The message must not reveal which part was wrong.
		var dErr *dErrors.Error
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, "invalid username or password", dErr.Message)
	}

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "admin123")
		wrongPassword(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice_recep", "wrong")
		wrongPassword(t, err)
	})

	t.Run("deactivated user", func(t *testing.T) {
		user, err := users.FindByUsername(ctx, "alice_recep")
		require.NoError(t, err)
		user.Active = false
		require.NoError(t, users.Save(ctx, user))

		_, err = svc.Login(ctx, "alice_recep", "admin123")
		wrongPassword(t, err)
	})

	t.Run("every failure is in the trail", func(t *testing.T) {
		action := audit.ActionLoginFailed
		entries, err := trail.Query(ctx, audit.Filter{Action: &action})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}

func TestLoginAbortsWhenTrailIsDown(t *testing.T) {
	svc, _ := newTestService(t, brokenAuditStore{})
	ctx := testutil.ContextAt(testutil.FixedDate)

	_, err := svc.Register(ctx, "admin", "System Administrator", "admin123", id.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin", "admin123")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAuditUnavailable))
}

func TestRegister(t *testing.T) {
	svc, users := newTestService(t, auditmemory.New())
	ctx := testutil.ContextAt(testutil.FixedDate)

	t.Run("stores a hash, never the password", func(t *testing.T) {
		_, err := svc.Register(ctx, "admin", "System Administrator", "admin123", id.RoleAdmin)
		require.NoError(t, err)

		user, err := users.FindByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.NotEqual(t, "admin123", user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
		assert.True(t, user.Active)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := svc.Register(ctx, "x", "X", "pw", "superuser")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
