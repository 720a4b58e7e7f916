package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/storage"
)

// newTestStorage подключается к базе из JASPER_TEST_DATABASE_DSN.
// Без переменной тесты пропускаются.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("JASPER_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("JASPER_TEST_DATABASE_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := NewStorage(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, st.Migrate(ctx))

	return st
}

func TestStorage_UserRoundTrip(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	username := "kid-" + uuid.NewString()[:8]
	err := st.CreateUser(ctx, models.UserRecord{
		Username:    username,
		Password:    "secret",
		DisplayName: "Test Kid",
	})
	require.NoError(t, err)

	user, err := st.GetUser(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, "Test Kid", user.DisplayName)
	assert.Empty(t, user.ScoreHistory)

	updated := user.WithResult(models.SessionResult{Score: 2, Attempted: 3, Date: "Oct 18, 2026", TimedOut: true})
	updated = updated.WithResult(models.SessionResult{Score: 7, Attempted: 10, Date: "Oct 19, 2026", Completed: true})
	require.NoError(t, st.UpdateUser(ctx, updated))

	user, err = st.GetUser(ctx, username)
	require.NoError(t, err)
	require.Len(t, user.ScoreHistory, 2)
	assert.Equal(t, 7, user.ScoreHistory[0].Score)
	assert.True(t, user.ScoreHistory[0].Completed)
	assert.True(t, user.ScoreHistory[1].TimedOut)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)

	found := false
	for _, u := range users {
		if u.Username == username {
			found = true
			assert.Len(t, u.ScoreHistory, 2)
		}
	}
	assert.True(t, found)
}

func TestStorage_Errors(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	_, err := st.GetUser(ctx, "missing-"+uuid.NewString())
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	username := "dup-" + uuid.NewString()[:8]
	require.NoError(t, st.CreateUser(ctx, models.UserRecord{Username: username, Password: "p", DisplayName: "D"}))

	err = st.CreateUser(ctx, models.UserRecord{Username: username, Password: "p", DisplayName: "D"})
	assert.True(t, errors.Is(err, storage.ErrUserExists))

	err = st.UpdateUser(ctx, models.UserRecord{Username: "missing-" + uuid.NewString()})
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))
}
