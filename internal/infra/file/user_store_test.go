package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quiz-console/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestUserStoreMissingFileIsEmpty(t *testing.T) {
	store, err := OpenUserStore(filepath.Join(t.TempDir(), "users.txt"), nil)
	require.NoError(t, err)
	require.Empty(t, store.Users())
}

func TestUserStoreRegisterPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.txt")
	store, err := OpenUserStore(path, nil)
	require.NoError(t, err)

	dob := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Register(ctx, domain.User{Username: "Alice", Password: "1234", DateOfBirth: dob}))
	require.NoError(t, store.Register(ctx, domain.User{Username: "bob", Password: "99", DateOfBirth: dob}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Alice|1234|1999-12-31\nbob|99|1999-12-31\n", string(data))

	reopened, err := OpenUserStore(path, nil)
	require.NoError(t, err)
	user, err := reopened.Authenticate(ctx, "ALICE", "1234")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Username)
	require.True(t, user.DateOfBirth.Equal(dob))
}

func TestUserStoreDuplicateIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.txt")
	store, err := OpenUserStore(path, nil)
	require.NoError(t, err)

	require.NoError(t, store.Register(ctx, domain.User{Username: "alice", Password: "1", DateOfBirth: time.Now()}))
	err = store.Register(ctx, domain.User{Username: "ALICE", Password: "2", DateOfBirth: time.Now()})
	require.ErrorIs(t, err, domain.ErrDuplicateUser)
	require.Len(t, store.Users(), 1)

	_, err = store.Authenticate(ctx, "alice", "2")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserStoreSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	content := "alice|1|2000-01-01\n" +
		"garbage\n" +
		"bob|2|not-a-date\n" +
		"too|many|fields|here\n" +
		"\n" +
		"carol|3|1985-07-09\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := OpenUserStore(path, nil)
	require.NoError(t, err)
	users := store.Users()
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, "carol", users[1].Username)
}

func TestUserStoreUpdates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.txt")
	store, err := OpenUserStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, domain.User{Username: "dave", Password: "1", DateOfBirth: time.Now()}))

	require.NoError(t, store.UpdatePassword(ctx, "DAVE", "77"))
	require.NoError(t, store.UpdateDateOfBirth(ctx, "dave", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "dave|77|1970-01-01\n", string(data))

	require.ErrorIs(t, store.UpdatePassword(ctx, "erin", "1"), domain.ErrUserNotFound)
	require.ErrorIs(t, store.UpdateDateOfBirth(ctx, "erin", time.Now()), domain.ErrUserNotFound)
}

func TestUserStoreRejectsDelimiterInFields(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.txt")
	store, err := OpenUserStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, domain.User{Username: "alice", Password: "12", DateOfBirth: time.Now()}))

	require.ErrorIs(t, store.UpdatePassword(ctx, "alice", "a|b"), domain.ErrInvalidField)
	require.ErrorIs(t, store.UpdatePassword(ctx, "alice", "1\n2"), domain.ErrInvalidField)
	require.ErrorIs(t, store.UpdatePassword(ctx, "alice", ""), domain.ErrInvalidField)
	require.ErrorIs(t, store.Register(ctx, domain.User{Username: "bo|b", Password: "1", DateOfBirth: time.Now()}), domain.ErrInvalidField)

	reopened, err := OpenUserStore(path, nil)
	require.NoError(t, err)
	require.Len(t, reopened.Users(), 1)
	_, err = reopened.Authenticate(ctx, "alice", "12")
	require.NoError(t, err)
}
