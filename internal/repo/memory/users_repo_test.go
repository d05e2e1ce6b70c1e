package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_CreateAssignsIDAndEqualTimestamps(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, user.Candidate{FirstName: "A", LastName: "B", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.True(t, u.CreatedAt.Equal(u.UpdatedAt))
	assert.Equal(t, 1, repo.Count())
}

func TestUsersRepo_CreateDuplicateEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, user.Candidate{FirstName: "A", LastName: "B", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, user.Candidate{FirstName: "C", LastName: "D", Email: "a@x.com", Password: "secret2"})
	require.ErrorIs(t, err, user.ErrEmailTaken)
	assert.Equal(t, 1, repo.Count())
}

func TestUsersRepo_UpdateAdvancesUpdatedAt(t *testing.T) {
	repo := NewUsersRepo()
	fixed := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	created, err := repo.Create(ctx, user.Candidate{FirstName: "A", LastName: "B", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	created.FirstName = "Z"
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, "Z", updated.FirstName)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updatedAt must advance even with a frozen clock")
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
}

func TestUsersRepo_UpdateAndDeleteMissing(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Update(ctx, user.User{ID: 42, Email: "x@x.com"})
	require.ErrorIs(t, err, user.ErrNotFound)

	err = repo.Delete(ctx, 42)
	require.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "x@x.com")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ListOrderedByID(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	for _, email := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		_, err := repo.Create(ctx, user.Candidate{FirstName: "F", LastName: "L", Email: email, Password: "secret1"})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	for i, u := range list {
		assert.Equal(t, int64(i+1), u.ID)
	}
}
