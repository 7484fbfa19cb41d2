package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	t.Run("Create is idempotent", func(t *testing.T) {
		created, err := repo.Create(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Create(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, created)

		var count int64
		db.Table("follows").Where("follower_id = ? AND followed_id = ?", alice.ID, bob.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Followers and Following", func(t *testing.T) {
		_, err := repo.Create(ctx, carol.ID, bob.ID)
		require.NoError(t, err)
		_, err = repo.Create(ctx, alice.ID, carol.ID)
		require.NoError(t, err)

		followers, err := repo.Followers(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, followers, 2)
		assert.Equal(t, "alice", followers[0].Username)
		assert.Equal(t, "carol", followers[1].Username)

		following, err := repo.Following(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, following, 2)
		assert.Equal(t, "bob", following[0].Username)

		ids, err := repo.FollowingIDs(ctx, alice.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, ids)

		ids, err = repo.FollowingIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		removed, err := repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		ok, err := repo.Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.Exists(ctx, carol.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
