package repository

import (
	"context"
	"testing"

	"recipehub/internal/cache"
	"recipehub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	u := &models.User{Username: "chef", Password: "hash", Bio: "cooks"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := repo.Create(ctx, &models.User{Username: "chef", Password: "other"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	found, err := repo.GetByUsername(ctx, "chef")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	missing, err := repo.GetByUsername(ctx, "Chef")
	require.NoError(t, err)
	assert.Nil(t, missing, "usernames are case-sensitive")

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, models.IsNotFound(err))

	users, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_GetByIDUsesCache(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewUserRepository(db, cache.New(client))
	ctx := context.Background()
	u := createUser(t, db, "cached")

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Username)
	assert.True(t, mr.Exists(cache.UserKey(u.ID)))

	_, err = repo.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.UserKey(u.ID)))
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, nil)
	ratings := NewRatingRepository(db)
	ctx := context.Background()

	doomed := createUser(t, db, "doomed")
	other := createUser(t, db, "other")
	third := createUser(t, db, "third")

	ownPost := createPost(t, db, doomed.ID)
	otherPost := createPost(t, db, other.ID)

	_, _, err := ratings.Upsert(ctx, other.ID, ownPost.ID, models.RatingOverall, 4)
	require.NoError(t, err)
	_, _, err = ratings.Upsert(ctx, doomed.ID, otherPost.ID, models.RatingOverall, 1)
	require.NoError(t, err)
	_, _, err = ratings.Upsert(ctx, third.ID, otherPost.ID, models.RatingOverall, 5)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Follow{FollowerID: doomed.ID, FollowedID: other.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: other.ID, FollowedID: doomed.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: otherPost.ID, UserID: doomed.ID, Body: "meh"}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: ownPost.ID, UserID: other.ID, Body: "yum"}).Error)
	require.NoError(t, db.Create(&models.Image{OwnerType: models.ImageOwnerPost, OwnerID: ownPost.ID, UploaderID: doomed.ID, BaseURL: "http://x", Salt: "AAAA", Extension: "png"}).Error)
	require.NoError(t, db.Create(&models.Image{OwnerType: models.ImageOwnerUser, OwnerID: doomed.ID, UploaderID: doomed.ID, BaseURL: "http://x", Salt: "BBBB", Extension: "jpg"}).Error)

	images, err := repo.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		db.Model(model).Where(query, args...).Count(&n)
		return n
	}
	assert.Zero(t, count(&models.User{}, "id = ?", doomed.ID))
	assert.Zero(t, count(&models.Post{}, "user_id = ?", doomed.ID))
	assert.Zero(t, count(&models.Rating{}, "user_id = ? OR post_id = ?", doomed.ID, ownPost.ID))
	assert.Zero(t, count(&models.Follow{}, "follower_id = ? OR followed_id = ?", doomed.ID, doomed.ID))
	assert.Zero(t, count(&models.Comment{}, "user_id = ? OR post_id = ?", doomed.ID, ownPost.ID))
	assert.Zero(t, count(&models.Image{}, "1 = 1"))

	var stored models.Post
	require.NoError(t, db.First(&stored, otherPost.ID).Error)
	assert.InDelta(t, 5.0, stored.OverallRating, 1e-9, "aggregate drops the deleted user's score")

	_, err = repo.Delete(ctx, doomed.ID)
	assert.True(t, models.IsNotFound(err))
}
