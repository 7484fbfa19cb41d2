package seed

import (
	"context"
	"testing"

	"recipehub/internal/database"
	"recipehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestFactory_BuildPostStaysInVocabulary(t *testing.T) {
	f, err := NewFactory(setupTestDB(t), Options{RandSeed: 42, MaxDays: 10})
	require.NoError(t, err)

	owner := &models.User{ID: 7}
	for i := 0; i < 50; i++ {
		p := f.BuildPost(owner)
		assert.Equal(t, uint(7), p.UserID)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Ingredients)
		assert.Positive(t, p.RecipeTime)
		for _, tag := range p.Tags {
			assert.True(t, tag.IsKnown(), "unexpected tag %q", tag)
		}
	}
}

func TestFactory_RandomScoreWithinBounds(t *testing.T) {
	f, err := NewFactory(setupTestDB(t), Options{RandSeed: 1})
	require.NoError(t, err)

	for _, kind := range models.RatingKinds {
		for i := 0; i < 100; i++ {
			assert.NoError(t, kind.ValidateScore(f.randomScore(kind)))
		}
	}
}

func TestSeeder_RunKeepsAggregatesConsistent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s, err := NewSeeder(db, Options{NumUsers: 6, NumPosts: 10, FollowsPerUser: 3, RatingsPerPost: 3, RandSeed: 99})
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	assert.Len(t, users, 6)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte(DefaultPassword)))

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followed_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 10)

	for _, p := range posts {
		var ratings []models.Rating
		require.NoError(t, db.Where("post_id = ?", p.ID).Find(&ratings).Error)
		if len(ratings) == 0 {
			assert.Zero(t, p.OverallRating)
			continue
		}
		sum := 0.0
		for _, r := range ratings {
			assert.NotEqual(t, p.UserID, r.UserID, "authors do not rate their own posts")
			require.NotNil(t, r.Overall)
			sum += *r.Overall
		}
		assert.InDelta(t, sum/float64(len(ratings)), p.OverallRating, 1e-9)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s, err := NewSeeder(db, Options{NumUsers: 3, NumPosts: 4, RandSeed: 5})
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))
	require.NoError(t, s.ClearAll(ctx))

	for _, m := range database.PersistentModels() {
		var n int64
		require.NoError(t, db.Unscoped().Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T not cleared", m)
	}
}

func TestSeeder_ClearAllThenReseed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	opts := Options{NumUsers: 4, NumPosts: 5, RandSeed: 7}

	first, err := NewSeeder(db, opts)
	require.NoError(t, err)
	require.NoError(t, first.Run(ctx))
	require.NoError(t, first.ClearAll(ctx))

	second, err := NewSeeder(db, opts)
	require.NoError(t, err)
	require.NoError(t, second.Run(ctx))

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(5), posts)

	var orphans int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id NOT IN (?)", db.Model(&models.User{}).Select("id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)
}
