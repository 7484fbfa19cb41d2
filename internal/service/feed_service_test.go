package service

import (
	"context"
	"testing"
	"time"

	"recipehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedServiceFollowingNobody(t *testing.T) {
	posts := noopPostRepo()
	posts.listByUserIDsFn = func(context.Context, []uint) ([]models.Post, error) {
		t.Fatal("posts must not be queried for an empty follow set")
		return nil, nil
	}

	svc := NewFeedService(noopUserRepo(), noopFollowRepo(), posts)
	feed, err := svc.FollowingFeed(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestFeedServiceUnknownViewer(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}

	svc := NewFeedService(users, noopFollowRepo(), noopPostRepo())
	_, err := svc.FollowingFeed(context.Background(), 9, nil)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestFeedServiceFiltersAndOrders(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	follows := noopFollowRepo()
	follows.followingIDsFn = func(context.Context, uint) ([]uint, error) { return []uint{2, 3}, nil }
	posts := noopPostRepo()
	posts.listByUserIDsFn = func(_ context.Context, ids []uint) ([]models.Post, error) {
		assert.ElementsMatch(t, []uint{2, 3}, ids)
		return []models.Post{
			{ID: 4, UserID: 3, CreatedAt: base.Add(time.Hour), Tags: models.TagSet{models.TagVegan}},
			{ID: 3, UserID: 2, CreatedAt: base, Tags: models.TagSet{models.TagVegan}},
			{ID: 2, UserID: 2, CreatedAt: base, Tags: models.TagSet{models.TagVegan}},
			{ID: 1, UserID: 2, CreatedAt: base.Add(-time.Hour)},
		}, nil
	}

	svc := NewFeedService(noopUserRepo(), follows, posts)

	feed, err := svc.FollowingFeed(context.Background(), 1, []string{"vegan"})
	require.NoError(t, err)
	ids := make([]uint, len(feed))
	for i, p := range feed {
		ids[i] = p.ID
	}
	assert.Equal(t, []uint{2, 3, 4}, ids)

	_, err = svc.FollowingFeed(context.Background(), 1, []string{"paleo"})
	assertAppCode(t, err, models.CodeValidation)
}
