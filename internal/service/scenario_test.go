package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type services struct {
	db        *gorm.DB
	users     repository.UserRepository
	posts     repository.PostRepository
	store     *storage.MemoryStore
	images    *ImageService
	user      *UserService
	post      *PostService
	follow    *FollowService
	feed      *FeedService
	rating    *RatingService
	discovery *DiscoveryService
	comment   *CommentService
	pub       *recordingPublisher
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db, nil)
	posts := repository.NewPostRepository(db)
	ratings := repository.NewRatingRepository(db)
	follows := repository.NewFollowRepository(db)
	locks := NewKeyedLock()
	pub := &recordingPublisher{}
	store := storage.NewMemoryStore()

	discovery := NewDiscoveryService(posts, ratings, nil, 0)
	images := NewImageService(repository.NewImageRepository(db), posts, users, store, "http://img.test/bucket", 1)
	return &services{
		db:        db,
		users:     users,
		posts:     posts,
		store:     store,
		images:    images,
		user:      NewUserService(users, follows, images, middleware.NewAuth("test-secret", time.Hour), discovery),
		post:      NewPostService(posts, users, images, pub, discovery),
		follow:    NewFollowService(follows, users, locks, pub),
		feed:      NewFeedService(users, follows, posts),
		rating:    NewRatingService(ratings, posts, locks, pub, discovery),
		discovery: discovery,
		comment:   NewCommentService(repository.NewCommentRepository(db), posts),
		pub:       pub,
	}
}

func (s *services) mustUser(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "hash"}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *services) mustPost(t *testing.T, owner uint, at time.Time, tags ...models.Tag) *models.Post {
	t.Helper()
	p := &models.Post{UserID: owner, Title: "post", Ingredients: "flour", Tags: tags, CreatedAt: at}
	require.NoError(t, s.posts.Create(context.Background(), p))
	return p
}

func TestFollowFeedAndRatingScenario(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	a := s.mustUser(t, "a")
	b := s.mustUser(t, "b")
	require.NoError(t, s.follow.Follow(ctx, a.ID, b.ID))

	base := time.Unix(0, 0).UTC()
	p1 := s.mustPost(t, b.ID, base.Add(100*time.Second), models.TagVegan)
	s.mustPost(t, b.ID, base.Add(200*time.Second))

	feed, err := s.feed.FollowingFeed(ctx, a.ID, []string{"vegan"})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, p1.ID, feed[0].ID)

	for i, score := range []float64{5, 5, 4} {
		rater := s.mustUser(t, fmt.Sprintf("rater%d", i))
		_, err := s.rating.Rate(ctx, rater.ID, p1.ID, models.RatingOverall, score)
		require.NoError(t, err)
	}

	stored, err := s.posts.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.6667, stored.OverallRating, 0.0001)

	popular, err := s.discovery.Popular(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, p1.ID, popular[0].ID)
}

func TestRatingServiceValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	owner := s.mustUser(t, "owner")
	post := s.mustPost(t, owner.ID, time.Now())

	_, err := s.rating.Rate(ctx, owner.ID, post.ID, models.RatingOverall, 5.5)
	assertAppCode(t, err, models.CodeValidation)
	_, err = s.rating.Rate(ctx, owner.ID, post.ID, models.RatingPrice, 4)
	assertAppCode(t, err, models.CodeValidation)
	_, err = s.rating.Rate(ctx, owner.ID, post.ID, "taste", 1)
	assertAppCode(t, err, models.CodeValidation)
	_, err = s.rating.Rate(ctx, owner.ID, post.ID+100, models.RatingOverall, 3)
	assertAppCode(t, err, models.CodeNotFound)
	_, err = s.rating.Rate(ctx, owner.ID+100, post.ID, models.RatingOverall, 3)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestRatingServiceConcurrentRaters(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	owner := s.mustUser(t, "owner")
	post := s.mustPost(t, owner.ID, time.Now())

	const raters = 12
	ids := make([]uint, raters)
	for i := range ids {
		ids[i] = s.mustUser(t, fmt.Sprintf("r%d", i)).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, raters)
	for i, id := range ids {
		wg.Add(1)
		go func(id uint, score float64) {
			defer wg.Done()
			_, err := s.rating.Rate(ctx, id, post.ID, models.RatingDifficulty, score)
			errs <- err
		}(id, float64(i%4))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Scores cycle 0,1,2,3 three times: mean 1.5.
	stored, err := s.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, stored.DifficultyRating, 1e-9)
}

func TestRatingServiceClearLastRatingKeepsAggregate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	owner := s.mustUser(t, "owner")
	rater := s.mustUser(t, "rater")
	post := s.mustPost(t, owner.ID, time.Now())

	_, err := s.rating.Rate(ctx, rater.ID, post.ID, models.RatingPrice, 2)
	require.NoError(t, err)

	result, err := s.rating.ClearRating(ctx, rater.ID, post.ID, models.RatingPrice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Count)
	assert.Equal(t, 2.0, result.Aggregate)

	stored, err := s.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stored.PriceRating)

	_, err = s.rating.ClearRating(ctx, rater.ID, post.ID, models.RatingPrice)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestRatingServicePublishesAndInvalidates(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db, nil)
	posts := repository.NewPostRepository(db)
	pub := &recordingPublisher{}
	inv := &countingInvalidator{}
	svc := NewRatingService(repository.NewRatingRepository(db), posts, nil, pub, inv)

	u := &models.User{Username: "u", Password: "hash"}
	require.NoError(t, users.Create(context.Background(), u))
	p := &models.Post{UserID: u.ID, Title: "t", Ingredients: "i"}
	require.NoError(t, posts.Create(context.Background(), p))

	result, err := svc.Rate(context.Background(), u.ID, p.ID, models.RatingOverall, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, result.Aggregate)
	assert.Equal(t, int64(1), result.Count)
	assert.Equal(t, 1, inv.Calls())
	assert.Equal(t, []string{"recipehub.post.rated"}, pub.Subjects())
}
