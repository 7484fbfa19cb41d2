package service

import (
	"context"
	"sort"

	"recipehub/internal/models"
	"recipehub/internal/observability"
	"recipehub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService composes a viewer's following feed.
type FeedService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	posts   repository.PostRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(users repository.UserRepository, follows repository.FollowRepository, posts repository.PostRepository) *FeedService {
	return &FeedService{users: users, follows: follows, posts: posts}
}

// FollowingFeed returns the posts of everyone viewerID follows that carry all of
// tags, oldest first.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uint, tags []string) (feed []models.Post, err error) {
	ctx, finish := observability.StartSpan(ctx, "FeedService.FollowingFeed", attribute.Int("viewer.id", int(viewerID)))
	defer func() { finish(err) }()

	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	want, err := models.ParseTags(tags)
	if err != nil {
		return nil, err
	}

	followed, err := s.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(followed) == 0 {
		observability.FeedSize.WithLabelValues("following").Observe(0)
		return []models.Post{}, nil
	}

	posts, err := s.posts.ListByUserIDs(ctx, followed)
	if err != nil {
		return nil, err
	}
	feed = filterParsed(posts, want)
	sortChronological(feed)

	observability.FeedSize.WithLabelValues("following").Observe(float64(len(feed)))
	return feed, nil
}

func sortChronological(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}
