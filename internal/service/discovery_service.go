package service

import (
	"context"
	"time"

	"recipehub/internal/cache"
	"recipehub/internal/models"
	"recipehub/internal/observability"
	"recipehub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultDiscoverLimit = 20
	maxDiscoverLimit     = 100
)

// DiscoveryService ranks posts by popularity across the whole catalogue.
type DiscoveryService struct {
	posts   repository.PostRepository
	ratings repository.RatingRepository
	cache   *cache.Cache
	ttl     time.Duration
}

// NewDiscoveryService returns a new DiscoveryService. A nil cache or zero ttl
// computes every request from the database.
func NewDiscoveryService(posts repository.PostRepository, ratings repository.RatingRepository, c *cache.Cache, ttl time.Duration) *DiscoveryService {
	return &DiscoveryService{posts: posts, ratings: ratings, cache: c, ttl: ttl}
}

// Popular returns up to limit posts carrying every tag in tags, most popular first.
func (s *DiscoveryService) Popular(ctx context.Context, tags []string, limit int) (ranked []models.Post, err error) {
	want, err := models.ParseTags(tags)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultDiscoverLimit
	case limit > maxDiscoverLimit:
		limit = maxDiscoverLimit
	}

	ctx, finish := observability.StartSpan(ctx, "DiscoveryService.Popular", attribute.Int("limit", limit))
	defer func() { finish(err) }()

	names := make([]string, len(want))
	for i, t := range want {
		names[i] = string(t)
	}
	key := cache.DiscoveryKey(s.cache.Generation(ctx, cache.DiscoveryGenKey), names, limit)

	hit, err := s.cache.Aside(ctx, key, &ranked, s.ttl, func() error {
		var err error
		ranked, err = s.rank(ctx, want, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if hit {
		observability.DiscoveryCache.WithLabelValues("hit").Inc()
	} else {
		observability.DiscoveryCache.WithLabelValues("miss").Inc()
	}
	if ranked == nil {
		ranked = []models.Post{}
	}

	observability.FeedSize.WithLabelValues("discover").Observe(float64(len(ranked)))
	return ranked, nil
}

func (s *DiscoveryService) rank(ctx context.Context, want []models.Tag, limit int) ([]models.Post, error) {
	all, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	candidates := filterParsed(all, want)

	ids := make([]uint, len(candidates))
	for i, p := range candidates {
		ids[i] = p.ID
	}
	counts, err := s.ratings.CountsByPost(ctx, models.RatingOverall, ids)
	if err != nil {
		return nil, err
	}

	ranked := RankPopular(candidates, counts)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Invalidate retires every cached snapshot.
func (s *DiscoveryService) Invalidate(ctx context.Context) {
	s.cache.Bump(ctx, cache.DiscoveryGenKey)
}
