// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"context"
	"time"

	"recipehub/internal/events"
	"recipehub/internal/models"
	"recipehub/internal/observability"
	"recipehub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// SnapshotInvalidator drops cached views derived from posts and ratings.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context)
}

// RatingService validates rating writes and serialises them per post.
type RatingService struct {
	ratings   repository.RatingRepository
	posts     repository.PostRepository
	locks     *KeyedLock
	publisher events.Publisher
	snapshots SnapshotInvalidator
}

// NewRatingService returns a new RatingService. publisher and snapshots may be nil.
func NewRatingService(
	ratings repository.RatingRepository,
	posts repository.PostRepository,
	locks *KeyedLock,
	publisher events.Publisher,
	snapshots SnapshotInvalidator,
) *RatingService {
	if locks == nil {
		locks = NewKeyedLock()
	}
	return &RatingService{
		ratings:   ratings,
		posts:     posts,
		locks:     locks,
		publisher: publisher,
		snapshots: snapshots,
	}
}

// RatingResult is a rating row together with the post aggregate it produced.
type RatingResult struct {
	Rating    *models.Rating    `json:"rating,omitempty"`
	Kind      models.RatingKind `json:"kind"`
	Aggregate float64           `json:"aggregate"`
	Count     int64             `json:"count"`
}

func newRatingResult(rating *models.Rating, kind models.RatingKind, agg models.Aggregate) *RatingResult {
	mean, _ := agg.Mean()
	return &RatingResult{Rating: rating, Kind: kind, Aggregate: mean, Count: agg.Count}
}

// Rate records userID's score of one kind on postID and refreshes that kind's
// aggregate on the post before returning.
func (s *RatingService) Rate(ctx context.Context, userID, postID uint, kind models.RatingKind, score float64) (result *RatingResult, err error) {
	kind, err = models.ParseRatingKind(string(kind))
	if err != nil {
		return nil, err
	}
	if err := kind.ValidateScore(score); err != nil {
		return nil, err
	}

	ctx, finish := observability.StartSpan(ctx, "RatingService.Rate",
		attribute.Int("post.id", int(postID)),
		attribute.String("rating.kind", string(kind)),
	)
	defer func() { finish(err) }()

	unlock := s.locks.Lock(postLockKey(postID))
	start := time.Now()
	rating, agg, err := s.ratings.Upsert(ctx, userID, postID, kind, score)
	observability.ObserveRecompute(string(kind), start)
	unlock()
	if err != nil {
		return nil, err
	}

	observability.RatingsSubmitted.WithLabelValues(string(kind), "set").Inc()
	s.afterWrite(ctx, userID, postID, kind, &score, agg)
	return newRatingResult(rating, kind, agg), nil
}

// ClearRating removes one sub-score. The aggregate keeps its last value when no
// rating of that kind remains.
func (s *RatingService) ClearRating(ctx context.Context, userID, postID uint, kind models.RatingKind) (*RatingResult, error) {
	kind, err := models.ParseRatingKind(string(kind))
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(postLockKey(postID))
	agg, err := s.ratings.Clear(ctx, userID, postID, kind)
	unlock()
	if err != nil {
		return nil, err
	}

	observability.RatingsSubmitted.WithLabelValues(string(kind), "clear").Inc()
	s.afterWrite(ctx, userID, postID, kind, nil, agg)

	result := newRatingResult(nil, kind, agg)
	if agg.Count == 0 {
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		result.Aggregate = post.AggregateFor(kind)
	}
	return result, nil
}

// ListRatings returns every rating on an existing post.
func (s *RatingService) ListRatings(ctx context.Context, postID uint) ([]models.Rating, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.ratings.ListByPost(ctx, postID)
}

func (s *RatingService) afterWrite(ctx context.Context, userID, postID uint, kind models.RatingKind, score *float64, agg models.Aggregate) {
	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx)
	}
	mean, _ := agg.Mean()
	events.Emit(ctx, s.publisher, events.SubjectPostRated, events.PostRated{
		PostID:    postID,
		UserID:    userID,
		Kind:      kind,
		Score:     score,
		Aggregate: mean,
		Count:     agg.Count,
	})
}
