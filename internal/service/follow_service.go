package service

import (
	"context"

	"recipehub/internal/events"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// FollowService maintains the directed follow graph.
type FollowService struct {
	follows   repository.FollowRepository
	users     repository.UserRepository
	locks     *KeyedLock
	publisher events.Publisher
}

// NewFollowService returns a new FollowService. publisher may be nil.
func NewFollowService(follows repository.FollowRepository, users repository.UserRepository, locks *KeyedLock, publisher events.Publisher) *FollowService {
	if locks == nil {
		locks = NewKeyedLock()
	}
	return &FollowService{follows: follows, users: users, locks: locks, publisher: publisher}
}

// Follow makes followerID follow followedID. Following twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("cannot follow self")
	}
	if _, err := s.users.GetByID(ctx, followerID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, followedID); err != nil {
		return err
	}

	unlock := s.locks.Lock(followLockKey(followerID, followedID))
	created, err := s.follows.Create(ctx, followerID, followedID)
	unlock()
	if err != nil {
		return err
	}

	if created {
		events.Emit(ctx, s.publisher, events.SubjectUserFollowed, events.UserFollowed{
			FollowerID: followerID,
			FollowedID: followedID,
		})
	}
	return nil
}

// Unfollow removes the edge if present. Without an edge, including a
// self-pair or an unknown user, it does nothing.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return nil
	}

	unlock := s.locks.Lock(followLockKey(followerID, followedID))
	defer unlock()
	_, err := s.follows.Delete(ctx, followerID, followedID)
	return err
}

// IsFollowing reports whether followerID follows followedID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.follows.Exists(ctx, followerID, followedID)
}

// Followers lists the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

// Following lists the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}
