package service

import (
	"context"
	"testing"

	"recipehub/internal/events"
	"recipehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowServiceFollowSelf(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil, nil)

	assertAppCode(t, svc.Follow(context.Background(), 3, 3), models.CodeValidation)
}

func TestFollowServiceFollowUnknownUser(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == 2 {
			return nil, models.NewNotFoundError("User", id)
		}
		return &models.User{ID: id}, nil
	}
	follows := noopFollowRepo()
	follows.createFn = func(context.Context, uint, uint) (bool, error) {
		t.Fatal("edge must not be created for a missing user")
		return false, nil
	}

	svc := NewFollowService(follows, users, nil, nil)
	assertAppCode(t, svc.Follow(context.Background(), 1, 2), models.CodeNotFound)
}

func TestFollowServiceFollowIsIdempotent(t *testing.T) {
	edges := map[[2]uint]bool{}
	follows := noopFollowRepo()
	follows.createFn = func(_ context.Context, a, b uint) (bool, error) {
		key := [2]uint{a, b}
		if edges[key] {
			return false, nil
		}
		edges[key] = true
		return true, nil
	}
	pub := &recordingPublisher{}

	svc := NewFollowService(follows, noopUserRepo(), NewKeyedLock(), pub)
	require.NoError(t, svc.Follow(context.Background(), 1, 2))
	require.NoError(t, svc.Follow(context.Background(), 1, 2))

	assert.Len(t, edges, 1)
	assert.Equal(t, []string{events.SubjectUserFollowed}, pub.Subjects(), "only a new edge is announced")
}

func TestFollowServiceUnfollowWithoutEdge(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil, nil)
	assert.NoError(t, svc.Unfollow(context.Background(), 1, 2))
}

func TestFollowServiceUnfollowIsNoOpForSelfAndUnknownUsers(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	deletes := 0
	follows := noopFollowRepo()
	follows.deleteFn = func(context.Context, uint, uint) (bool, error) {
		deletes++
		return false, nil
	}
	svc := NewFollowService(follows, users, nil, nil)

	assert.NoError(t, svc.Unfollow(context.Background(), 3, 3))
	assert.Zero(t, deletes, "a self-pair never has an edge")

	assert.NoError(t, svc.Unfollow(context.Background(), 1, 99))
	assert.NoError(t, svc.Unfollow(context.Background(), 99, 1))
	assert.Equal(t, 2, deletes)
}
