// Package events publishes domain events after their transaction commits.
package events

import (
	"context"
	"encoding/json"
	"time"

	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/observability"

	"github.com/google/uuid"
)

// Subjects carried on the bus.
const (
	SubjectPostCreated  = "recipehub.post.created"
	SubjectPostRated    = "recipehub.post.rated"
	SubjectUserFollowed = "recipehub.user.followed"
)

// Publisher delivers an event to subscribers. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Envelope is the wire format of every event.
type Envelope struct {
	ID         string          `json:"id"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope stamps payload with a fresh id and time.
func NewEnvelope(subject string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

// PostCreated is published once a post is committed.
type PostCreated struct {
	PostID uint         `json:"post_id"`
	UserID uint         `json:"user_id"`
	Title  string       `json:"title"`
	Tags   []models.Tag `json:"tags"`
}

// PostRated is published after a rating write and its aggregate recompute commit.
type PostRated struct {
	PostID    uint              `json:"post_id"`
	UserID    uint              `json:"user_id"`
	Kind      models.RatingKind `json:"kind"`
	Score     *float64          `json:"score"`
	Aggregate float64           `json:"aggregate"`
	Count     int64             `json:"count"`
}

// UserFollowed is published when a new follow edge is created.
type UserFollowed struct {
	FollowerID uint `json:"follower_id"`
	FollowedID uint `json:"followed_id"`
}

// Emit publishes and logs a failure instead of returning it; the write it
// describes has already committed.
func Emit(ctx context.Context, p Publisher, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		observability.EventPublishFailures.WithLabelValues(subject).Inc()
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			"subject", subject,
			"error", err,
		)
	}
}

// NopPublisher drops every event. It is used when NATS_URL is empty.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}
