package models

import (
	"fmt"
	"strings"
	"time"
)

// RatingKind names one of the three independently rated aspects of a recipe.
type RatingKind string

const (
	RatingDifficulty RatingKind = "difficulty"
	RatingPrice      RatingKind = "price"
	RatingOverall    RatingKind = "overall"
)

// RatingKinds lists every kind in a stable order.
var RatingKinds = []RatingKind{RatingDifficulty, RatingPrice, RatingOverall}

// ParseRatingKind validates a kind name.
func ParseRatingKind(raw string) (RatingKind, error) {
	k := RatingKind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case RatingDifficulty, RatingPrice, RatingOverall:
		return k, nil
	}
	return "", NewValidationError(fmt.Sprintf("Unknown rating kind %q", raw))
}

// Bounds returns the inclusive score range accepted for the kind.
func (k RatingKind) Bounds() (lo, hi float64) {
	switch k {
	case RatingOverall:
		return 0, 5
	default:
		return 0, 3
	}
}

// Column is the ratings table column holding this kind's sub-score.
func (k RatingKind) Column() string {
	return string(k)
}

// PostColumn is the posts table column holding this kind's aggregate.
func (k RatingKind) PostColumn() string {
	return string(k) + "_rating"
}

// ValidateScore rejects scores outside the kind's range.
func (k RatingKind) ValidateScore(score float64) error {
	lo, hi := k.Bounds()
	if score != score || score < lo || score > hi {
		return NewValidationError(fmt.Sprintf("%s score must be between %g and %g", k, lo, hi))
	}
	return nil
}

// Rating holds one user's sub-scores for one post. Each sub-score stays nil
// until the user first sets it.
type Rating struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	Difficulty *float64  `json:"difficulty"`
	Price      *float64  `json:"price"`
	Overall    *float64  `json:"overall"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Score returns the sub-score for kind, nil when unset.
func (r *Rating) Score(kind RatingKind) *float64 {
	switch kind {
	case RatingDifficulty:
		return r.Difficulty
	case RatingPrice:
		return r.Price
	case RatingOverall:
		return r.Overall
	}
	return nil
}

// SetScore sets (or clears, with nil) the sub-score for kind.
func (r *Rating) SetScore(kind RatingKind, v *float64) {
	switch kind {
	case RatingDifficulty:
		r.Difficulty = v
	case RatingPrice:
		r.Price = v
	case RatingOverall:
		r.Overall = v
	}
}

// Empty reports whether no sub-score is set.
func (r *Rating) Empty() bool {
	return r.Difficulty == nil && r.Price == nil && r.Overall == nil
}

// Aggregate is the sum and count of the non-null sub-scores of one kind on one post.
type Aggregate struct {
	Sum   float64 `json:"sum"`
	Count int64   `json:"count"`
}

// Mean returns Sum/Count and false when there is nothing to average.
func (a Aggregate) Mean() (float64, bool) {
	if a.Count <= 0 {
		return 0, false
	}
	return a.Sum / float64(a.Count), true
}
