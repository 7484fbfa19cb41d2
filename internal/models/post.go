package models

import (
	"time"
)

// Post represents a published recipe.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"post_id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Title       string `gorm:"not null" json:"title"`
	Ingredients string `gorm:"type:text;not null" json:"ingredients"`
	Recipe      string `gorm:"type:text" json:"recipe"`
	// RecipeTime is the preparation time in minutes.
	RecipeTime int    `gorm:"not null;default:0" json:"recipe_time"`
	Tags       TagSet `gorm:"type:text;serializer:json" json:"tags"`

	// Aggregates over all ratings of the post. They stay at their last value
	// when every rating of a kind has been cleared.
	DifficultyRating float64 `gorm:"not null;default:0" json:"difficulty_rating"`
	PriceRating      float64 `gorm:"not null;default:0" json:"price_rating"`
	OverallRating    float64 `gorm:"not null;default:0" json:"overall_rating"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Images   []Image   `gorm:"-" json:"images,omitempty"`
}

// AggregateFor returns the aggregate field matching kind.
func (p *Post) AggregateFor(kind RatingKind) float64 {
	switch kind {
	case RatingDifficulty:
		return p.DifficultyRating
	case RatingPrice:
		return p.PriceRating
	default:
		return p.OverallRating
	}
}

// SetAggregate overwrites the aggregate field matching kind.
func (p *Post) SetAggregate(kind RatingKind, v float64) {
	switch kind {
	case RatingDifficulty:
		p.DifficultyRating = v
	case RatingPrice:
		p.PriceRating = v
	case RatingOverall:
		p.OverallRating = v
	}
}
