package models

import (
	"time"
)

// Follow is a directed edge: FollowerID sees FollowedID's posts in their feed.
// The composite primary key serves lookups by follower; the secondary index
// serves lookups by followed user.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;index:idx_follows_followed" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
