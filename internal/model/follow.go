package model

import "time"

// Follow is a directed edge: FollowerID follows FolloweeID.
// ux_follow_pair = (follower_id, followee_id), so the edge is unique.
type Follow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	FollowerID string `gorm:"type:varchar(36);index:idx_follow_follower;uniqueIndex:ux_follow_pair;not null"`
	FolloweeID string `gorm:"type:varchar(36);uniqueIndex:ux_follow_pair;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Follow) TableName() string { return "follows" }
