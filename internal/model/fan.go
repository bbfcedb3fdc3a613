package model

import "time"

// Fan is the reverse index of Follow (UserID's follower is FanID),
// maintained asynchronously so follower pages read their own table.
// ux_fan_pair = (user_id, fan_id)
type Fan struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_fan_user;uniqueIndex:ux_fan_pair;not null"`
	FanID     string `gorm:"type:varchar(36);uniqueIndex:ux_fan_pair;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Fan) TableName() string { return "fans" }
