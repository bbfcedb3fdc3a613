package model

import "time"

// Tag names are stored lower-cased and created on first use.
type Tag struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Tag) TableName() string { return "tags" }

// PostTag links posts and tags.
// ux_post_tag = (post_id, tag_id)
type PostTag struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	PostID string `gorm:"type:varchar(36);index:idx_post_tag_post;uniqueIndex:ux_post_tag;not null"`
	TagID  string `gorm:"type:varchar(36);index:idx_post_tag_tag;uniqueIndex:ux_post_tag;not null"`
}

func (PostTag) TableName() string { return "post_tags" }
