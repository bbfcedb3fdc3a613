package model

import "time"

// Post is a blog entry. IsPrivate gates the body behind the access-request
// workflow; the flag never affects the author's own reads.
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author;not null"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Body      string    `gorm:"type:text"`
	IsPrivate bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }
