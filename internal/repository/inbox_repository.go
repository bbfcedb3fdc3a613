package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

type InboxRepository interface {
	// CreateBatch inserts timeline entries, skipping (user, post) pairs that
	// were already delivered.
	CreateBatch(ctx context.Context, entries []model.Inbox) error
	ListTimeline(ctx context.Context, userID string, offset, limit int) ([]*PostWithAuthor, error)
}

type inboxRepository struct {
	db *gorm.DB
}

func NewInboxRepository(db *gorm.DB) InboxRepository { return &inboxRepository{db: db} }

func (r *inboxRepository) CreateBatch(ctx context.Context, entries []model.Inbox) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}

func (r *inboxRepository) ListTimeline(ctx context.Context, userID string, offset, limit int) ([]*PostWithAuthor, error) {
	var rows []*PostWithAuthor
	err := r.db.WithContext(ctx).
		Table("inbox").
		Select("posts.id", "posts.author_id", "users.username", "posts.title", "posts.body", "posts.is_private", "posts.created_at").
		Joins("JOIN posts ON inbox.post_id = posts.id").
		Joins("JOIN users ON posts.author_id = users.id").
		Where("inbox.user_id = ?", userID).
		Order("inbox.score DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, err
}
