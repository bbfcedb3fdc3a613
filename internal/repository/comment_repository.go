package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// CommentWithAuthor joins a comment with its author's username.
type CommentWithAuthor struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentRepository interface {
	Create(ctx context.Context, postID, authorID, body string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*CommentWithAuthor, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, postID, authorID, body string) (*model.Comment, error) {
	c := &model.Comment{ID: uuid.New().String(), PostID: postID, AuthorID: authorID, Body: body}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*CommentWithAuthor, error) {
	var rows []*CommentWithAuthor
	err := r.db.WithContext(ctx).
		Table("comments").
		Select("comments.id", "comments.post_id", "comments.author_id", "users.username", "comments.body", "comments.created_at").
		Joins("JOIN users ON comments.author_id = users.id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Scan(&rows).Error
	return rows, err
}
