package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// PostWithAuthor is a post row joined with its author's username, the shape
// every listing page needs.
type PostWithAuthor struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetWithAuthor(ctx context.Context, id string) (*PostWithAuthor, error)
	List(ctx context.Context, offset, limit int) ([]*PostWithAuthor, error)
	ListByTag(ctx context.Context, tagName string, offset, limit int) ([]*PostWithAuthor, error)
	Update(ctx context.Context, id, title, body string) error
	SetPrivacy(ctx context.Context, id string, isPrivate bool) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetWithAuthor(ctx context.Context, id string) (*PostWithAuthor, error) {
	var row PostWithAuthor
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id", "posts.author_id", "users.username", "posts.title", "posts.body", "posts.is_private", "posts.created_at").
		Joins("JOIN users ON posts.author_id = users.id").
		Where("posts.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *postRepository) List(ctx context.Context, offset, limit int) ([]*PostWithAuthor, error) {
	var rows []*PostWithAuthor
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id", "posts.author_id", "users.username", "posts.title", "posts.body", "posts.is_private", "posts.created_at").
		Joins("JOIN users ON posts.author_id = users.id").
		Order("posts.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *postRepository) ListByTag(ctx context.Context, tagName string, offset, limit int) ([]*PostWithAuthor, error) {
	var rows []*PostWithAuthor
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id", "posts.author_id", "users.username", "posts.title", "posts.body", "posts.is_private", "posts.created_at").
		Joins("JOIN users ON posts.author_id = users.id").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.name = ?", tagName).
		Order("posts.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *postRepository) Update(ctx context.Context, id, title, body string) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "body": body}).Error
}

func (r *postRepository) SetPrivacy(ctx context.Context, id string, isPrivate bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("is_private", isPrivate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}
