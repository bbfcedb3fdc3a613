package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

type TagRepository interface {
	// GetOrCreate returns the tag named name, creating it on first use.
	// name must already be normalized (trimmed, lower-cased).
	GetOrCreate(ctx context.Context, tx *gorm.DB, name string) (*model.Tag, error)
	// Attach links a tag to a post; duplicate links are ignored.
	Attach(ctx context.Context, tx *gorm.DB, postID, tagID string) error
	// DetachAll removes every tag link for a post.
	DetachAll(ctx context.Context, tx *gorm.DB, postID string) error
	ListForPost(ctx context.Context, postID string) ([]string, error)
	ListForPosts(ctx context.Context, postIDs []string) (map[string][]string, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository { return &tagRepository{db: db} }

// use returns tx when the caller runs inside a transaction, else the pool.
func (r *tagRepository) use(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *tagRepository) GetOrCreate(ctx context.Context, tx *gorm.DB, name string) (*model.Tag, error) {
	db := r.use(tx).WithContext(ctx)
	var tag model.Tag
	err := db.Where("name = ?", name).Take(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	tag = model.Tag{ID: uuid.New().String(), Name: name}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error; err != nil {
		return nil, err
	}
	// A concurrent writer may have won the insert; re-read for the real ID.
	if err := db.Where("name = ?", name).Take(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Attach(ctx context.Context, tx *gorm.DB, postID, tagID string) error {
	link := &model.PostTag{ID: uuid.New().String(), PostID: postID, TagID: tagID}
	return r.use(tx).WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
}

func (r *tagRepository) DetachAll(ctx context.Context, tx *gorm.DB, postID string) error {
	return r.use(tx).WithContext(ctx).Where("post_id = ?", postID).Delete(&model.PostTag{}).Error
}

func (r *tagRepository) ListForPost(ctx context.Context, postID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", postID).
		Order("tags.name").
		Scan(&names).Error
	return names, err
}

func (r *tagRepository) ListForPosts(ctx context.Context, postIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PostID string
		Name   string
	}
	err := r.db.WithContext(ctx).
		Table("post_tags").
		Select("post_tags.post_id", "tags.name").
		Joins("JOIN tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id IN ?", postIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Name)
	}
	return result, nil
}
