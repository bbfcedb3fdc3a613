package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

// PostService owns the post lifecycle: create/update/delete with tag
// maintenance, plus the joined reads the pages need. Creation lands the
// post and its outbox event in one transaction so fanout never misses a
// publish.
type PostService interface {
	Create(ctx context.Context, authorID, title, body string, isPrivate bool, tags []string) (*model.Post, error)
	Update(ctx context.Context, authorID, postID, title, body string, tags []string) error
	Delete(ctx context.Context, authorID, postID string) error
	Get(ctx context.Context, postID string) (*model.Post, error)
	Detail(ctx context.Context, postID string) (*repository.PostWithAuthor, []string, error)
	List(ctx context.Context, page, pageSize int) ([]*repository.PostWithAuthor, map[string][]string, error)
	ListByTag(ctx context.Context, tag string, page, pageSize int) ([]*repository.PostWithAuthor, map[string][]string, error)
}

type postService struct {
	db       *gorm.DB
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
}

func NewPostService(db *gorm.DB, postRepo repository.PostRepository, tagRepo repository.TagRepository) PostService {
	return &postService{db: db, postRepo: postRepo, tagRepo: tagRepo}
}

// NormalizeTags trims, lower-cases and deduplicates raw tag names, dropping
// empties. The result is sorted so writes are deterministic.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		name := strings.ToLower(strings.TrimSpace(t))
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *postService) Create(ctx context.Context, authorID, title, body string, isPrivate bool, tags []string) (*model.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	now := time.Now()
	post := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		IsPrivate: isPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	names := NormalizeTags(tags)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, name := range names {
			tag, err := s.tagRepo.GetOrCreate(ctx, tx, name)
			if err != nil {
				return err
			}
			if err := s.tagRepo.Attach(ctx, tx, post.ID, tag.ID); err != nil {
				return err
			}
		}
		out := &model.Outbox{
			ID:        uuid.New().String(),
			PostID:    post.ID,
			AuthorID:  authorID,
			CreatedAt: now,
			Status:    model.OutboxPending,
		}
		return tx.Create(out).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, authorID, postID, title, body string, tags []string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return ErrNotAuthor
	}
	names := NormalizeTags(tags)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).
			Updates(map[string]any{"title": title, "body": body}).Error; err != nil {
			return err
		}
		if err := s.tagRepo.DetachAll(ctx, tx, postID); err != nil {
			return err
		}
		for _, name := range names {
			tag, err := s.tagRepo.GetOrCreate(ctx, tx, name)
			if err != nil {
				return err
			}
			if err := s.tagRepo.Attach(ctx, tx, postID, tag.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *postService) Delete(ctx context.Context, authorID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return ErrNotAuthor
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tagRepo.DetachAll(ctx, tx, postID); err != nil {
			return err
		}
		return tx.Where("id = ?", postID).Delete(&model.Post{}).Error
	})
}

func (s *postService) Get(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) Detail(ctx context.Context, postID string) (*repository.PostWithAuthor, []string, error) {
	row, err := s.postRepo.GetWithAuthor(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPostNotFound
		}
		return nil, nil, err
	}
	tags, err := s.tagRepo.ListForPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return row, tags, nil
}

func (s *postService) List(ctx context.Context, page, pageSize int) ([]*repository.PostWithAuthor, map[string][]string, error) {
	offset, limit := paginate(page, pageSize)
	rows, err := s.postRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.tagsFor(ctx, rows)
	return rows, tags, err
}

func (s *postService) ListByTag(ctx context.Context, tag string, page, pageSize int) ([]*repository.PostWithAuthor, map[string][]string, error) {
	offset, limit := paginate(page, pageSize)
	rows, err := s.postRepo.ListByTag(ctx, strings.ToLower(strings.TrimSpace(tag)), offset, limit)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.tagsFor(ctx, rows)
	return rows, tags, err
}

func (s *postService) tagsFor(ctx context.Context, rows []*repository.PostWithAuthor) (map[string][]string, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return s.tagRepo.ListForPosts(ctx, ids)
}

func paginate(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
