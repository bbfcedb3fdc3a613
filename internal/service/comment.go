package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/gin-blog/internal/repository"
)

// CommentService appends comments to posts. View access to the post is
// checked by the handler via the access service before calling Add.
type CommentService interface {
	Add(ctx context.Context, postID, authorID, body string) error
	ListByPost(ctx context.Context, postID string) ([]*repository.CommentWithAuthor, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *commentService) Add(ctx context.Context, postID, authorID, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrBodyRequired
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return ErrPostNotFound
	}
	_, err := s.commentRepo.Create(ctx, postID, authorID, body)
	return err
}

func (s *commentService) ListByPost(ctx context.Context, postID string) ([]*repository.CommentWithAuthor, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
