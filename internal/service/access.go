package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

// Decision is the outcome of a read-access check on a post.
type Decision int

const (
	Allow Decision = iota
	DenyRequiresLogin
	DenyNoAccess
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyRequiresLogin:
		return "requires_login"
	default:
		return "no_access"
	}
}

// AccessService decides who may read a post and runs the access-request
// state machine. Ownership of the post in ToggleGrant and SetPrivacy is
// verified by the calling handler; the service trusts ownerID.
type AccessService interface {
	// CanView evaluates read access for a viewer against a post record.
	// viewerID is empty for anonymous viewers. No side effects.
	CanView(ctx context.Context, viewerID string, post *model.Post) (Decision, error)

	// RequestAccess files a pending request for (requesterID, postID).
	// A second call while a pending or granted row exists is a no-op that
	// returns ErrAlreadyRequested.
	RequestAccess(ctx context.Context, requesterID, ownerID, postID string) error

	// ToggleGrant flips the request between pending and granted, creating a
	// granted row when none exists so an author can grant unprompted.
	// Re-invoking revokes: the action is a two-state latch.
	ToggleGrant(ctx context.Context, ownerID, requesterID, postID string) error

	// SetPrivacy sets the post's private flag from a raw form value that
	// must be exactly 0 or 1. Existing grants are left untouched, so access
	// survives a post being made private again.
	SetPrivacy(ctx context.Context, postID string, isPrivate int) error

	// ListIncoming returns the requests against ownerID's posts.
	ListIncoming(ctx context.Context, ownerID string) ([]*repository.AccessRequestView, error)
	// ListOutgoing returns requesterID's own requests and their states.
	ListOutgoing(ctx context.Context, requesterID string) ([]*model.AccessRequest, error)
}

type accessService struct {
	accessRepo repository.AccessRequestRepository
	postRepo   repository.PostRepository
}

func NewAccessService(accessRepo repository.AccessRequestRepository, postRepo repository.PostRepository) AccessService {
	return &accessService{accessRepo: accessRepo, postRepo: postRepo}
}

func (s *accessService) CanView(ctx context.Context, viewerID string, post *model.Post) (Decision, error) {
	if !post.IsPrivate {
		return Allow, nil
	}
	if viewerID == "" {
		return DenyRequiresLogin, nil
	}
	if viewerID == post.AuthorID {
		return Allow, nil
	}
	req, err := s.accessRepo.Get(ctx, viewerID, post.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DenyNoAccess, nil
		}
		return DenyNoAccess, err
	}
	if req.Status == model.StatusGranted {
		return Allow, nil
	}
	return DenyNoAccess, nil
}

func (s *accessService) RequestAccess(ctx context.Context, requesterID, ownerID, postID string) error {
	if requesterID == "" || ownerID == "" {
		return ErrUserNotFound
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	created, err := s.accessRepo.Create(ctx, requesterID, ownerID, postID, model.StatusPending)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyRequested
	}
	return nil
}

func (s *accessService) ToggleGrant(ctx context.Context, ownerID, requesterID, postID string) error {
	req, err := s.accessRepo.Get(ctx, requesterID, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No request on file: grant directly, skipping pending.
			_, err := s.accessRepo.Create(ctx, requesterID, ownerID, postID, model.StatusGranted)
			return err
		}
		return err
	}

	next := model.StatusGranted
	if req.Status == model.StatusGranted {
		next = model.StatusPending
	}
	return s.accessRepo.UpdateStatus(ctx, requesterID, postID, next)
}

func (s *accessService) SetPrivacy(ctx context.Context, postID string, isPrivate int) error {
	if isPrivate != 0 && isPrivate != 1 {
		return ErrInvalidPrivacy
	}
	if err := s.postRepo.SetPrivacy(ctx, postID, isPrivate == 1); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *accessService) ListIncoming(ctx context.Context, ownerID string) ([]*repository.AccessRequestView, error) {
	return s.accessRepo.ListByOwner(ctx, ownerID)
}

func (s *accessService) ListOutgoing(ctx context.Context, requesterID string) ([]*model.AccessRequest, error) {
	return s.accessRepo.ListByRequester(ctx, requesterID)
}
