// Package handler holds the HTTP request handlers. Handlers resolve the
// viewer identity, translate service results into responses, and own the
// ownership checks the access service documents as caller preconditions.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type Handler struct {
	authSvc    service.AuthService
	postSvc    service.PostService
	commentSvc service.CommentService
	accessSvc  service.AccessService
	relSvc     service.RelationshipService
	feedSvc    service.FeedService
}

func New(authSvc service.AuthService, postSvc service.PostService, commentSvc service.CommentService,
	accessSvc service.AccessService, relSvc service.RelationshipService, feedSvc service.FeedService) *Handler {
	return &Handler{
		authSvc:    authSvc,
		postSvc:    postSvc,
		commentSvc: commentSvc,
		accessSvc:  accessSvc,
		relSvc:     relSvc,
		feedSvc:    feedSvc,
	}
}

// requireView runs the access decision for the current viewer against the
// post and writes the deny response itself. Returns true on Allow.
func (h *Handler) requireView(c *gin.Context, postID string) bool {
	post, err := h.postSvc.Get(c.Request.Context(), postID)
	if err != nil {
		if err == service.ErrPostNotFound {
			response.NotFound(c, "post not found")
		} else {
			response.InternalError(c, err)
		}
		return false
	}
	decision, err := h.accessSvc.CanView(c.Request.Context(), middleware.UserID(c), post)
	if err != nil {
		response.InternalError(c, err)
		return false
	}
	switch decision {
	case service.Allow:
		return true
	case service.DenyRequiresLogin:
		response.Unauthorized(c, "login required to view this post")
	default:
		response.Forbidden(c, "you do not have access to this post")
	}
	return false
}
