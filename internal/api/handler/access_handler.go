package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// RequestAccess files an access request for a private post
// @Summary Request access to a post
// @Tags access
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/access-requests [post]
func (h *Handler) RequestAccess(c *gin.Context) {
	postID := c.Param("id")
	post, err := h.postSvc.Get(c.Request.Context(), postID)
	if err != nil {
		h.writePostError(c, err)
		return
	}
	requesterID := middleware.UserID(c)
	if requesterID == post.AuthorID {
		response.BadRequest(c, "authors always have access to their own posts")
		return
	}
	err = h.accessSvc.RequestAccess(c.Request.Context(), requesterID, post.AuthorID, postID)
	if err != nil {
		switch err {
		case service.ErrAlreadyRequested:
			// Informational for the caller, not a failure of the store.
			response.Conflict(c, err.Error())
		case service.ErrPostNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"status": "pending"})
}

type toggleGrantRequest struct {
	RequesterID string `json:"requester_id" binding:"required"`
}

// ToggleGrant grants or revokes a requester's access to a post. Only the
// post's author may call this; re-invoking flips the grant back off.
// @Summary Toggle an access grant
// @Tags access
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body toggleGrantRequest true "requester"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/access-grants [post]
func (h *Handler) ToggleGrant(c *gin.Context) {
	var req toggleGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	postID := c.Param("id")
	post, err := h.postSvc.Get(c.Request.Context(), postID)
	if err != nil {
		h.writePostError(c, err)
		return
	}
	ownerID := middleware.UserID(c)
	// Ownership check is the handler's job; the access service trusts it.
	if post.AuthorID != ownerID {
		response.Forbidden(c, service.ErrNotAuthor.Error())
		return
	}
	if err := h.accessSvc.ToggleGrant(c.Request.Context(), ownerID, req.RequesterID, postID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListIncomingRequests lists requests against the caller's posts
// @Summary List incoming access requests
// @Tags access
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/access-requests/incoming [get]
func (h *Handler) ListIncomingRequests(c *gin.Context) {
	rows, err := h.accessSvc.ListIncoming(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"requests": rows})
}

// ListOutgoingRequests lists the caller's own requests and their states
// @Summary List outgoing access requests
// @Tags access
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/access-requests/outgoing [get]
func (h *Handler) ListOutgoingRequests(c *gin.Context) {
	rows, err := h.accessSvc.ListOutgoing(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]gin.H, len(rows))
	for i, r := range rows {
		out[i] = gin.H{"post_id": r.PostID, "owner_id": r.OwnerID, "status": r.Status.String(), "created_at": r.CreatedAt}
	}
	response.Success(c, gin.H{"requests": out})
}
