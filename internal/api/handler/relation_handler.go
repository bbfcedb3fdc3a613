package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type followRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Follow subscribes the caller to an author
// @Summary Follow an author
// @Tags relations
// @Accept json
// @Produce json
// @Param request body followRequest true "author to follow"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/relations/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.relSvc.Follow(c.Request.Context(), middleware.UserID(c), req.UserID); err != nil {
		if err == service.ErrFollowSelf {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow removes a subscription
// @Summary Unfollow an author
// @Tags relations
// @Accept json
// @Produce json
// @Param request body followRequest true "author to unfollow"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/relations/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.relSvc.Unfollow(c.Request.Context(), middleware.UserID(c), req.UserID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing lists the authors the caller follows
// @Summary List subscriptions
// @Tags relations
// @Produce json
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/relations/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, err := h.relSvc.ListFollowing(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "following": list})
}

// ListFans lists a user's followers (served from the redundant fans index,
// through the Redis cache when configured)
// @Summary List followers
// @Tags relations
// @Produce json
// @Param user_id path string true "user id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/relations/{user_id}/fans [get]
func (h *Handler) ListFans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, err := h.relSvc.ListFans(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "fans": list})
}
