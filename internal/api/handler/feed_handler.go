package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Feed returns the caller's timeline, newest-first. Private posts appear as
// titles; their bodies stay behind the detail-route access check.
// @Summary Read the timeline
// @Tags feed
// @Produce json
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	userID := middleware.UserID(c)
	rows, err := h.feedSvc.Timeline(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	for _, row := range rows {
		if row.IsPrivate && row.AuthorID != userID {
			row.Body = ""
		}
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "posts": rows})
}
