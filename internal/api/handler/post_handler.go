package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type createPostRequest struct {
	Title     string   `json:"title" binding:"required,max=200"`
	Body      string   `json:"body"`
	IsPrivate bool     `json:"is_private"`
	Tags      []string `json:"tags" binding:"omitempty,dive,tagname"`
}

type updatePostRequest struct {
	Title string   `json:"title" binding:"required,max=200"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags" binding:"omitempty,dive,tagname"`
}

type setPrivacyRequest struct {
	// Raw form value; must be exactly 0 or 1. Validated by the service so
	// out-of-range values surface as InvalidValue, not a binding error.
	IsPrivate *int `json:"is_private" binding:"required"`
}

type postView struct {
	*repository.PostWithAuthor
	Tags []string `json:"tags"`
	// Body is omitted on listings of private posts the viewer cannot read.
	Following bool `json:"following,omitempty"`
}

// ListPosts lists posts newest-first
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Param tag query string false "filter by tag name"
// @Success 200 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var (
		rows []*repository.PostWithAuthor
		tags map[string][]string
		err  error
	)
	if tag := c.Query("tag"); tag != "" {
		rows, tags, err = h.postSvc.ListByTag(c.Request.Context(), tag, page, pageSize)
	} else {
		rows, tags, err = h.postSvc.List(c.Request.Context(), page, pageSize)
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	viewerID := middleware.UserID(c)
	following := map[string]bool{}
	if viewerID != "" {
		if set, err := h.relSvc.FollowingSet(c.Request.Context(), viewerID); err == nil {
			following = set
		}
	}

	views := make([]*postView, len(rows))
	for i, row := range rows {
		view := &postView{PostWithAuthor: row, Tags: tags[row.ID], Following: following[row.AuthorID]}
		// Listings show private posts as titles only; the body stays
		// behind the access check on the detail route.
		if row.IsPrivate && row.AuthorID != viewerID {
			view.Body = ""
		}
		views[i] = view
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "posts": views})
}

// GetPost returns one post with its tags and comments, gated by the
// visibility rules
// @Summary Get post detail
// @Tags posts
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	postID := c.Param("id")
	if !h.requireView(c, postID) {
		return
	}
	row, tags, err := h.postSvc.Detail(c.Request.Context(), postID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	comments, err := h.commentSvc.ListByPost(c.Request.Context(), postID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post": row, "tags": tags, "comments": comments})
}

// CreatePost publishes a post
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body createPostRequest true "post"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postSvc.Create(c.Request.Context(), middleware.UserID(c), req.Title, req.Body, req.IsPrivate, req.Tags)
	if err != nil {
		if err == service.ErrTitleRequired {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"id": post.ID})
}

// UpdatePost edits a post's title, body and tags
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body updatePostRequest true "post"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.postSvc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Title, req.Body, req.Tags)
	if err != nil {
		h.writePostError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeletePost removes a post
// @Summary Delete a post
// @Tags posts
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	err := h.postSvc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.writePostError(c, err)
		return
	}
	response.Success(c, nil)
}

// SetPrivacy flips a post between public and private. Grants already on
// file survive; making a post private again restores prior access.
// @Summary Set post privacy
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body setPrivacyRequest true "privacy flag, 0 or 1"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/privacy [post]
func (h *Handler) SetPrivacy(c *gin.Context) {
	var req setPrivacyRequest
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
	if post.AuthorID != middleware.UserID(c) {
		response.Forbidden(c, service.ErrNotAuthor.Error())
		return
	}
	if err := h.accessSvc.SetPrivacy(c.Request.Context(), postID, *req.IsPrivate); err != nil {
		if err == service.ErrInvalidPrivacy {
			response.BadRequest(c, err.Error())
			return
		}
		h.writePostError(c, err)
		return
	}
	response.Success(c, nil)
}

// CreateComment appends a comment to a post the viewer can read
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body commentRequest true "comment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	postID := c.Param("id")
	if !h.requireView(c, postID) {
		return
	}
	if err := h.commentSvc.Add(c.Request.Context(), postID, middleware.UserID(c), req.Body); err != nil {
		if err == service.ErrBodyRequired {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) writePostError(c *gin.Context, err error) {
	switch err {
	case service.ErrPostNotFound:
		response.NotFound(c, err.Error())
	case service.ErrNotAuthor:
		response.Forbidden(c, err.Error())
	case service.ErrTitleRequired:
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
