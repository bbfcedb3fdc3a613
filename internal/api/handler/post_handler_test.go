package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/api"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

type testApp struct {
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Expire: time.Hour, Issuer: "gin-blog-test"}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	accessRepo := repository.NewAccessRequestRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	h := handler.New(
		service.NewAuthService(userRepo, cfg.JWT),
		service.NewPostService(db, postRepo, tagRepo),
		service.NewCommentService(commentRepo, postRepo),
		service.NewAccessService(accessRepo, postRepo),
		service.NewRelationshipService(followRepo, fanRepo, nil, nil),
		service.NewFeedService(inboxRepo),
	)
	return &testApp{router: api.NewRouter(cfg, h)}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register + login, returning the bearer token.
func (a *testApp) signup(t *testing.T, username string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (a *testApp) createPost(t *testing.T, token, title string, private bool) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/posts", token, gin.H{
		"title": title, "body": "the body", "is_private": private, "tags": []string{"go"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestPostDetailVisibility(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	publicID := app.createPost(t, alice, "public post", false)
	privateID := app.createPost(t, alice, "private post", true)

	// Public post: readable anonymously and by anyone.
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/posts/"+publicID, "", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/posts/"+publicID, bob, nil).Code)

	// Private post: anonymous is told to log in, a stranger is refused,
	// the author reads it.
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/v1/posts/"+privateID, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/v1/posts/"+privateID, bob, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/posts/"+privateID, alice, nil).Code)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/v1/posts/missing", "", nil).Code)
}

func TestAccessRequestFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")
	privateID := app.createPost(t, alice, "private post", true)

	// Bob asks for access; asking twice reports the duplicate.
	path := fmt.Sprintf("/api/v1/posts/%s/access-requests", privateID)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, path, bob, nil).Code)
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPost, path, bob, nil).Code)

	// Bob cannot grant himself access.
	grantPath := fmt.Sprintf("/api/v1/posts/%s/access-grants", privateID)
	var bobID string
	{
		var resp struct {
			Data struct {
				Requests []struct {
					RequesterID string `json:"requester_id"`
				} `json:"requests"`
			} `json:"data"`
		}
		w := app.do(t, http.MethodGet, "/api/v1/access-requests/incoming", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Requests, 1)
		bobID = resp.Data.Requests[0].RequesterID
	}
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, grantPath, bob, gin.H{"requester_id": bobID}).Code)

	// Alice grants; Bob can now read. A second toggle revokes.
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, grantPath, alice, gin.H{"requester_id": bobID}).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/posts/"+privateID, bob, nil).Code)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, grantPath, alice, gin.H{"requester_id": bobID}).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/v1/posts/"+privateID, bob, nil).Code)
}

func TestSetPrivacyOverHTTP(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")
	postID := app.createPost(t, alice, "flip me", false)

	path := fmt.Sprintf("/api/v1/posts/%s/privacy", postID)

	// Only the author may flip privacy, and only to 0 or 1.
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, path, bob, gin.H{"is_private": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, path, alice, gin.H{"is_private": 2}).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, path, alice, gin.H{"is_private": 1}).Code)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/v1/posts/"+postID, bob, nil).Code)
}

func TestCommentRequiresViewAccess(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")
	privateID := app.createPost(t, alice, "private post", true)

	path := fmt.Sprintf("/api/v1/posts/%s/comments", privateID)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, path, bob, gin.H{"body": "nice"}).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, path, alice, gin.H{"body": "note to self"}).Code)
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	// Missing title fails binding.
	w := app.do(t, http.MethodPost, "/api/v1/posts", alice, gin.H{"body": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tag names are validated before normalization.
	w = app.do(t, http.MethodPost, "/api/v1/posts", alice, gin.H{"title": "t", "tags": []string{"ok", "not ok!"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Anonymous cannot publish.
	w = app.do(t, http.MethodPost, "/api/v1/posts", "", gin.H{"title": "t"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
