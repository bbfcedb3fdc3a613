package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	posts     repository.PostRepository
	tags      repository.TagRepository
	comments  repository.CommentRepository
	follows   repository.FollowRepository
	fans      repository.FanRepository
	requests  repository.AccessRequestRepository
	inbox     repository.InboxRepository
	postSvc   PostService
	accessSvc AccessService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)
	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		tags:     repository.NewTagRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		fans:     repository.NewFanRepository(db),
		requests: repository.NewAccessRequestRepository(db),
		inbox:    repository.NewInboxRepository(db),
	}
	f.postSvc = NewPostService(db, f.posts, f.tags)
	f.accessSvc = NewAccessService(f.requests, f.posts)
	return f
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), username, "hash")
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, authorID, title string, private bool) *model.Post {
	t.Helper()
	p, err := f.postSvc.Create(context.Background(), authorID, title, "body of "+title, private, nil)
	require.NoError(t, err)
	return p
}
