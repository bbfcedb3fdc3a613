package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "  ", "Web", "web "})
	assert.Equal(t, []string{"go", "web"}, got)

	assert.Empty(t, NormalizeTags(nil))
}

func TestCreatePostWithTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	post, err := f.postSvc.Create(ctx, alice.ID, "Hello", "body", false, []string{"Go", "go", "web"})
	require.NoError(t, err)

	tags, err := f.tags.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)

	// Publish lands the outbox event in the same transaction.
	var out model.Outbox
	require.NoError(t, f.db.Where("post_id = ?", post.ID).First(&out).Error)
	assert.Equal(t, model.OutboxPending, out.Status)
	assert.Equal(t, alice.ID, out.AuthorID)
}

func TestCreatePostTitleRequired(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.postSvc.Create(context.Background(), alice.ID, "   ", "body", false, nil)
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestTagsAreSharedAcrossPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	_, err := f.postSvc.Create(ctx, alice.ID, "one", "", false, []string{"go"})
	require.NoError(t, err)
	_, err = f.postSvc.Create(ctx, alice.ID, "two", "", false, []string{"GO"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&model.Tag{}).Where("name = ?", "go").Count(&count).Error)
	assert.EqualValues(t, 1, count, "get-or-create must not duplicate tag rows")
}

func TestUpdatePostReplacesTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	post, err := f.postSvc.Create(ctx, alice.ID, "Hello", "body", false, []string{"go"})
	require.NoError(t, err)

	err = f.postSvc.Update(ctx, bob.ID, post.ID, "Hijack", "nope", nil)
	assert.ErrorIs(t, err, ErrNotAuthor)

	require.NoError(t, f.postSvc.Update(ctx, alice.ID, post.ID, "Hello v2", "body v2", []string{"rust", "web"}))

	tags, err := f.tags.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "web"}, tags)

	got, err := f.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello v2", got.Title)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	post, err := f.postSvc.Create(ctx, alice.ID, "Hello", "body", false, []string{"go"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.postSvc.Delete(ctx, bob.ID, post.ID), ErrNotAuthor)
	require.NoError(t, f.postSvc.Delete(ctx, alice.ID, post.ID))

	_, err = f.postSvc.Get(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	var links int64
	require.NoError(t, f.db.Model(&model.PostTag{}).Where("post_id = ?", post.ID).Count(&links).Error)
	assert.Zero(t, links, "tag links removed with the post")
}

func TestListByTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	_, err := f.postSvc.Create(ctx, alice.ID, "tagged", "", false, []string{"go"})
	require.NoError(t, err)
	_, err = f.postSvc.Create(ctx, alice.ID, "untagged", "", false, nil)
	require.NoError(t, err)

	rows, tagsByPost, err := f.postSvc.ListByTag(ctx, "Go", 1, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "tagged", rows[0].Title)
	assert.Equal(t, "alice", rows[0].Username)
	assert.Equal(t, []string{"go"}, tagsByPost[rows[0].ID])
}

func TestDetailIncludesAuthorAndTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	post, err := f.postSvc.Create(ctx, alice.ID, "detail", "body", true, []string{"go"})
	require.NoError(t, err)

	row, tags, err := f.postSvc.Detail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", row.Username)
	assert.True(t, row.IsPrivate)
	assert.Equal(t, []string{"go"}, tags)
}
