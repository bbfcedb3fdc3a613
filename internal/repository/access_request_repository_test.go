package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func setupAccessDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}, &model.AccessRequest{}))
	return db
}

func TestCreateEnforcesPairUniqueness(t *testing.T) {
	db := setupAccessDB(t)
	repo := NewAccessRequestRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, "bob", "alice", "p1", model.StatusPending)
	require.NoError(t, err)
	assert.True(t, created)

	// Same pair again: the unique index absorbs the write atomically.
	created, err = repo.Create(ctx, "bob", "alice", "p1", model.StatusPending)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&model.AccessRequest{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A different post is a different pair.
	created, err = repo.Create(ctx, "bob", "alice", "p2", model.StatusPending)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestUpdateStatusMissingRow(t *testing.T) {
	db := setupAccessDB(t)
	repo := NewAccessRequestRepository(db)

	err := repo.UpdateStatus(context.Background(), "bob", "p1", model.StatusGranted)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetAndUpdateStatus(t *testing.T) {
	db := setupAccessDB(t)
	repo := NewAccessRequestRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "bob", "alice", "p1", model.StatusPending)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, "bob", "p1", model.StatusGranted))
	req, err := repo.Get(ctx, "bob", "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusGranted, req.Status)
}
