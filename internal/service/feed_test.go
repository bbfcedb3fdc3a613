package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func TestFanoutDeliversToFollowers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	require.NoError(t, f.fans.Create(ctx, alice.ID, bob.ID))
	require.NoError(t, f.fans.Create(ctx, alice.ID, carol.ID))

	post, err := f.postSvc.Create(ctx, alice.ID, "fanout me", "body", false, nil)
	require.NoError(t, err)

	worker := NewFanoutWorker(f.db, f.fans, f.inbox, 1, 100, 10, 0)
	require.NoError(t, worker.ProcessOnce(ctx))

	feedSvc := NewFeedService(f.inbox)
	for _, follower := range []string{bob.ID, carol.ID} {
		timeline, err := feedSvc.Timeline(ctx, follower, 1, 10)
		require.NoError(t, err)
		require.Len(t, timeline, 1)
		assert.Equal(t, post.ID, timeline[0].ID)
		assert.Equal(t, "alice", timeline[0].Username)
	}

	var out model.Outbox
	require.NoError(t, f.db.Where("post_id = ?", post.ID).First(&out).Error)
	assert.Equal(t, model.OutboxDone, out.Status)
	assert.EqualValues(t, 2, out.FanoutCount)
	assert.NotNil(t, out.ProcessedAt)
}

func TestFanoutDoesNotRedeliver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	require.NoError(t, f.fans.Create(ctx, alice.ID, bob.ID))
	_, err := f.postSvc.Create(ctx, alice.ID, "once", "body", false, nil)
	require.NoError(t, err)

	worker := NewFanoutWorker(f.db, f.fans, f.inbox, 1, 100, 10, 0)
	require.NoError(t, worker.ProcessOnce(ctx))
	require.NoError(t, worker.ProcessOnce(ctx), "second pass finds nothing pending")

	var count int64
	require.NoError(t, f.db.Model(&model.Inbox{}).Where("user_id = ?", bob.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTimelineOrderNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	require.NoError(t, f.fans.Create(ctx, alice.ID, bob.ID))

	first, err := f.postSvc.Create(ctx, alice.ID, "first", "", false, nil)
	require.NoError(t, err)
	worker := NewFanoutWorker(f.db, f.fans, f.inbox, 1, 100, 10, 0)
	require.NoError(t, worker.ProcessOnce(ctx))

	second, err := f.postSvc.Create(ctx, alice.ID, "second", "", false, nil)
	require.NoError(t, err)
	require.NoError(t, worker.ProcessOnce(ctx))

	timeline, err := NewFeedService(f.inbox).Timeline(ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, second.ID, timeline[0].ID)
	assert.Equal(t, first.ID, timeline[1].ID)
}
