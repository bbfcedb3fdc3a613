package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func TestFollowSelfRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	svc := NewRelationshipService(f.follows, f.fans, nil, nil)
	err := svc.Follow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrFollowSelf)
}

func TestFollowIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	svc := NewRelationshipService(f.follows, f.fans, nil, nil)
	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID), "duplicate follow is a no-op")

	var count int64
	require.NoError(t, f.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", bob.ID, alice.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUnfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	svc := NewRelationshipService(f.follows, f.fans, nil, nil)
	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, svc.Unfollow(ctx, bob.ID, alice.ID))

	exists, err := f.follows.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReplicatorLandsFans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	replicator := NewFanReplicator(f.fans, 16)
	stop := replicator.Start(1)
	defer func() { _ = stop(ctx) }()

	svc := NewRelationshipService(f.follows, f.fans, replicator, nil)
	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))

	assert.Eventually(t, func() bool {
		fans, err := f.fans.ListFans(ctx, alice.ID, 0, 10)
		return err == nil && len(fans) == 1 && fans[0].FanID == bob.ID
	}, 2*time.Second, 10*time.Millisecond, "fan index catches up asynchronously")
}

func TestFollowingSetAndListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	svc := NewRelationshipService(f.follows, f.fans, nil, nil)
	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, svc.Follow(ctx, bob.ID, carol.ID))

	set, err := svc.FollowingSet(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, set[alice.ID])
	assert.True(t, set[carol.ID])
	assert.False(t, set[bob.ID])

	list, err := svc.ListFollowing(ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	usernames := []string{list[0].Username, list[1].Username}
	assert.ElementsMatch(t, []string{"alice", "carol"}, usernames)
}
