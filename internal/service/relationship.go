package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// RelationshipService manages the follow graph. Follows are written to the
// forward index synchronously; the reverse fans index is replicated
// asynchronously by the FanReplicator. Follower pages read through an
// optional Redis index.
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]*repository.FollowedUser, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	FollowingSet(ctx context.Context, userID string) (map[string]bool, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	replicator *FanReplicator
	fanCache   *cache.FollowerCache
}

func NewRelationshipService(followRepo repository.FollowRepository, fanRepo repository.FanRepository, replicator *FanReplicator, fanCache *cache.FollowerCache) RelationshipService {
	return &relationshipService{followRepo: followRepo, fanRepo: fanRepo, replicator: replicator, fanCache: fanCache}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	if err := s.followRepo.Create(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	if s.replicator != nil {
		s.replicator.EnqueueAdd(toUserID, fromUserID)
	}
	s.invalidateFans(ctx, toUserID)
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.followRepo.Delete(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	if s.replicator != nil {
		s.replicator.EnqueueRemove(toUserID, fromUserID)
	}
	s.invalidateFans(ctx, toUserID)
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]*repository.FollowedUser, error) {
	offset, limit := paginate(page, pageSize)
	return s.followRepo.ListFollowings(ctx, userID, offset, limit)
}

func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := paginate(page, pageSize)

	if s.fanCache != nil {
		if ids, hit, err := s.fanCache.GetPage(ctx, userID, offset, limit); err == nil && hit {
			return ids, nil
		}
		// Miss: rebuild the whole index, then slice the requested page.
		allIDs, err := s.fanRepo.ListFanIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.fanCache.SetAll(ctx, userID, allIDs); err != nil {
			logger.Warn("follower cache rebuild failed", zap.String("user", userID), zap.Error(err))
		}
		if offset >= len(allIDs) {
			return []string{}, nil
		}
		end := offset + limit
		if end > len(allIDs) {
			end = len(allIDs)
		}
		return allIDs[offset:end], nil
	}

	fans, err := s.fanRepo.ListFans(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(fans))
	for i, f := range fans {
		ids[i] = f.FanID
	}
	return ids, nil
}

func (s *relationshipService) invalidateFans(ctx context.Context, userID string) {
	if s.fanCache == nil {
		return
	}
	if err := s.fanCache.Invalidate(ctx, userID); err != nil {
		logger.Warn("follower cache invalidation failed", zap.String("user", userID), zap.Error(err))
	}
}

// FollowingSet returns the ids userID follows, for marking listing pages.
func (s *relationshipService) FollowingSet(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := s.followRepo.ListFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
