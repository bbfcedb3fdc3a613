package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// FeedService reads a user's timeline out of the inbox index.
type FeedService interface {
	Timeline(ctx context.Context, userID string, page, pageSize int) ([]*repository.PostWithAuthor, error)
}

type feedService struct {
	inboxRepo repository.InboxRepository
}

func NewFeedService(inboxRepo repository.InboxRepository) FeedService {
	return &feedService{inboxRepo: inboxRepo}
}

func (s *feedService) Timeline(ctx context.Context, userID string, page, pageSize int) ([]*repository.PostWithAuthor, error) {
	offset, limit := paginate(page, pageSize)
	return s.inboxRepo.ListTimeline(ctx, userID, offset, limit)
}

// FanoutWorker drains the outbox and delivers published posts to every
// follower's inbox. Private posts are delivered too: the timeline lists
// them, the access authority gates the detail read.
type FanoutWorker struct {
	db           *gorm.DB
	fanRepo      repository.FanRepository
	inboxRepo    repository.InboxRepository
	batchSize    int
	claimLimit   int
	pollInterval time.Duration
	workers      int
}

func NewFanoutWorker(db *gorm.DB, fanRepo repository.FanRepository, inboxRepo repository.InboxRepository, workers, batchSize, claimLimit int, pollInterval time.Duration) *FanoutWorker {
	if workers <= 0 {
		workers = 2
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	if claimLimit <= 0 {
		claimLimit = 128
	}
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return &FanoutWorker{db: db, fanRepo: fanRepo, inboxRepo: inboxRepo, workers: workers, batchSize: batchSize, claimLimit: claimLimit, pollInterval: pollInterval}
}

// Start launches the polling workers and returns a stop function.
func (w *FanoutWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *FanoutWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := w.ProcessOnce(context.Background()); err != nil {
				logger.Error("fanout pass failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claims a batch of pending outbox events and fans each one out
// to the author's followers. The claim flips status pending→processing
// inside a transaction so concurrent workers do not double-deliver; the
// inbox unique pair index backstops any retry.
func (w *FanoutWorker) ProcessOnce(ctx context.Context) error {
	var batch []model.Outbox
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ?", model.OutboxPending).
			Order("created_at").
			Limit(w.claimLimit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).
			Where("id IN ? AND status = ?", ids, model.OutboxPending).
			Update("status", model.OutboxProcessing).Error
	})
	if err != nil {
		return err
	}

	for _, event := range batch {
		if err := w.deliver(ctx, event); err != nil {
			logger.Error("fanout delivery failed", zap.String("post", event.PostID), zap.Error(err))
		}
	}
	return nil
}

func (w *FanoutWorker) deliver(ctx context.Context, event model.Outbox) error {
	offset := 0
	totalWritten := int64(0)
	now := time.Now()
	score := now.UnixNano()
	for {
		fans, err := w.fanRepo.ListFans(ctx, event.AuthorID, offset, w.batchSize)
		if err != nil {
			return err
		}
		if len(fans) == 0 {
			break
		}
		entries := make([]model.Inbox, 0, len(fans))
		for _, f := range fans {
			entries = append(entries, model.Inbox{
				ID:        uuid.New().String(),
				UserID:    f.FanID,
				PostID:    event.PostID,
				Score:     score,
				CreatedAt: now,
			})
		}
		if err := w.inboxRepo.CreateBatch(ctx, entries); err != nil {
			return err
		}
		totalWritten += int64(len(entries))
		if len(fans) < w.batchSize {
			break
		}
		offset += w.batchSize
	}

	processed := time.Now()
	return w.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"status":       model.OutboxDone,
			"processed_at": processed,
			"fanout_count": totalWritten,
		}).Error
}
