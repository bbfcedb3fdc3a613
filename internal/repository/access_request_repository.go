package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// AccessRequestView is a request row joined with the requester's username
// and the post title, the shape the owner's review page renders.
type AccessRequestView struct {
	RequesterID string              `json:"requester_id"`
	Requester   string              `json:"requester"`
	OwnerID     string              `json:"owner_id"`
	PostID      string              `json:"post_id"`
	PostTitle   string              `json:"post_title"`
	Status      model.RequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

type AccessRequestRepository interface {
	// Create inserts a pending-or-granted row for (requesterID, postID).
	// It reports created=false when a row for the pair already exists; the
	// unique pair index makes this atomic under concurrent calls.
	Create(ctx context.Context, requesterID, ownerID, postID string, status model.RequestStatus) (created bool, err error)
	Get(ctx context.Context, requesterID, postID string) (*model.AccessRequest, error)
	UpdateStatus(ctx context.Context, requesterID, postID string, status model.RequestStatus) error
	ListByOwner(ctx context.Context, ownerID string) ([]*AccessRequestView, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*model.AccessRequest, error)
}

type accessRequestRepository struct {
	db *gorm.DB
}

func NewAccessRequestRepository(db *gorm.DB) AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

func (r *accessRequestRepository) Create(ctx context.Context, requesterID, ownerID, postID string, status model.RequestStatus) (bool, error) {
	req := &model.AccessRequest{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		OwnerID:     ownerID,
		PostID:      postID,
		Status:      status,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "requester_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(req)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *accessRequestRepository) Get(ctx context.Context, requesterID, postID string) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND post_id = ?", requesterID, postID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepository) UpdateStatus(ctx context.Context, requesterID, postID string, status model.RequestStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.AccessRequest{}).
		Where("requester_id = ? AND post_id = ?", requesterID, postID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accessRequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]*AccessRequestView, error) {
	var rows []*AccessRequestView
	err := r.db.WithContext(ctx).
		Table("access_requests").
		Select("access_requests.requester_id", "users.username AS requester", "access_requests.owner_id",
			"access_requests.post_id", "posts.title AS post_title", "access_requests.status", "access_requests.created_at").
		Joins("JOIN posts ON access_requests.post_id = posts.id").
		Joins("JOIN users ON access_requests.requester_id = users.id").
		Where("access_requests.owner_id = ?", ownerID).
		Order("access_requests.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *accessRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*model.AccessRequest, error) {
	var rows []*model.AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
