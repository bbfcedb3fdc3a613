package model

import "time"

// RequestStatus is the two-state access-request latch. There is no third
// value: a denied request stays Pending and the grant action toggles.
type RequestStatus int8

const (
	StatusPending RequestStatus = 0
	StatusGranted RequestStatus = 1
)

func (s RequestStatus) String() string {
	if s == StatusGranted {
		return "granted"
	}
	return "pending"
}

// AccessRequest tracks one user's request to read another user's private
// post. At most one row exists per (requester, post) pair.
// ux_access_pair = (requester_id, post_id)
type AccessRequest struct {
	ID          string        `gorm:"primaryKey;type:varchar(36)"`
	RequesterID string        `gorm:"type:varchar(36);index:idx_access_requester;uniqueIndex:ux_access_pair;not null"`
	OwnerID     string        `gorm:"type:varchar(36);index:idx_access_owner;not null"`
	PostID      string        `gorm:"type:varchar(36);uniqueIndex:ux_access_pair;not null"`
	Status      RequestStatus `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AccessRequest) TableName() string { return "access_requests" }
