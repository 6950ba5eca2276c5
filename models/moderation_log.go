package models

import "time"

type ModerationAction string

const (
	ActionSubmitted    ModerationAction = "submitted"
	ActionApproved     ModerationAction = "approved"
	ActionRejected     ModerationAction = "rejected"
	ActionStatusChange ModerationAction = "status_change"
	ActionDeleted      ModerationAction = "deleted"
)

// ModerationLog is the append-only audit record of who did what to which
// post and when. Rows are never updated or deleted; a nil UserID means the
// system acted. These rows intentionally outlive the post they reference.
type ModerationLog struct {
	ID        uint             `json:"id" gorm:"primarykey"`
	UserID    *uint            `json:"user_id" gorm:"index"`
	PostID    uint             `json:"post_id" gorm:"not null;index"`
	Action    ModerationAction `json:"action" gorm:"size:30;not null"`
	Details   string           `json:"details" gorm:"type:text"`
	CreatedAt time.Time        `json:"created_at"`
}
