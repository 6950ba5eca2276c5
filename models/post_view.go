package models

import "time"

// PostView records one counted view of a post. The (post, IP, 1 hour)
// window deduplicates repeat views; the counter is explicitly approximate
// under concurrency.
type PostView struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	PostID    uint      `json:"post_id" gorm:"not null;index:idx_view_dedup"`
	UserID    *uint     `json:"user_id"`
	IPAddress string    `json:"ip_address" gorm:"size:45;index:idx_view_dedup"`
	UserAgent string    `json:"user_agent" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_view_dedup"`
}
