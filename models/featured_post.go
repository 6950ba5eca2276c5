package models

import "time"

// FeaturedPost pins a post to the curated front listing. At most one row
// per post; featuring an already featured post is a no-op.
type FeaturedPost struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	PostID     uint      `json:"post_id" gorm:"uniqueIndex;not null"`
	FeaturedBy uint      `json:"featured_by" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
