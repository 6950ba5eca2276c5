package models

import "time"

// Tag is a canonical, globally shared tag. The slug is the dedup key.
type Tag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Slug      string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// PostTag links a post to a tag. The composite primary key makes repeated
// attaches of the same tag a no-op.
type PostTag struct {
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	TagID     uint      `json:"tag_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostTag) TableName() string {
	return "post_tags"
}

// TagCount is a tag with its published-post usage count.
type TagCount struct {
	Tag
	PostCount int64 `json:"post_count"`
}
