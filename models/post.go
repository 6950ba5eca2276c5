package models

import "time"

type PostStatus string

const (
	StatusPending   PostStatus = "pending"
	StatusPublished PostStatus = "published"
	StatusRejected  PostStatus = "rejected"
	StatusArchived  PostStatus = "archived"
)

// ValidStatus reports whether s is one of the defined lifecycle states.
func ValidStatus(s PostStatus) bool {
	switch s {
	case StatusPending, StatusPublished, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// PostCategories is the closed allow-list a submission's category is
// validated against.
var PostCategories = []string{
	"politics", "business", "technology", "health", "entertainment",
	"sports", "science", "world", "local", "opinion", "weather", "crime",
}

// ValidCategory reports whether c is in the category allow-list.
func ValidCategory(c string) bool {
	for _, v := range PostCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Post is the central submission entity. Places and news posts share this
// shape; a post is publicly visible iff Status == published.
type Post struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	User        User       `json:"user" gorm:"foreignKey:UserID"`
	LocationID  uint       `json:"location_id" gorm:"not null;index"`
	Location    Location   `json:"location" gorm:"foreignKey:LocationID"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Slug        string     `json:"slug" gorm:"size:220;index"`
	Excerpt     string     `json:"excerpt" gorm:"size:255"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	ImageURL    string     `json:"image_url"`
	Category    string     `json:"category" gorm:"size:30;not null;index"`
	IsBreaking  bool       `json:"is_breaking" gorm:"default:false"`
	IsEmergency bool       `json:"is_emergency" gorm:"default:false"`
	Status      PostStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	ViewCount   int        `json:"view_count" gorm:"default:0"`
	Videos      []Video    `json:"videos,omitempty" gorm:"foreignKey:PostID"`
	Tags        []Tag      `json:"tags,omitempty" gorm:"many2many:post_tags;"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NearbyPost is a published post row annotated with its great-circle
// distance from the query point, in kilometers.
type NearbyPost struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	IsBreaking  bool      `json:"is_breaking"`
	IsEmergency bool      `json:"is_emergency"`
	City        *string   `json:"city"`
	Country     string    `json:"country"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Distance    float64   `json:"distance"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryCount is the number of published posts per category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
