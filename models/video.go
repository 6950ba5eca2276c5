package models

import "time"

type VideoType string

const (
	VideoTypeUpload  VideoType = "upload"
	VideoTypeYouTube VideoType = "youtube"
	VideoTypeVimeo   VideoType = "vimeo"
)

// Video is exclusively owned by its post and removed when the post is
// deleted.
type Video struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	PostID       uint      `json:"post_id" gorm:"not null;index"`
	URL          string    `json:"url" gorm:"not null"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Type         VideoType `json:"type" gorm:"column:video_type;size:20;not null"`
	Title        string    `json:"title" gorm:"size:255"`
	EmbedCode    *string   `json:"embed_code" gorm:"type:text"`
	Duration     *int      `json:"duration"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	CreatedAt    time.Time `json:"created_at"`
}

// VideoEmbed is the provider-specific descriptor parsed from a third-party
// video URL. No network I/O is performed to produce it.
type VideoEmbed struct {
	Type         VideoType
	ExternalID   string
	ThumbnailURL string
	EmbedCode    string
}

// StoredImage describes a persisted image and its derived sizes, keyed by
// size name (thumbnail, medium, large).
type StoredImage struct {
	URL         string
	Derivatives map[string]string
}

// StoredVideo describes a persisted uploaded video file.
type StoredVideo struct {
	URL   string
	Title string
}

// UploadedFile is a transport-neutral upload payload. Err carries the
// transport-layer failure, checked before any validation.
type UploadedFile struct {
	Filename string
	Size     int64
	Data     []byte
	Err      error
}
