package repositories

import (
	"time"

	"localpulse/models"

	"gorm.io/gorm"
)

type PostViewRepository interface {
	// RecentlyViewed reports whether the IP viewed the post inside the
	// dedup window. Check-then-insert may double count once under
	// concurrency; the counter is approximate by contract.
	RecentlyViewed(postID uint, ip string, window time.Duration) (bool, error)
	Create(view *models.PostView) error
}

type postViewRepository struct {
	db *gorm.DB
}

func NewPostViewRepository(db *gorm.DB) PostViewRepository {
	return &postViewRepository{db: db}
}

func (r *postViewRepository) RecentlyViewed(postID uint, ip string, window time.Duration) (bool, error) {
	var count int64
	err := r.db.Model(&models.PostView{}).
		Where("post_id = ? AND ip_address = ? AND created_at > ?", postID, ip, time.Now().Add(-window)).
		Count(&count).Error
	return count > 0, err
}

func (r *postViewRepository) Create(view *models.PostView) error {
	return r.db.Create(view).Error
}
