package repositories

import (
	"localpulse/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeaturedRepository interface {
	WithTx(tx *gorm.DB) FeaturedRepository
	// Feature pins the post; featuring an already pinned post is a no-op.
	Feature(postID, userID uint) error
	// Unfeature unpins the post. The bool reports whether a pin existed.
	Unfeature(postID uint) (bool, error)
	// List returns pinned posts that are currently published, most
	// recently pinned first.
	List(limit int) ([]models.Post, error)
}

type featuredRepository struct {
	db *gorm.DB
}

func NewFeaturedRepository(db *gorm.DB) FeaturedRepository {
	return &featuredRepository{db: db}
}

func (r *featuredRepository) WithTx(tx *gorm.DB) FeaturedRepository {
	return &featuredRepository{db: tx}
}

func (r *featuredRepository) Feature(postID, userID uint) error {
	pin := models.FeaturedPost{PostID: postID, FeaturedBy: userID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pin).Error
}

func (r *featuredRepository) Unfeature(postID uint) (bool, error) {
	result := r.db.Where("post_id = ?", postID).Delete(&models.FeaturedPost{})
	return result.RowsAffected > 0, result.Error
}

func (r *featuredRepository) List(limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Model(&models.Post{}).
		Preload("User").Preload("Location").
		Joins("JOIN featured_posts fp ON fp.post_id = posts.id").
		Where("posts.status = ?", models.StatusPublished).
		Order("fp.created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
