package repositories

import (
	"localpulse/models"

	"gorm.io/gorm"
)

type VideoRepository interface {
	WithTx(tx *gorm.DB) VideoRepository
	Create(video *models.Video) error
	GetForPost(postID uint) ([]models.Video, error)
	DeleteForPost(postID uint) error
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	return &videoRepository{db: tx}
}

func (r *videoRepository) Create(video *models.Video) error {
	return r.db.Create(video).Error
}

func (r *videoRepository) GetForPost(postID uint) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Where("post_id = ?", postID).Find(&videos).Error
	return videos, err
}

func (r *videoRepository) DeleteForPost(postID uint) error {
	return r.db.Where("post_id = ?", postID).Delete(&models.Video{}).Error
}
