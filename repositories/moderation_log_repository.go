package repositories

import (
	"localpulse/models"

	"gorm.io/gorm"
)

// ModerationLogRepository only ever appends. There is no update or delete;
// the log is the sole source of truth for who moderated what and when.
type ModerationLogRepository interface {
	WithTx(tx *gorm.DB) ModerationLogRepository
	Append(entry *models.ModerationLog) error
	GetForPost(postID uint) ([]models.ModerationLog, error)
	GetList(params models.ModerationLogParams) ([]models.ModerationLog, int64, error)
}

type moderationLogRepository struct {
	db *gorm.DB
}

func NewModerationLogRepository(db *gorm.DB) ModerationLogRepository {
	return &moderationLogRepository{db: db}
}

func (r *moderationLogRepository) WithTx(tx *gorm.DB) ModerationLogRepository {
	return &moderationLogRepository{db: tx}
}

func (r *moderationLogRepository) Append(entry *models.ModerationLog) error {
	return r.db.Create(entry).Error
}

func (r *moderationLogRepository) GetForPost(postID uint) ([]models.ModerationLog, error) {
	var entries []models.ModerationLog
	err := r.db.Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}

func (r *moderationLogRepository) GetList(params models.ModerationLogParams) ([]models.ModerationLog, int64, error) {
	var entries []models.ModerationLog
	var total int64

	query := r.db.Model(&models.ModerationLog{})

	if params.UserID > 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.PostID > 0 {
		query = query.Where("post_id = ?", params.PostID)
	}
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.StartDate != "" {
		query = query.Where("created_at >= ?", params.StartDate)
	}
	if params.EndDate != "" {
		query = query.Where("created_at <= ?", params.EndDate+" 23:59:59")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	err := query.Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error
	return entries, total, err
}
