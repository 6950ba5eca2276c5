package repositories

import (
	"errors"

	"localpulse/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	WithTx(tx *gorm.DB) TagRepository
	GetBySlug(slug string) (*models.Tag, error)
	Create(tag *models.Tag) error
	// Link attaches a tag to a post; linking an already linked pair is a
	// no-op.
	Link(postID, tagID uint) error
	UnlinkAll(postID uint) error
	GetForPost(postID uint) ([]models.Tag, error)
	// Popular returns tags ordered by how many published posts carry them.
	Popular(limit int) ([]models.TagCount, error)
	// DeleteOrphans removes tags that no longer link to any post. Called
	// after a post delete; shared tags survive.
	DeleteOrphans() error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) GetBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *tagRepository) Link(postID, tagID uint) error {
	link := models.PostTag{PostID: postID, TagID: tagID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (r *tagRepository) UnlinkAll(postID uint) error {
	return r.db.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error
}

func (r *tagRepository) GetForPost(postID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", postID).
		Order("tags.name asc").
		Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Popular(limit int) ([]models.TagCount, error) {
	var results []models.TagCount
	err := r.db.Raw(`
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.post_id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		JOIN posts p ON p.id = pt.post_id
		WHERE p.status = ?
		GROUP BY t.id, t.name, t.slug, t.created_at
		ORDER BY post_count DESC, t.name ASC
		LIMIT ?
	`, models.StatusPublished, limit).Scan(&results).Error
	return results, err
}

func (r *tagRepository) DeleteOrphans() error {
	return r.db.Exec(`
		DELETE FROM tags
		WHERE NOT EXISTS (SELECT 1 FROM post_tags WHERE post_tags.tag_id = tags.id)
	`).Error
}
