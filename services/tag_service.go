package services

import (
	"strings"

	"gorm.io/gorm"

	"localpulse/helper"
	"localpulse/models"
	"localpulse/repositories"
)

type TagService interface {
	// Attach deduplicates raw tag names into canonical tags and links
	// them to the post. Attaching the same tag twice is a no-op.
	Attach(tx *gorm.DB, postID uint, rawTags []string) error
	// Replace drops every existing link and re-attaches, so the final
	// link set depends only on the given list.
	Replace(tx *gorm.DB, postID uint, rawTags []string) error
	GetForPost(postID uint) ([]models.Tag, error)
	Popular(limit int) ([]models.TagCount, error)
}

type tagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

// NormalizeTags accepts either a list or a single comma-delimited string,
// trims each item and drops empties.
func NormalizeTags(raw []string) []string {
	if len(raw) == 1 && strings.Contains(raw[0], ",") {
		raw = strings.Split(raw[0], ",")
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (s *tagService) Attach(tx *gorm.DB, postID uint, rawTags []string) error {
	repo := s.tagRepo.WithTx(tx)

	for _, name := range NormalizeTags(rawTags) {
		slug := helper.Slugify(name)

		tag, err := repo.GetBySlug(slug)
		if err != nil {
			return err
		}
		if tag == nil {
			tag = &models.Tag{Name: name, Slug: slug}
			if err := repo.Create(tag); err != nil {
				return err
			}
		}

		if err := repo.Link(postID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *tagService) Replace(tx *gorm.DB, postID uint, rawTags []string) error {
	repo := s.tagRepo.WithTx(tx)
	if err := repo.UnlinkAll(postID); err != nil {
		return err
	}
	return s.Attach(tx, postID, rawTags)
}

func (s *tagService) GetForPost(postID uint) ([]models.Tag, error) {
	return s.tagRepo.GetForPost(postID)
}

func (s *tagService) Popular(limit int) ([]models.TagCount, error) {
	return s.tagRepo.Popular(limit)
}
