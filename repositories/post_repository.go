package repositories

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"localpulse/models"
)

// MaxPerPage caps listing page sizes so no caller can request an unbounded
// result set.
const MaxPerPage = 50

type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	// GetList composes the optional filter predicates plus ordering and
	// pagination, returning the page and the total count. When the caller
	// supplies no status the filter defaults to published; authorization
	// for non-public statuses is the calling layer's concern.
	GetList(params models.PostListParams) ([]models.Post, int64, error)
	Update(post *models.Post) error
	Delete(id uint) error
	// UpdateStatusGuarded performs the single-row conditional status
	// update. The returned row count is the guard outcome: zero means a
	// concurrent transition already moved the post. published_at is set
	// only when previously unset.
	UpdateStatusGuarded(id uint, from, to models.PostStatus) (int64, error)
	IncrementViewCount(id uint) error
	// Nearby returns published posts within radiusKm of the query point,
	// ordered breaking desc, emergency desc, distance asc, recency desc.
	// Posts whose location lacks coordinates are excluded.
	Nearby(lat, lon, radiusKm float64, limit int) ([]models.NearbyPost, error)
	Breaking(limit int) ([]models.Post, error)
	Recent(limit int) ([]models.Post, error)
	// Related returns other published posts sharing the given post's
	// category or location, newest first.
	Related(post *models.Post, limit int) ([]models.Post, error)
	CategoryStats() ([]models.CategoryCount, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

func (r *postRepository) Create(post *models.Post) error {
	// Tag links are managed explicitly through the tag repository.
	return r.db.Omit("Tags").Create(post).Error
}

func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("User").
		Preload("Location").
		Preload("Videos").
		Preload("Tags").
		First(&post, id).Error
	return &post, err
}

var listSortColumns = map[string]string{
	"created_at":   "posts.created_at",
	"published_at": "posts.published_at",
	"view_count":   "posts.view_count",
	"title":        "posts.title",
}

func (r *postRepository) GetList(params models.PostListParams) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	query := r.db.Model(&models.Post{}).Preload("User").Preload("Location").Preload("Tags")

	status := params.Status
	if status == "" {
		status = string(models.StatusPublished)
	}
	query = query.Where("posts.status = ?", status)

	if params.Category != "" {
		query = query.Where("posts.category = ?", params.Category)
	}

	if params.UserID > 0 {
		query = query.Where("posts.user_id = ?", params.UserID)
	}

	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where("posts.title ILIKE ? OR posts.content ILIKE ?", pattern, pattern)
	}

	if params.Location > 0 {
		query = query.Where("posts.location_id = ?", params.Location)
	}

	if params.TagID > 0 {
		query = query.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Where("post_tags.tag_id = ?", params.TagID)
	}

	if params.StartDate != "" {
		query = query.Where("posts.created_at >= ?", params.StartDate)
	}

	if params.EndDate != "" {
		query = query.Where("posts.created_at <= ?", params.EndDate+" 23:59:59")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy, ok := listSortColumns[params.SortBy]
	if !ok {
		sortBy = "posts.created_at"
	}
	sortOrder := "desc"
	if params.SortOrder == "asc" {
		sortOrder = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) Update(post *models.Post) error {
	return r.db.Omit("Tags", "Videos").Save(post).Error
}

func (r *postRepository) Delete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

func (r *postRepository) UpdateStatusGuarded(id uint, from, to models.PostStatus) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": gorm.Expr("NOW()"),
	}
	if to == models.StatusPublished {
		updates["published_at"] = gorm.Expr("COALESCE(published_at, NOW())")
	}

	result := r.db.Model(&models.Post{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *postRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) Nearby(lat, lon, radiusKm float64, limit int) ([]models.NearbyPost, error) {
	// The spherical-cosines argument can land a hair above 1.0 in IEEE
	// doubles when the query point coincides with a stored location, and
	// acos raises out-of-range on postgres instead of returning NULL.
	// Clamping keeps the distance-0 row in the result set.
	haversine := `(6371 * acos(LEAST(1.0, GREATEST(-1.0,
		cos(radians(?)) * cos(radians(l.latitude)) *
		cos(radians(l.longitude) - radians(?)) +
		sin(radians(?)) * sin(radians(l.latitude))
	)))) AS distance`

	inner := sq.Select(
		"p.id", "p.title", "p.excerpt", "p.image_url", "p.category",
		"p.is_breaking", "p.is_emergency", "p.created_at",
		"l.city", "l.country", "l.latitude", "l.longitude",
	).
		Column(sq.Expr(haversine, lat, lon, lat)).
		From("posts p").
		Join("locations l ON p.location_id = l.id").
		Where(sq.Eq{"p.status": models.StatusPublished}).
		Where("l.latitude IS NOT NULL AND l.longitude IS NOT NULL")

	query := sq.Select("*").
		FromSelect(inner, "nearby").
		Where(sq.Lt{"distance": radiusKm}).
		OrderBy("is_breaking DESC", "is_emergency DESC", "distance ASC", "created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var results []models.NearbyPost
	err = r.db.Raw(sqlStr, args...).Scan(&results).Error
	return results, err
}

func (r *postRepository) Breaking(limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Location").
		Where("status = ? AND is_breaking = ?", models.StatusPublished, true).
		Order("created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Recent(limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Preload("Location").
		Where("status = ?", models.StatusPublished).
		Order("created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Related(post *models.Post, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Preload("Location").
		Where("id != ? AND status = ?", post.ID, models.StatusPublished).
		Where("category = ? OR location_id = ?", post.Category, post.LocationID).
		Order("created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CategoryStats() ([]models.CategoryCount, error) {
	var results []models.CategoryCount
	err := r.db.Model(&models.Post{}).
		Select("category, COUNT(*) as count").
		Where("status = ?", models.StatusPublished).
		Group("category").
		Order("count desc").
		Scan(&results).Error
	return results, err
}
