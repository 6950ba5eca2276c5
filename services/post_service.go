package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"localpulse/helper"
	"localpulse/models"
	"localpulse/notifier"
	"localpulse/repositories"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
	excerptLength    = 200
	viewDedupWindow  = time.Hour
)

type PostService interface {
	// Submit runs the whole submission pipeline — location resolution,
	// media ingestion, tag dedup, post row, audit entry — inside one
	// transaction. The new post is always pending regardless of any
	// client-supplied status.
	Submit(actor models.Actor, req models.SubmitPostRequest, image *models.UploadedFile, videos []*models.UploadedFile) (*models.Post, error)
	Update(actor models.Actor, postID uint, req models.SubmitPostRequest, image *models.UploadedFile, videos []*models.UploadedFile) (*models.Post, error)
	Delete(actor models.Actor, postID uint) error
	Get(postID uint, includeNonPublic bool) (*models.Post, error)
	List(params models.PostListParams) ([]models.Post, int64, error)
	Nearby(params models.NearbyParams) ([]models.NearbyPost, error)
	// TrackView counts at most one view per (post, IP) per hour. The
	// returned bool reports whether this call counted.
	TrackView(postID uint, userID *uint, ip, userAgent string) (bool, error)
	Breaking(limit int) ([]models.Post, error)
	Recent(limit int) ([]models.Post, error)
	CategoryStats() ([]models.CategoryCount, error)
	// Feature pins a post to the curated front listing; admins only.
	// Featuring an already featured post succeeds without effect.
	Feature(actor models.Actor, postID uint) error
	Unfeature(actor models.Actor, postID uint) error
	Featured(limit int) ([]models.Post, error)
	// Related lists other published posts sharing the post's category or
	// location.
	Related(postID uint, limit int) ([]models.Post, error)
}

type postService struct {
	db           *gorm.DB
	postRepo     repositories.PostRepository
	locationRepo repositories.LocationRepository
	videoRepo    repositories.VideoRepository
	tagRepo      repositories.TagRepository
	logRepo      repositories.ModerationLogRepository
	userRepo     repositories.UserRepository
	viewRepo     repositories.PostViewRepository
	featuredRepo repositories.FeaturedRepository
	tags         TagService
	media        MediaService
	notify       notifier.Notifier
	log          *logrus.Logger
}

func NewPostService(
	db *gorm.DB,
	postRepo repositories.PostRepository,
	locationRepo repositories.LocationRepository,
	videoRepo repositories.VideoRepository,
	tagRepo repositories.TagRepository,
	logRepo repositories.ModerationLogRepository,
	userRepo repositories.UserRepository,
	viewRepo repositories.PostViewRepository,
	featuredRepo repositories.FeaturedRepository,
	tags TagService,
	media MediaService,
	notify notifier.Notifier,
	log *logrus.Logger,
) PostService {
	return &postService{
		db:           db,
		postRepo:     postRepo,
		locationRepo: locationRepo,
		videoRepo:    videoRepo,
		tagRepo:      tagRepo,
		logRepo:      logRepo,
		userRepo:     userRepo,
		viewRepo:     viewRepo,
		featuredRepo: featuredRepo,
		tags:         tags,
		media:        media,
		notify:       notify,
		log:          log,
	}
}

// ValidateSubmission checks every required-field rule before any write.
func ValidateSubmission(req models.SubmitPostRequest) error {
	fields := map[string]string{}

	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	} else if len([]rune(req.Title)) > maxTitleLength {
		fields["title"] = fmt.Sprintf("title cannot be longer than %d characters", maxTitleLength)
	}

	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "content is required"
	} else if len([]rune(req.Content)) > maxContentLength {
		fields["content"] = "content is too long"
	}

	if req.Category == "" {
		fields["category"] = "category is required"
	} else if !models.ValidCategory(req.Category) {
		fields["category"] = "invalid category"
	}

	if strings.TrimSpace(req.Country) == "" {
		fields["country"] = "country is required"
	}

	if len(fields) > 0 {
		return models.ValidationError{Fields: fields}
	}
	return nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// MakeExcerpt strips markup and truncates to the excerpt length.
func MakeExcerpt(content string) string {
	plain := strings.TrimSpace(htmlTagRe.ReplaceAllString(content, ""))
	runes := []rune(plain)
	if len(runes) <= excerptLength {
		return plain
	}
	return string(runes[:excerptLength]) + "..."
}

// resolveLocation implements resolve-or-create over the exact
// (country, state, city) tuple. An existing row's address and coordinates
// are never overwritten: the first writer wins. Two concurrent first
// writers may create duplicate rows; dedup is best-effort by contract.
func (s *postService) resolveLocation(tx *gorm.DB, req models.SubmitPostRequest) (uint, error) {
	repo := s.locationRepo.WithTx(tx)

	country := strings.TrimSpace(req.Country)
	var state, city *string
	if v := strings.TrimSpace(req.State); v != "" {
		state = &v
	}
	if v := strings.TrimSpace(req.City); v != "" {
		city = &v
	}

	existing, err := repo.FindByTuple(country, state, city)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	location := &models.Location{
		Country:       country,
		StateProvince: state,
		City:          city,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	}
	if v := strings.TrimSpace(req.Address); v != "" {
		location.Address = &v
	}
	if err := repo.Create(location); err != nil {
		return 0, err
	}
	return location.ID, nil
}

func (s *postService) Submit(actor models.Actor, req models.SubmitPostRequest, image *models.UploadedFile, videos []*models.UploadedFile) (*models.Post, error) {
	if err := ValidateSubmission(req); err != nil {
		return nil, err
	}

	var post *models.Post
	var storedImage string
	var storedFiles []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		locationID, err := s.resolveLocation(tx, req)
		if err != nil {
			return models.IntegrityError{Err: err}
		}

		imageURL := req.ImageURL
		if image != nil {
			stored, err := s.media.IngestImage(image)
			if err != nil {
				return err
			}
			imageURL = stored.URL
			storedImage = stored.URL
		}

		post = &models.Post{
			UserID:      actor.ID,
			LocationID:  locationID,
			Title:       req.Title,
			Slug:        helper.Slugify(req.Title),
			Excerpt:     MakeExcerpt(req.Content),
			Content:     req.Content,
			ImageURL:    imageURL,
			Category:    req.Category,
			IsBreaking:  req.IsBreaking,
			IsEmergency: req.IsEmergency,
			Status:      models.StatusPending,
		}
		if err := s.postRepo.WithTx(tx).Create(post); err != nil {
			return models.IntegrityError{Err: err}
		}

		urls, err := s.attachVideos(tx, post.ID, videos, req.VideoURLs)
		storedFiles = append(storedFiles, urls...)
		if err != nil {
			return err
		}

		if err := s.tags.Attach(tx, post.ID, req.Tags); err != nil {
			return models.IntegrityError{Err: err}
		}

		actorID := actor.ID
		entry := &models.ModerationLog{
			UserID:  &actorID,
			PostID:  post.ID,
			Action:  models.ActionSubmitted,
			Details: "New post submitted for review",
		}
		if err := s.logRepo.WithTx(tx).Append(entry); err != nil {
			return models.IntegrityError{Err: err}
		}
		return nil
	})
	if err != nil {
		// The transaction rolled back; stored blobs are the only
		// residue and their removal is best-effort.
		if storedImage != "" {
			s.deleteImage(storedImage)
		}
		s.deleteFiles(storedFiles)
		s.logFailure("submit", actor.ID, err)
		return nil, err
	}

	s.notifyModerators(post)
	return s.postRepo.GetByID(post.ID)
}

func (s *postService) attachVideos(tx *gorm.DB, postID uint, files []*models.UploadedFile, urls []string) ([]string, error) {
	repo := s.videoRepo.WithTx(tx)
	var stored []string

	// Re-submitting an edit form with the same URLs must not duplicate
	// rows, so already attached URLs are skipped.
	existing, err := repo.GetForPost(postID)
	if err != nil {
		return nil, models.IntegrityError{Err: err}
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v.URL] = true
	}

	for _, f := range files {
		sv, err := s.media.IngestVideoFile(f)
		if err != nil {
			return stored, err
		}
		stored = append(stored, sv.URL)
		video := &models.Video{
			PostID: postID,
			URL:    sv.URL,
			Type:   models.VideoTypeUpload,
			Title:  sv.Title,
		}
		if err := repo.Create(video); err != nil {
			return stored, models.IntegrityError{Err: err}
		}
	}

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		embed := s.media.ParseVideoURL(url)
		if embed == nil {
			// Unrecognized providers are dropped rather than stored
			// as opaque links.
			continue
		}
		video := &models.Video{
			PostID: postID,
			URL:    url,
			Type:   embed.Type,
			Title:  "Video",
		}
		if embed.ThumbnailURL != "" {
			thumb := embed.ThumbnailURL
			video.ThumbnailURL = &thumb
		}
		if embed.EmbedCode != "" {
			code := embed.EmbedCode
			video.EmbedCode = &code
		}
		if err := repo.Create(video); err != nil {
			return stored, models.IntegrityError{Err: err}
		}
	}
	return stored, nil
}

func (s *postService) Update(actor models.Actor, postID uint, req models.SubmitPostRequest, image *models.UploadedFile, videos []*models.UploadedFile) (*models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError{Resource: "post"}
		}
		return nil, models.IntegrityError{Err: err}
	}

	if post.UserID != actor.ID && !actor.CanModerate() {
		return nil, models.PermissionError{Message: "not allowed to edit this post"}
	}

	if err := ValidateSubmission(req); err != nil {
		return nil, err
	}

	var storedImage string
	var storedFiles []string
	var replacedImage string

	err = s.db.Transaction(func(tx *gorm.DB) error {
		locationID, err := s.resolveLocation(tx, req)
		if err != nil {
			return models.IntegrityError{Err: err}
		}

		if image != nil {
			stored, err := s.media.IngestImage(image)
			if err != nil {
				return err
			}
			storedImage = stored.URL
			replacedImage = post.ImageURL
			post.ImageURL = stored.URL
		} else if req.ImageURL != "" {
			post.ImageURL = req.ImageURL
		}

		post.LocationID = locationID
		post.Title = req.Title
		post.Slug = helper.Slugify(req.Title)
		post.Excerpt = MakeExcerpt(req.Content)
		post.Content = req.Content
		post.Category = req.Category
		post.IsBreaking = req.IsBreaking
		post.IsEmergency = req.IsEmergency
		// Status never changes through an edit; that is the state
		// machine's job.

		if err := s.postRepo.WithTx(tx).Update(post); err != nil {
			return models.IntegrityError{Err: err}
		}

		urls, err := s.attachVideos(tx, post.ID, videos, req.VideoURLs)
		storedFiles = append(storedFiles, urls...)
		if err != nil {
			return err
		}

		if req.Tags != nil {
			if err := s.tags.Replace(tx, post.ID, req.Tags); err != nil {
				return models.IntegrityError{Err: err}
			}
		}
		return nil
	})
	if err != nil {
		if storedImage != "" {
			s.deleteImage(storedImage)
		}
		s.deleteFiles(storedFiles)
		s.logFailure("update", actor.ID, err)
		return nil, err
	}

	if replacedImage != "" {
		s.deleteImage(replacedImage)
	}
	return s.postRepo.GetByID(post.ID)
}

func (s *postService) Delete(actor models.Actor, postID uint) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFoundError{Resource: "post"}
		}
		return models.IntegrityError{Err: err}
	}

	if post.UserID != actor.ID && !actor.CanModerate() {
		return models.PermissionError{Message: "not allowed to delete this post"}
	}

	// Media cleanup happens after commit; collect what to remove first.
	var uploads []string
	for _, v := range post.Videos {
		if v.Type == models.VideoTypeUpload {
			uploads = append(uploads, v.URL)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.videoRepo.WithTx(tx).DeleteForPost(postID); err != nil {
			return err
		}
		tagRepo := s.tagRepo.WithTx(tx)
		if err := tagRepo.UnlinkAll(postID); err != nil {
			return err
		}

		actorID := actor.ID
		entry := &models.ModerationLog{
			UserID:  &actorID,
			PostID:  postID,
			Action:  models.ActionDeleted,
			Details: "Post deleted",
		}
		if err := s.logRepo.WithTx(tx).Append(entry); err != nil {
			return err
		}

		if _, err := s.featuredRepo.WithTx(tx).Unfeature(postID); err != nil {
			return err
		}
		if err := s.postRepo.WithTx(tx).Delete(postID); err != nil {
			return err
		}
		// Tags are shared; only those left with no posts at all go.
		// The location record stays regardless.
		return tagRepo.DeleteOrphans()
	})
	if err != nil {
		s.logFailure("delete", actor.ID, err)
		return models.IntegrityError{Err: err}
	}

	if post.ImageURL != "" {
		s.deleteImage(post.ImageURL)
	}
	s.deleteFiles(uploads)
	return nil
}

func (s *postService) Get(postID uint, includeNonPublic bool) (*models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError{Resource: "post"}
		}
		return nil, models.IntegrityError{Err: err}
	}
	if !includeNonPublic && post.Status != models.StatusPublished {
		return nil, models.NotFoundError{Resource: "post"}
	}
	return post, nil
}

func (s *postService) List(params models.PostListParams) ([]models.Post, int64, error) {
	if params.Status != "" && !models.ValidStatus(models.PostStatus(params.Status)) {
		return nil, 0, models.NewValidationError("status", "unknown status "+params.Status)
	}
	return s.postRepo.GetList(params)
}

func (s *postService) Nearby(params models.NearbyParams) ([]models.NearbyPost, error) {
	if params.RadiusKm <= 0 {
		return nil, models.NewValidationError("radius_km", "radius must be positive")
	}
	limit := params.Limit
	if limit < 1 || limit > repositories.MaxPerPage {
		limit = 20
	}
	return s.postRepo.Nearby(params.Latitude, params.Longitude, params.RadiusKm, limit)
}

var botMarkers = []string{
	"bot", "spider", "crawler", "crawl", "archive", "wget", "curl",
	"python", "java", "scraper", "monitor",
}

func isBot(userAgent string) bool {
	if userAgent == "" {
		return true
	}
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

func (s *postService) TrackView(postID uint, userID *uint, ip, userAgent string) (bool, error) {
	if isBot(userAgent) {
		return false, nil
	}

	seen, err := s.viewRepo.RecentlyViewed(postID, ip, viewDedupWindow)
	if err != nil || seen {
		return false, err
	}

	view := &models.PostView{
		PostID:    postID,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.viewRepo.Create(view); err != nil {
		return false, err
	}
	return true, s.postRepo.IncrementViewCount(postID)
}

func (s *postService) Breaking(limit int) ([]models.Post, error) {
	return s.postRepo.Breaking(limit)
}

func (s *postService) Recent(limit int) ([]models.Post, error) {
	return s.postRepo.Recent(limit)
}

func (s *postService) CategoryStats() ([]models.CategoryCount, error) {
	return s.postRepo.CategoryStats()
}

func (s *postService) Feature(actor models.Actor, postID uint) error {
	if actor.Role != models.RoleAdmin {
		return models.PermissionError{Message: "only admins can feature posts"}
	}
	if _, err := s.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFoundError{Resource: "post"}
		}
		return models.IntegrityError{Err: err}
	}
	if err := s.featuredRepo.Feature(postID, actor.ID); err != nil {
		return models.IntegrityError{Err: err}
	}
	return nil
}

func (s *postService) Unfeature(actor models.Actor, postID uint) error {
	if actor.Role != models.RoleAdmin {
		return models.PermissionError{Message: "only admins can feature posts"}
	}
	removed, err := s.featuredRepo.Unfeature(postID)
	if err != nil {
		return models.IntegrityError{Err: err}
	}
	if !removed {
		return models.NotFoundError{Resource: "featured post"}
	}
	return nil
}

func (s *postService) Featured(limit int) ([]models.Post, error) {
	return s.featuredRepo.List(limit)
}

func (s *postService) Related(postID uint, limit int) ([]models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError{Resource: "post"}
		}
		return nil, models.IntegrityError{Err: err}
	}
	return s.postRepo.Related(post, limit)
}

func (s *postService) notifyModerators(post *models.Post) {
	emails, err := s.userRepo.GetEmailsByRoles(models.RoleModerator, models.RoleAdmin)
	if err != nil {
		s.log.WithError(err).Warn("load moderator emails")
		return
	}
	s.notify.Notify(emails,
		"New post pending review",
		fmt.Sprintf("%q was submitted and is waiting for review.", post.Title),
		fmt.Sprintf("/admin/posts/%d", post.ID))
}

func (s *postService) deleteImage(url string) {
	if err := s.media.DeleteImage(url); err != nil {
		s.log.WithField("url", url).WithError(err).Warn("image cleanup failed")
	}
}

func (s *postService) deleteFiles(urls []string) {
	for _, url := range urls {
		if err := s.media.DeleteVideoFile(url); err != nil {
			s.log.WithField("url", url).WithError(err).Warn("media cleanup failed")
		}
	}
}

func (s *postService) logFailure(op string, actorID uint, err error) {
	var integrity models.IntegrityError
	if errors.As(err, &integrity) {
		s.log.WithFields(logrus.Fields{
			"op":       op,
			"actor_id": actorID,
			"error":    integrity.Err,
		}).Error("submission pipeline failed")
	}
}
