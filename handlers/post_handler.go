package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"localpulse/middleware"
	"localpulse/models"
	"localpulse/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService services.PostService
}

func NewPostHandler(postService services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// readUpload drains one multipart part into memory. Read failures are
// carried inside the UploadedFile so the ingest pipeline reports them
// in validation order.
func readUpload(fh *multipart.FileHeader) *models.UploadedFile {
	upload := &models.UploadedFile{
		Filename: fh.Filename,
		Size:     fh.Size,
	}
	f, err := fh.Open()
	if err != nil {
		upload.Err = err
		return upload
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		upload.Err = err
		return upload
	}
	upload.Data = data
	return upload
}

func (h *PostHandler) collectUploads(c *gin.Context) (*models.UploadedFile, []*models.UploadedFile) {
	var image *models.UploadedFile
	var videos []*models.UploadedFile

	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	if files := form.File["image"]; len(files) > 0 {
		image = readUpload(files[0])
	}
	for _, fh := range form.File["videos"] {
		videos = append(videos, readUpload(fh))
	}
	return image, videos
}

func (h *PostHandler) SubmitPost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req models.SubmitPostRequest
	if err := c.ShouldBind(&req); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}
	image, videos := h.collectUploads(c)

	post, err := h.postService.Submit(actor, req, image, videos)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	var req models.SubmitPostRequest
	if err := c.ShouldBind(&req); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}
	image, videos := h.collectUploads(c)

	post, err := h.postService.Update(actor, uint(id), req, image, videos)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	if err := h.postService.Delete(actor, uint(id)); err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	HTTPHelper.SendSuccess(c, "Post deleted", HTTPHelper.EmptyJsonMap())
}

// GetPost serves both anonymous and authenticated reads. Non-published
// posts are visible only to their author and moderators; everyone else
// gets a not-found, not a forbidden, so drafts stay unguessable.
func (h *PostHandler) GetPost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	post, err := h.postService.Get(uint(id), true)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	if post.Status != models.StatusPublished {
		if actor.ID != post.UserID && !actor.CanModerate() {
			HTTPHelper.SendNotFoundError(c, "Post not found", HTTPHelper.EmptyJsonMap())
			return
		}
	} else {
		var userID *uint
		if actor.ID != 0 {
			id := actor.ID
			userID = &id
		}
		if counted, err := h.postService.TrackView(post.ID, userID, c.ClientIP(), c.GetHeader("User-Agent")); err == nil && counted {
			post.ViewCount++
		}
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) GetPublicPosts(c *gin.Context) {
	var params models.PostListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}
	params.Status = string(models.StatusPublished)

	h.sendList(c, params)
}

// GetPosts lists with status filters. Plain users only ever see their
// own rows here; moderators see everything.
func (h *PostHandler) GetPosts(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var params models.PostListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}
	if !actor.CanModerate() {
		params.UserID = actor.ID
	}

	h.sendList(c, params)
}

func (h *PostHandler) sendList(c *gin.Context, params models.PostListParams) {
	posts, total, err := h.postService.List(params)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"total":  total,
		"paging": HTTPHelper.GeneratePaging(c, 0, 0, params.PerPage, params.Page, int(total)),
	})
}

func (h *PostHandler) GetNearby(c *gin.Context) {
	var params models.NearbyParams
	if err := c.ShouldBindQuery(&params); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}

	posts, err := h.postService.Nearby(params)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) GetBreaking(c *gin.Context) {
	posts, err := h.postService.Breaking(limitParam(c, 10))
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) GetRecent(c *gin.Context) {
	posts, err := h.postService.Recent(limitParam(c, 10))
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) GetFeatured(c *gin.Context) {
	posts, err := h.postService.Featured(limitParam(c, 5))
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) GetRelated(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	posts, err := h.postService.Related(uint(id), limitParam(c, 5))
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) FeaturePost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	if err := h.postService.Feature(actor, uint(id)); err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	HTTPHelper.SendSuccess(c, "Post featured", HTTPHelper.EmptyJsonMap())
}

func (h *PostHandler) UnfeaturePost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	if err := h.postService.Unfeature(actor, uint(id)); err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	HTTPHelper.SendSuccess(c, "Post unfeatured", HTTPHelper.EmptyJsonMap())
}

func (h *PostHandler) GetCategoryStats(c *gin.Context) {
	stats, err := h.postService.CategoryStats()
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": stats})
}

func limitParam(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 || limit > 50 {
		return def
	}
	return limit
}
