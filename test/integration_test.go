package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"localpulse/handlers"
	"localpulse/middleware"
	"localpulse/models"
	"localpulse/notifier"
	"localpulse/repositories"
	"localpulse/services"
	"localpulse/storage"
)

type IntegrationTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	token    string
	userID   uint
	modToken string
	modID    uint
}

func (suite *IntegrationTestSuite) SetupSuite() {
	os.Setenv("JWT_SECRET", "test-secret")

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=myuser password=mypassword dbname=localpulse_test sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		suite.T().Skip("test database unavailable:", err)
	}
	suite.db = db

	err = db.AutoMigrate(
		&models.User{}, &models.Location{}, &models.Post{}, &models.Tag{},
		&models.PostTag{}, &models.Video{}, &models.ModerationLog{}, &models.PostView{},
		&models.FeaturedPost{},
	)
	suite.Require().NoError(err)

	suite.setupRouter()
}

func (suite *IntegrationTestSuite) setupRouter() {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	store, err := storage.NewLocalStorage(suite.T().TempDir(), "/uploads")
	suite.Require().NoError(err)

	userRepo := repositories.NewUserRepository(suite.db)
	postRepo := repositories.NewPostRepository(suite.db)
	locationRepo := repositories.NewLocationRepository(suite.db)
	videoRepo := repositories.NewVideoRepository(suite.db)
	tagRepo := repositories.NewTagRepository(suite.db)
	logRepo := repositories.NewModerationLogRepository(suite.db)
	viewRepo := repositories.NewPostViewRepository(suite.db)
	featuredRepo := repositories.NewFeaturedRepository(suite.db)

	authService := services.NewAuthService(userRepo)
	tagService := services.NewTagService(tagRepo)
	mediaService := services.NewMediaService(store, log, 5*1024*1024, 50*1024*1024)
	postService := services.NewPostService(suite.db, postRepo, locationRepo, videoRepo, tagRepo, logRepo, userRepo, viewRepo, featuredRepo, tagService, mediaService, notifier.Noop{}, log)
	moderationService := services.NewModerationService(suite.db, postRepo, logRepo, userRepo, notifier.Noop{}, log)

	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	tagHandler := handlers.NewTagHandler(tagService)

	router := gin.New()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public := v1.Group("/public")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/posts", postHandler.GetPublicPosts)
			public.GET("/posts/:id", postHandler.GetPost)
			public.GET("/posts/nearby", postHandler.GetNearby)
			public.GET("/posts/breaking", postHandler.GetBreaking)
			public.GET("/posts/recent", postHandler.GetRecent)
			public.GET("/posts/featured", postHandler.GetFeatured)
			public.GET("/posts/:id/related", postHandler.GetRelated)
			public.GET("/categories", postHandler.GetCategoryStats)
			public.GET("/tags/popular", tagHandler.GetPopularTags)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", authHandler.Me)

			posts := protected.Group("/posts")
			{
				posts.POST("", postHandler.SubmitPost)
				posts.GET("", postHandler.GetPosts)
				posts.GET("/:id", postHandler.GetPost)
				posts.PUT("/:id", postHandler.UpdatePost)
				posts.DELETE("/:id", postHandler.DeletePost)
				posts.PUT("/:id/status", moderationHandler.TransitionPost)
			}

			moderation := protected.Group("/moderation")
			moderation.Use(middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
			{
				moderation.GET("/posts/:id/history", moderationHandler.GetHistory)
				moderation.GET("/logs", moderationHandler.GetLogs)
				moderation.POST("/posts/:id/feature", postHandler.FeaturePost)
				moderation.DELETE("/posts/:id/feature", postHandler.UnfeaturePost)
			}
		}
	}

	suite.router = router
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.db.Exec("DROP TABLE IF EXISTS featured_posts")
	suite.db.Exec("DROP TABLE IF EXISTS post_views")
	suite.db.Exec("DROP TABLE IF EXISTS moderation_logs")
	suite.db.Exec("DROP TABLE IF EXISTS videos")
	suite.db.Exec("DROP TABLE IF EXISTS post_tags")
	suite.db.Exec("DROP TABLE IF EXISTS tags")
	suite.db.Exec("DROP TABLE IF EXISTS posts")
	suite.db.Exec("DROP TABLE IF EXISTS locations")
	suite.db.Exec("DROP TABLE IF EXISTS users")
}

func (suite *IntegrationTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE featured_posts RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE post_views RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE moderation_logs RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE videos RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE post_tags RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE tags RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE posts RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE locations RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE users RESTART IDENTITY CASCADE")

	suite.token, suite.userID = suite.registerUser("reporter", "reporter@example.com")
	suite.modToken, suite.modID = suite.registerModerator("reviewer", "reviewer@example.com")
}

func (suite *IntegrationTestSuite) registerUser(username, email string) (string, uint) {
	payload := models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	}

	w := suite.doJSON("POST", "/api/v1/auth/register", payload, "")
	suite.Equal(http.StatusCreated, w.Code)

	var resp models.AuthResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

// registerModerator registers normally then promotes the row; the role
// must be re-minted into a fresh token.
func (suite *IntegrationTestSuite) registerModerator(username, email string) (string, uint) {
	return suite.registerWithRole(username, email, models.RoleModerator)
}

func (suite *IntegrationTestSuite) registerAdmin(username, email string) (string, uint) {
	return suite.registerWithRole(username, email, models.RoleAdmin)
}

func (suite *IntegrationTestSuite) registerWithRole(username, email string, role models.UserRole) (string, uint) {
	_, id := suite.registerUser(username, email)
	suite.db.Model(&models.User{}).Where("id = ?", id).Update("role", role)

	w := suite.doJSON("POST", "/api/v1/auth/login", models.LoginRequest{
		Email:    email,
		Password: "password123",
	}, "")
	suite.Equal(http.StatusOK, w.Code)

	var resp models.AuthResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, id
}

func (suite *IntegrationTestSuite) doJSON(method, url string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *IntegrationTestSuite) submitPost(token string, req models.SubmitPostRequest) models.Post {
	w := suite.doJSON("POST", "/api/v1/posts", req, token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func samplePost() models.SubmitPostRequest {
	return models.SubmitPostRequest{
		Title:    "Bridge closed after inspection",
		Content:  "<p>The Main Street bridge is closed until further notice.</p>",
		Category: "local",
		Country:  "US",
		State:    "OR",
		City:     "Portland",
		Tags:     []string{"traffic", "infrastructure"},
	}
}

func (suite *IntegrationTestSuite) TestAuthFlow() {
	w := suite.doJSON("POST", "/api/v1/auth/login", models.LoginRequest{
		Email:    "reporter@example.com",
		Password: "password123",
	}, "")
	suite.Equal(http.StatusOK, w.Code)

	var resp models.AuthResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.NotEmpty(resp.Token)
	suite.Equal("reporter", resp.User.Username)

	w = suite.doJSON("POST", "/api/v1/auth/login", models.LoginRequest{
		Email:    "reporter@example.com",
		Password: "wrong",
	}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *IntegrationTestSuite) TestSubmitStartsPending() {
	post := suite.submitPost(suite.token, samplePost())

	suite.Equal(models.StatusPending, post.Status)
	suite.Equal("bridge-closed-after-inspection", post.Slug)
	suite.NotZero(post.LocationID)
	suite.Len(post.Tags, 2)

	// The submission itself is audited.
	var logs []models.ModerationLog
	suite.db.Where("post_id = ?", post.ID).Find(&logs)
	suite.Require().Len(logs, 1)
	suite.Equal(models.ActionSubmitted, logs[0].Action)
}

func (suite *IntegrationTestSuite) TestPendingHiddenFromPublic() {
	post := suite.submitPost(suite.token, samplePost())

	w := suite.doJSON("GET", fmt.Sprintf("/api/v1/public/posts/%d", post.ID), nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	// The author still sees their own pending post.
	w = suite.doJSON("GET", fmt.Sprintf("/api/v1/posts/%d", post.ID), nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.doJSON("GET", "/api/v1/public/posts", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "Bridge closed")
}

func (suite *IntegrationTestSuite) TestModerationFlow() {
	post := suite.submitPost(suite.token, samplePost())
	url := fmt.Sprintf("/api/v1/posts/%d/status", post.ID)

	// Author cannot publish their own post.
	w := suite.doJSON("PUT", url, models.TransitionRequest{Status: models.StatusPublished}, suite.token)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doJSON("PUT", url, models.TransitionRequest{Status: models.StatusPublished, Notes: "looks good"}, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)

	var updated models.Post
	suite.db.First(&updated, post.ID)
	suite.Equal(models.StatusPublished, updated.Status)
	suite.NotNil(updated.PublishedAt)

	// Published posts are publicly visible now.
	w = suite.doJSON("GET", fmt.Sprintf("/api/v1/public/posts/%d", post.ID), nil, "")
	suite.Equal(http.StatusOK, w.Code)

	// pending -> archived is not a defined transition.
	other := suite.submitPost(suite.token, samplePost())
	w = suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d/status", other.ID),
		models.TransitionRequest{Status: models.StatusArchived}, suite.modToken)
	suite.Equal(http.StatusConflict, w.Code)

	// Same-status transitions fail validation before anything is logged.
	w = suite.doJSON("PUT", url, models.TransitionRequest{Status: models.StatusPublished}, suite.modToken)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var count int64
	suite.db.Model(&models.ModerationLog{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(2), count) // submitted + approved
}

func (suite *IntegrationTestSuite) TestLocationReuse() {
	first := suite.submitPost(suite.token, samplePost())
	second := suite.submitPost(suite.token, samplePost())
	suite.Equal(first.LocationID, second.LocationID)

	req := samplePost()
	req.City = "Salem"
	third := suite.submitPost(suite.token, req)
	suite.NotEqual(first.LocationID, third.LocationID)

	// Stray whitespace must not mint a second location identity.
	req = samplePost()
	req.Country = "  US "
	padded := suite.submitPost(suite.token, req)
	suite.Equal(first.LocationID, padded.LocationID)
}

func (suite *IntegrationTestSuite) TestUpdateKeepsStatus() {
	post := suite.submitPost(suite.token, samplePost())
	suite.db.Model(&models.Post{}).Where("id = ?", post.ID).Update("status", models.StatusPublished)

	req := samplePost()
	req.Title = "Bridge reopened"
	w := suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d", post.ID), req, suite.token)
	suite.Equal(http.StatusOK, w.Code)

	var updated models.Post
	suite.db.First(&updated, post.ID)
	suite.Equal("Bridge reopened", updated.Title)
	suite.Equal("bridge-reopened", updated.Slug)
	suite.Equal(models.StatusPublished, updated.Status)
}

func (suite *IntegrationTestSuite) TestUpdateForbiddenForStranger() {
	post := suite.submitPost(suite.token, samplePost())
	strangerToken, _ := suite.registerUser("stranger", "stranger@example.com")

	w := suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d", post.ID), samplePost(), strangerToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doJSON("DELETE", fmt.Sprintf("/api/v1/posts/%d", post.ID), nil, strangerToken)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *IntegrationTestSuite) TestDeleteCascades() {
	req := samplePost()
	req.VideoURLs = []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
	post := suite.submitPost(suite.token, req)

	w := suite.doJSON("DELETE", fmt.Sprintf("/api/v1/posts/%d", post.ID), nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	suite.Equal(int64(0), count)

	suite.db.Model(&models.Video{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(0), count)

	// Orphaned tags go with the last post that used them.
	suite.db.Model(&models.Tag{}).Count(&count)
	suite.Equal(int64(0), count)

	// The audit trail outlives the post.
	suite.db.Model(&models.ModerationLog{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(2), count) // submitted + deleted
}

func (suite *IntegrationTestSuite) TestValidationErrors() {
	req := samplePost()
	req.Category = "gossip"
	w := suite.doJSON("POST", "/api/v1/posts", req, suite.token)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "category")
}

func (suite *IntegrationTestSuite) TestNearby() {
	lat, lon := 45.5152, -122.6784
	req := samplePost()
	req.Latitude = &lat
	req.Longitude = &lon
	post := suite.submitPost(suite.token, req)
	suite.db.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{"status": models.StatusPublished, "published_at": time.Now()})

	w := suite.doJSON("GET", "/api/v1/public/posts/nearby?lat=45.52&lon=-122.68&radius_km=10", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Bridge closed")

	// Out of radius.
	w = suite.doJSON("GET", "/api/v1/public/posts/nearby?lat=40.71&lon=-74.0&radius_km=10", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "Bridge closed")
}

func (suite *IntegrationTestSuite) TestViewTracking() {
	post := suite.submitPost(suite.token, samplePost())
	suite.db.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{"status": models.StatusPublished, "published_at": time.Now()})

	url := fmt.Sprintf("/api/v1/public/posts/%d", post.ID)
	get := func() int {
		req := httptest.NewRequest("GET", url, nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		suite.Equal(http.StatusOK, w.Code)

		var body models.Post
		suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
		return body.ViewCount
	}

	// Two reads from the same address inside the window count once, and
	// the deduplicated read must not over-report in the response either.
	suite.Equal(1, get())
	suite.Equal(1, get())

	var updated models.Post
	suite.db.First(&updated, post.ID)
	suite.Equal(1, updated.ViewCount)

	// Bot traffic never counts.
	req := httptest.NewRequest("GET", url, nil)
	req.Header.Set("User-Agent", "Googlebot/2.1")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	suite.db.First(&updated, post.ID)
	suite.Equal(1, updated.ViewCount)
}

func (suite *IntegrationTestSuite) TestModerationLogsEndpoint() {
	post := suite.submitPost(suite.token, samplePost())
	suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d/status", post.ID),
		models.TransitionRequest{Status: models.StatusPublished}, suite.modToken)

	// Plain users cannot read the moderation surface.
	w := suite.doJSON("GET", "/api/v1/moderation/logs", nil, suite.token)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doJSON("GET", "/api/v1/moderation/logs", nil, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), string(models.ActionApproved))

	w = suite.doJSON("GET", fmt.Sprintf("/api/v1/moderation/posts/%d/history", post.ID), nil, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), string(models.ActionSubmitted))
}

func (suite *IntegrationTestSuite) TestPopularTags() {
	post := suite.submitPost(suite.token, samplePost())
	suite.db.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{"status": models.StatusPublished, "published_at": time.Now()})

	w := suite.doJSON("GET", "/api/v1/public/tags/popular", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "traffic")
}

func (suite *IntegrationTestSuite) TestNearbyAtExactLocation() {
	// A query from exactly where the post is must return the distance-0
	// row, not fail on the acos domain edge.
	lat, lon := 51.5074, -0.1278
	req := samplePost()
	req.Latitude = &lat
	req.Longitude = &lon
	post := suite.submitPost(suite.token, req)
	suite.db.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{"status": models.StatusPublished, "published_at": time.Now()})

	w := suite.doJSON("GET", "/api/v1/public/posts/nearby?lat=51.5074&lon=-0.1278&radius_km=5", nil, "")
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(w.Body.String(), "Bridge closed")
}

func (suite *IntegrationTestSuite) TestUpdateDoesNotDuplicateVideos() {
	req := samplePost()
	req.VideoURLs = []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
	post := suite.submitPost(suite.token, req)

	// Same edit form saved twice.
	for i := 0; i < 2; i++ {
		w := suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d", post.ID), req, suite.token)
		suite.Equal(http.StatusOK, w.Code)
	}

	var count int64
	suite.db.Model(&models.Video{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *IntegrationTestSuite) TestPublishedAtSurvivesRepublish() {
	post := suite.submitPost(suite.token, samplePost())
	url := fmt.Sprintf("/api/v1/posts/%d/status", post.ID)

	w := suite.doJSON("PUT", url, models.TransitionRequest{Status: models.StatusPublished}, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)

	var first models.Post
	suite.db.First(&first, post.ID)
	suite.Require().NotNil(first.PublishedAt)

	w = suite.doJSON("PUT", url, models.TransitionRequest{Status: models.StatusRejected}, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.doJSON("PUT", url, models.TransitionRequest{Status: models.StatusPublished}, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)

	// The original publication instant is the permanent one.
	var second models.Post
	suite.db.First(&second, post.ID)
	suite.Require().NotNil(second.PublishedAt)
	suite.True(first.PublishedAt.Equal(*second.PublishedAt))
}

func (suite *IntegrationTestSuite) TestGuardedTransitionLoser() {
	post := suite.submitPost(suite.token, samplePost())

	w := suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d/status", post.ID),
		models.TransitionRequest{Status: models.StatusPublished}, suite.modToken)
	suite.Equal(http.StatusOK, w.Code)

	// A second moderator who read the post while it was still pending
	// hits the guard: zero rows, and no extra audit entry is written.
	postRepo := repositories.NewPostRepository(suite.db)
	affected, err := postRepo.UpdateStatusGuarded(post.ID, models.StatusPending, models.StatusPublished)
	suite.NoError(err)
	suite.Equal(int64(0), affected)

	var count int64
	suite.db.Model(&models.ModerationLog{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(2), count) // submitted + approved, nothing from the loser
}

func (suite *IntegrationTestSuite) TestTagReplaceIdempotent() {
	post := suite.submitPost(suite.token, samplePost())
	url := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	var count int64
	for i := 0; i < 2; i++ {
		w := suite.doJSON("PUT", url, samplePost(), suite.token)
		suite.Equal(http.StatusOK, w.Code)

		suite.db.Model(&models.PostTag{}).Where("post_id = ?", post.ID).Count(&count)
		suite.Equal(int64(2), count)
	}

	// The final link set depends only on the submitted list.
	req := samplePost()
	req.Tags = []string{"traffic"}
	w := suite.doJSON("PUT", url, req, suite.token)
	suite.Equal(http.StatusOK, w.Code)

	suite.db.Model(&models.PostTag{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *IntegrationTestSuite) TestFeaturedPosts() {
	adminToken, _ := suite.registerAdmin("curator", "curator@example.com")
	post := suite.submitPost(suite.token, samplePost())
	url := fmt.Sprintf("/api/v1/moderation/posts/%d/feature", post.ID)

	// Moderators can moderate but only admins curate.
	w := suite.doJSON("POST", url, nil, suite.modToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doJSON("POST", url, nil, adminToken)
	suite.Equal(http.StatusOK, w.Code)

	// Featuring twice is a no-op.
	w = suite.doJSON("POST", url, nil, adminToken)
	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.FeaturedPost{}).Where("post_id = ?", post.ID).Count(&count)
	suite.Equal(int64(1), count)

	// Still pending, so the public listing hides it.
	w = suite.doJSON("GET", "/api/v1/public/posts/featured", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "Bridge closed")

	suite.doJSON("PUT", fmt.Sprintf("/api/v1/posts/%d/status", post.ID),
		models.TransitionRequest{Status: models.StatusPublished}, suite.modToken)

	w = suite.doJSON("GET", "/api/v1/public/posts/featured", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Bridge closed")

	w = suite.doJSON("DELETE", url, nil, adminToken)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.doJSON("GET", "/api/v1/public/posts/featured", nil, "")
	suite.NotContains(w.Body.String(), "Bridge closed")
}

func (suite *IntegrationTestSuite) TestRelatedPosts() {
	publish := func(req models.SubmitPostRequest) models.Post {
		post := suite.submitPost(suite.token, req)
		suite.db.Model(&models.Post{}).Where("id = ?", post.ID).
			Updates(map[string]interface{}{"status": models.StatusPublished, "published_at": time.Now()})
		return post
	}

	anchor := publish(samplePost())

	sameCategory := samplePost()
	sameCategory.Title = "Power outage downtown"
	sameCategory.City = "Salem"
	publish(sameCategory)

	unrelated := samplePost()
	unrelated.Title = "Championship final tonight"
	unrelated.Category = "sports"
	unrelated.City = "Eugene"
	publish(unrelated)

	w := suite.doJSON("GET", fmt.Sprintf("/api/v1/public/posts/%d/related", anchor.ID), nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Power outage downtown")
	suite.NotContains(w.Body.String(), "Championship final tonight")
	suite.NotContains(w.Body.String(), "Bridge closed") // never itself
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
