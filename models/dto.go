package models

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SubmitPostRequest carries a new or edited submission. Tags may arrive as a
// repeated field or as one comma-delimited string; a nil Tags slice on update
// leaves existing tags untouched. Any client-supplied status is ignored.
type SubmitPostRequest struct {
	Title       string   `json:"title" form:"title" binding:"required,max=200"`
	Content     string   `json:"content" form:"content" binding:"required,max=10000"`
	Category    string   `json:"category" form:"category" binding:"required"`
	IsBreaking  bool     `json:"is_breaking" form:"is_breaking"`
	IsEmergency bool     `json:"is_emergency" form:"is_emergency"`
	Country     string   `json:"country" form:"country" binding:"required"`
	State       string   `json:"state" form:"state"`
	City        string   `json:"city" form:"city"`
	Address     string   `json:"address" form:"address"`
	Latitude    *float64 `json:"latitude" form:"latitude"`
	Longitude   *float64 `json:"longitude" form:"longitude"`
	Tags        []string `json:"tags" form:"tags"`
	ImageURL    string   `json:"image_url" form:"image_url"`
	VideoURLs   []string `json:"video_urls" form:"video_urls"`
}

type TransitionRequest struct {
	Status PostStatus `json:"status" binding:"required"`
	Notes  string     `json:"notes"`
}

type PostListParams struct {
	Category  string `form:"category"`
	Status    string `form:"status"`
	UserID    uint   `form:"user_id"`
	Search    string `form:"search"`
	Location  uint   `form:"location_id"`
	TagID     uint   `form:"tag_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page,default=1"`
	PerPage   int    `form:"per_page,default=10"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

type ModerationLogParams struct {
	UserID    uint   `form:"user_id"`
	PostID    uint   `form:"post_id"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page,default=1"`
	PerPage   int    `form:"per_page,default=20"`
}

type NearbyParams struct {
	Latitude  float64 `form:"lat" binding:"required"`
	Longitude float64 `form:"lon" binding:"required"`
	RadiusKm  float64 `form:"radius_km,default=10"`
	Limit     int     `form:"limit,default=20"`
}
