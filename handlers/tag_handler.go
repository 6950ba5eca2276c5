package handlers

import (
	"net/http"

	"localpulse/services"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tagService services.TagService
}

func NewTagHandler(tagService services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

func (h *TagHandler) GetPopularTags(c *gin.Context) {
	tags, err := h.tagService.Popular(limitParam(c, 20))
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
