package handlers

import (
	"net/http"
	"strconv"

	"localpulse/middleware"
	"localpulse/models"
	"localpulse/services"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationService services.ModerationService
}

func NewModerationHandler(moderationService services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) TransitionPost(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}

	if err := h.moderationService.Transition(actor, uint(id), req.Status, req.Notes); err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	HTTPHelper.SendSuccess(c, "Status updated", gin.H{"status": req.Status})
}

func (h *ModerationHandler) GetHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		HTTPHelper.SendBadRequest(c, "Invalid post ID", HTTPHelper.EmptyJsonMap())
		return
	}

	entries, err := h.moderationService.History(uint(id))
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *ModerationHandler) GetLogs(c *gin.Context) {
	var params models.ModerationLogParams
	if err := c.ShouldBindQuery(&params); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}

	entries, total, err := h.moderationService.Logs(params)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   entries,
		"total":  total,
		"paging": HTTPHelper.GeneratePaging(c, 0, 0, params.PerPage, params.Page, int(total)),
	})
}
