package handlers

import (
	"net/http"

	"localpulse/helper"
	"localpulse/models"
	"localpulse/services"

	"github.com/gin-gonic/gin"
)

var HTTPHelper = &helper.HTTPHelper{}

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		HTTPHelper.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HTTPHelper.SendBadRequest(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		HTTPHelper.SendUnauthorizedError(c, err.Error(), HTTPHelper.EmptyJsonMap())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := c.Get("user_id")

	user, err := h.authService.GetUserByID(userID.(uint))
	if err != nil {
		HTTPHelper.SendNotFoundError(c, "User not found", HTTPHelper.EmptyJsonMap())
		return
	}

	c.JSON(http.StatusOK, user)
}
