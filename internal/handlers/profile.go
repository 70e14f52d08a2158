package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unigang/annex/internal/middleware"
	"unigang/annex/internal/service"
)

func (h HandlerSet) GetProfile(c *gin.Context) {
	p, err := h.profile.Get(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	p, err := h.profile.Update(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type pictureRequest struct {
	Picture string `json:"picture" binding:"required"`
}

func (h HandlerSet) SetProfilePicture(c *gin.Context) {
	var req pictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	p, err := h.profile.SetPicture(c.Request.Context(), middleware.SessionFrom(c), req.Picture)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h HandlerSet) RemoveProfilePicture(c *gin.Context) {
	p, err := h.profile.RemovePicture(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
