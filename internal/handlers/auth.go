package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unigang/annex/internal/middleware"
	"unigang/annex/internal/service"
)

func (h HandlerSet) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	state, err := h.auth.Login(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(state))
}

func (h HandlerSet) SignUp(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	state, err := h.auth.Register(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.sessionResponse(state))
}

type identityRequest struct {
	Credential string `json:"credential" binding:"required"`
}

func (h HandlerSet) ExchangeIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	state, err := h.auth.ExchangeIdentity(c.Request.Context(), middleware.SessionFrom(c), req.Credential)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(state))
}

func (h HandlerSet) Logout(c *gin.Context) {
	if _, err := h.auth.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
