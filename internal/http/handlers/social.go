package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type SocialHandler struct {
	log    *logger.Logger
	social services.SocialService
}

func NewSocialHandler(log *logger.Logger, social services.SocialService) *SocialHandler {
	return &SocialHandler{log: log.With("handler", "SocialHandler"), social: social}
}

// GET /api/social/accounts
func (h *SocialHandler) ListAccounts(c *gin.Context) {
	out, err := h.social.ListAccounts(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"accounts": out})
}

type connectRequest struct {
	Platform         types.SocialPlatform `json:"platform" binding:"required,oneof=facebook twitter linkedin instagram"`
	AccessToken      string               `json:"access_token" binding:"required"`
	RefreshToken     string               `json:"refresh_token"`
	ExpiresIn        int                  `json:"expires_in" binding:"gte=0"`
	PlatformUserID   string               `json:"platform_user_id"`
	PlatformUsername string               `json:"platform_username"`
}

// POST /api/social/connect
func (h *SocialHandler) Connect(c *gin.Context) {
	var req connectRequest
	if !bindJSON(c, &req) {
		return
	}
	acc, err := h.social.Connect(dbcOf(c), viewerID(c), services.ConnectAccountInput{
		Platform:         req.Platform,
		AccessToken:      req.AccessToken,
		RefreshToken:     req.RefreshToken,
		ExpiresIn:        req.ExpiresIn,
		PlatformUserID:   req.PlatformUserID,
		PlatformUsername: req.PlatformUsername,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"account": services.SocialAccountView{
		ID:               acc.ID,
		Platform:         acc.Platform,
		PlatformUsername: acc.PlatformUsername,
		ConnectedAt:      acc.ConnectedAt,
	}})
}

// DELETE /api/social/disconnect/:platform
func (h *SocialHandler) Disconnect(c *gin.Context) {
	platform := types.SocialPlatform(c.Param("platform"))
	if err := h.social.Disconnect(dbcOf(c), viewerID(c), platform); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
