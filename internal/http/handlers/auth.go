package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

type registerRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Bio      string   `json:"bio" binding:"max=1000"`
	Skills   []string `json:"skills"`
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, token, err := ah.authService.Register(dbcOf(c), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
		Skills:   req.Skills,
	})
	if err != nil {
		response.RespondServiceError(c, ah.log, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"access_token": token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"user":         u,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, token, err := ah.authService.Login(dbcOf(c), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"user":         u,
	})
}

// GET /api/me
func (ah *AuthHandler) Me(c *gin.Context) {
	u, err := ah.authService.Me(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
