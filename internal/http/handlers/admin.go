package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

// AdminHandler serves /api/admin. Role checks happen in RequireAdmin.
type AdminHandler struct {
	log   *logger.Logger
	admin services.AdminService
}

func NewAdminHandler(log *logger.Logger, admin services.AdminService) *AdminHandler {
	return &AdminHandler{log: log.With("handler", "AdminHandler"), admin: admin}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	out, err := h.admin.Dashboard(dbcOf(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	out, err := h.admin.ListUsers(dbcOf(c), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.admin.GetUser(dbcOf(c), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": out})
}

func (h *AdminHandler) SetAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsAdmin *bool `json:"is_admin" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.admin.SetAdmin(dbcOf(c), viewerID(c), id, *req.IsAdmin)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": out})
}

func (h *AdminHandler) SetPublisher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsPublisher *bool `json:"is_publisher" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.admin.SetPublisher(dbcOf(c), id, *req.IsPublisher)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": out})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(dbcOf(c), id); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	status := types.ApplicationStatus(c.Query("status"))
	out, err := h.admin.ListApplications(dbcOf(c), status, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req applicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.admin.ApproveApplication(dbcOf(c), viewerID(c), id, services.ApplicationStatusInput{
		Status:   req.Status,
		Notes:    req.Notes,
		Feedback: req.Feedback,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"application": out})
}

func (h *AdminHandler) ListLessons(c *gin.Context) {
	out, err := h.admin.ListLessons(dbcOf(c), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *AdminHandler) DeleteLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteLesson(dbcOf(c), id); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *AdminHandler) ListBlogPosts(c *gin.Context) {
	out, err := h.admin.ListBlogPosts(dbcOf(c), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *AdminHandler) DeleteBlogPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteBlogPost(dbcOf(c), id); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
