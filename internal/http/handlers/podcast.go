package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mediarepo "github.com/edulearn/edulearn-backend/internal/data/repos/media"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type PodcastHandler struct {
	log      *logger.Logger
	podcasts services.PodcastService
}

func NewPodcastHandler(log *logger.Logger, podcasts services.PodcastService) *PodcastHandler {
	return &PodcastHandler{log: log.With("handler", "PodcastHandler"), podcasts: podcasts}
}

type podcastRequest struct {
	Title              string            `json:"title" binding:"required,min=3,max=255"`
	Description        string            `json:"description" binding:"required,min=10"`
	Type               types.PodcastType `json:"type" binding:"required,oneof=audio video"`
	MediaURL           string            `json:"media_url" binding:"required,url"`
	ThumbnailURL       string            `json:"thumbnail_url" binding:"omitempty,url"`
	Duration           int               `json:"duration" binding:"required,gte=1"`
	Tags               []string          `json:"tags"`
	Category           string            `json:"category"`
	AutoShareOnPublish *bool             `json:"auto_share_on_publish"`
	ScheduledFor       string            `json:"scheduled_for"`
}

// POST /api/podcasts
func (h *PodcastHandler) Create(c *gin.Context) {
	var req podcastRequest
	if !bindJSON(c, &req) {
		return
	}
	scheduledFor, err := parseTime(req.ScheduledFor)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_scheduled_for", err)
		return
	}
	out, err := h.podcasts.Create(dbcOf(c), viewerID(c), services.CreatePodcastInput{
		Title:              req.Title,
		Description:        req.Description,
		Type:               req.Type,
		MediaURL:           req.MediaURL,
		ThumbnailURL:       req.ThumbnailURL,
		Duration:           req.Duration,
		Tags:               req.Tags,
		Category:           req.Category,
		AutoShareOnPublish: req.AutoShareOnPublish,
		ScheduledFor:       scheduledFor,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"podcast": out})
}

// GET /api/podcasts
func (h *PodcastHandler) List(c *gin.Context) {
	f := mediarepo.PodcastFilter{
		Type:     types.PodcastType(c.Query("type")),
		Category: c.Query("category"),
	}
	out, err := h.podcasts.PagePublished(dbcOf(c), f, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/podcasts/search
func (h *PodcastHandler) Search(c *gin.Context) {
	out, err := h.podcasts.Search(dbcOf(c), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"podcasts": out})
}

// GET /api/podcasts/my-podcasts
func (h *PodcastHandler) ListMine(c *gin.Context) {
	out, err := h.podcasts.ListMine(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"podcasts": out})
}

// GET /api/podcasts/:id
func (h *PodcastHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.podcasts.Get(dbcOf(c), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"podcast": out})
}

type updatePodcastRequest struct {
	Title              *string            `json:"title" binding:"omitempty,min=3,max=255"`
	Description        *string            `json:"description" binding:"omitempty,min=10"`
	Type               *types.PodcastType `json:"type" binding:"omitempty,oneof=audio video"`
	MediaURL           *string            `json:"media_url" binding:"omitempty,url"`
	ThumbnailURL       *string            `json:"thumbnail_url"`
	Duration           *int               `json:"duration" binding:"omitempty,gte=1"`
	Tags               []string           `json:"tags"`
	Category           *string            `json:"category"`
	AutoShareOnPublish *bool              `json:"auto_share_on_publish"`
}

// PUT /api/podcasts/:id
func (h *PodcastHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updatePodcastRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.podcasts.Update(dbcOf(c), id, viewerID(c), services.UpdatePodcastInput{
		Title:              req.Title,
		Description:        req.Description,
		Type:               req.Type,
		MediaURL:           req.MediaURL,
		ThumbnailURL:       req.ThumbnailURL,
		Duration:           req.Duration,
		Tags:               req.Tags,
		Category:           req.Category,
		AutoShareOnPublish: req.AutoShareOnPublish,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"podcast": out})
}

// DELETE /api/podcasts/:id
func (h *PodcastHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.podcasts.Delete(dbcOf(c), id, viewerID(c)); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/podcasts/:id/publish
func (h *PodcastHandler) Publish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.podcasts.Publish(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"podcast": out})
}

// POST /api/podcasts/:id/like
func (h *PodcastHandler) Like(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.podcasts.Like(dbcOf(c), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"podcast": out})
}
