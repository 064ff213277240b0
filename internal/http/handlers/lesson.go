package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type LessonHandler struct {
	log         *logger.Logger
	lessons     services.LessonService
	enrollments services.EnrollmentService
	progress    services.ProgressService
}

func NewLessonHandler(
	log *logger.Logger,
	lessons services.LessonService,
	enrollments services.EnrollmentService,
	progress services.ProgressService,
) *LessonHandler {
	return &LessonHandler{
		log:         log.With("handler", "LessonHandler"),
		lessons:     lessons,
		enrollments: enrollments,
		progress:    progress,
	}
}

// GET /api/lessons
func (h *LessonHandler) ListLessons(c *gin.Context) {
	out, err := h.lessons.ListPublished(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": out})
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.lessons.GetLesson(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": out})
}

type lessonRequest struct {
	Title       string            `json:"title" binding:"required,min=3,max=255"`
	Description string            `json:"description" binding:"required,min=10"`
	Thumbnail   string            `json:"thumbnail" binding:"omitempty,url"`
	Price       float64           `json:"price" binding:"gte=0"`
	IsFree      bool              `json:"is_free"`
	Level       types.LessonLevel `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Duration    int               `json:"duration" binding:"gte=0"`
	AccessDays  int               `json:"access_days" binding:"gte=0"`
	Tags        []string          `json:"tags"`
}

// POST /api/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req lessonRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.lessons.Create(dbcOf(c), viewerID(c), services.CreateLessonInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Price:       req.Price,
		IsFree:      req.IsFree,
		Level:       req.Level,
		Duration:    req.Duration,
		AccessDays:  req.AccessDays,
		Tags:        req.Tags,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"lesson": out})
}

// GET /api/lessons/my/created
func (h *LessonHandler) ListMyLessons(c *gin.Context) {
	out, err := h.lessons.ListByInstructor(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": out})
}

type updateLessonRequest struct {
	Title       *string            `json:"title" binding:"omitempty,min=3,max=255"`
	Description *string            `json:"description" binding:"omitempty,min=10"`
	Thumbnail   *string            `json:"thumbnail"`
	Price       *float64           `json:"price" binding:"omitempty,gte=0"`
	IsFree      *bool              `json:"is_free"`
	Level       *types.LessonLevel `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Duration    *int               `json:"duration" binding:"omitempty,gte=0"`
	AccessDays  *int               `json:"access_days" binding:"omitempty,gte=0"`
	Tags        []string           `json:"tags"`
}

// PUT /api/lessons/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.lessons.Update(dbcOf(c), id, viewerID(c), services.UpdateLessonInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Price:       req.Price,
		IsFree:      req.IsFree,
		Level:       req.Level,
		Duration:    req.Duration,
		AccessDays:  req.AccessDays,
		Tags:        req.Tags,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": out})
}

// POST /api/lessons/:id/publish
func (h *LessonHandler) PublishLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.lessons.Publish(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": out})
}

// DELETE /api/lessons/:id
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.lessons.Delete(dbcOf(c), id, viewerID(c)); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type moduleRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description"`
	Order       int    `json:"order" binding:"gte=0"`
}

// POST /api/lessons/:id/modules
func (h *LessonHandler) CreateModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moduleRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.lessons.CreateModule(dbcOf(c), id, viewerID(c), services.CreateModuleInput{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": out})
}

type contentRequest struct {
	Title         string            `json:"title" binding:"required,min=3,max=255"`
	Type          types.ContentType `json:"type" binding:"required,oneof=video text quiz document"`
	Content       string            `json:"content" binding:"required"`
	Duration      int               `json:"duration" binding:"gte=0"`
	Order         int               `json:"order" binding:"gte=0"`
	IsFreePreview bool              `json:"is_free_preview"`
}

// POST /api/lessons/modules/:moduleId/contents
func (h *LessonHandler) CreateContent(c *gin.Context) {
	moduleID, ok := pathID(c, "moduleId")
	if !ok {
		return
	}
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.lessons.CreateContent(dbcOf(c), moduleID, viewerID(c), services.CreateContentInput{
		Title:         req.Title,
		Type:          req.Type,
		Content:       req.Content,
		Duration:      req.Duration,
		Order:         req.Order,
		IsFreePreview: req.IsFreePreview,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"content": out})
}

// GET /api/lessons/contents/:contentId
func (h *LessonHandler) GetContent(c *gin.Context) {
	contentID, ok := pathID(c, "contentId")
	if !ok {
		return
	}
	out, err := h.lessons.GetContent(dbcOf(c), viewerID(c), contentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"content": out})
}

type enrollRequest struct {
	LessonID      uint                `json:"lesson_id" binding:"required"`
	PaymentMethod types.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=stripe paypal mobile_money bank_transfer"`
}

// POST /api/lessons/enroll
func (h *LessonHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.enrollments.Enroll(dbcOf(c), viewerID(c), req.LessonID, req.PaymentMethod)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": out})
}

// GET /api/lessons/my/enrollments
func (h *LessonHandler) ListMyEnrollments(c *gin.Context) {
	out, err := h.enrollments.ListMine(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": out})
}

type progressRequest struct {
	ContentID   uint `json:"content_id" binding:"required"`
	IsCompleted bool `json:"is_completed"`
	TimeSpent   int  `json:"time_spent" binding:"gte=0"`
}

// POST /api/lessons/progress
func (h *LessonHandler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.progress.UpdateProgress(dbcOf(c), viewerID(c), services.UpdateProgressInput{
		ContentID:   req.ContentID,
		IsCompleted: req.IsCompleted,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": out})
}

// GET /api/lessons/:id/progress
func (h *LessonHandler) GetLessonProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.progress.GetLessonProgress(dbcOf(c), viewerID(c), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": out})
}
