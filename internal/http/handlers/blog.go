package handlers

import (
	"github.com/gin-gonic/gin"

	blogrepo "github.com/edulearn/edulearn-backend/internal/data/repos/blog"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type BlogHandler struct {
	log  *logger.Logger
	blog services.BlogService
}

func NewBlogHandler(log *logger.Logger, blog services.BlogService) *BlogHandler {
	return &BlogHandler{log: log.With("handler", "BlogHandler"), blog: blog}
}

// GET /api/blog/posts
func (h *BlogHandler) ListPosts(c *gin.Context) {
	f := blogrepo.PostFilter{
		Category: types.BlogCategory(c.Query("category")),
		Tag:      c.Query("tag"),
	}
	out, err := h.blog.PagePublished(dbcOf(c), f, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/blog/posts/popular
func (h *BlogHandler) Popular(c *gin.Context) {
	out, err := h.blog.Popular(dbcOf(c), queryInt(c, "limit", 5))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": out})
}

// GET /api/blog/posts/search
func (h *BlogHandler) Search(c *gin.Context) {
	out, err := h.blog.Search(dbcOf(c), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": out})
}

// GET /api/blog/posts/category/:category
func (h *BlogHandler) ByCategory(c *gin.Context) {
	out, err := h.blog.ListByCategory(dbcOf(c), types.BlogCategory(c.Param("category")))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": out})
}

// GET /api/blog/posts/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	out, err := h.blog.GetBySlug(dbcOf(c), c.Param("slug"), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"post": out})
}

// GET /api/blog/my/posts
func (h *BlogHandler) ListMine(c *gin.Context) {
	out, err := h.blog.ListMine(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": out})
}

type postRequest struct {
	Title           string             `json:"title" binding:"required,min=5,max=255"`
	Excerpt         string             `json:"excerpt" binding:"required,min=10,max=500"`
	Content         string             `json:"content" binding:"required,min=50"`
	FeaturedImage   string             `json:"featured_image" binding:"omitempty,url"`
	Category        types.BlogCategory `json:"category" binding:"omitempty,oneof=technology design business marketing programming tutorial news other"`
	Tags            []string           `json:"tags"`
	CommentsEnabled *bool              `json:"comments_enabled"`
	ReadTime        int                `json:"read_time" binding:"gte=0"`
}

// POST /api/blog/posts
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}
	commentsEnabled := true
	if req.CommentsEnabled != nil {
		commentsEnabled = *req.CommentsEnabled
	}
	out, err := h.blog.Create(dbcOf(c), viewerID(c), services.CreatePostInput{
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		FeaturedImage:   req.FeaturedImage,
		Category:        req.Category,
		Tags:            req.Tags,
		CommentsEnabled: commentsEnabled,
		ReadTime:        req.ReadTime,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"post": out})
}

type updatePostRequest struct {
	Title           *string             `json:"title" binding:"omitempty,min=5,max=255"`
	Excerpt         *string             `json:"excerpt" binding:"omitempty,min=10,max=500"`
	Content         *string             `json:"content" binding:"omitempty,min=50"`
	FeaturedImage   *string             `json:"featured_image"`
	Category        *types.BlogCategory `json:"category" binding:"omitempty,oneof=technology design business marketing programming tutorial news other"`
	Tags            []string            `json:"tags"`
	CommentsEnabled *bool               `json:"comments_enabled"`
	ReadTime        *int                `json:"read_time" binding:"omitempty,gte=1"`
}

// PUT /api/blog/posts/:id
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.blog.Update(dbcOf(c), id, viewerID(c), services.UpdatePostInput{
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		FeaturedImage:   req.FeaturedImage,
		Category:        req.Category,
		Tags:            req.Tags,
		CommentsEnabled: req.CommentsEnabled,
		ReadTime:        req.ReadTime,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"post": out})
}

// POST /api/blog/posts/:id/publish
func (h *BlogHandler) PublishPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.blog.Publish(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"post": out})
}

// DELETE /api/blog/posts/:id
func (h *BlogHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.blog.Delete(dbcOf(c), id, viewerID(c)); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type commentRequest struct {
	Content  string `json:"content" binding:"required,min=1"`
	ParentID *uint  `json:"parent_id"`
}

// POST /api/blog/posts/:id/comments
func (h *BlogHandler) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.blog.AddComment(dbcOf(c), id, viewerID(c), req.Content, req.ParentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"comment": out})
}

// PUT /api/blog/comments/:id
func (h *BlogHandler) UpdateComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.blog.UpdateComment(dbcOf(c), id, viewerID(c), req.Content)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"comment": out})
}

// DELETE /api/blog/comments/:id
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.blog.DeleteComment(dbcOf(c), id, viewerID(c)); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/blog/posts/:id/like
func (h *BlogHandler) ToggleLike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	liked, err := h.blog.ToggleLike(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"liked": liked})
}
