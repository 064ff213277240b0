package blog

import (
	"time"

	"gorm.io/datatypes"

	"github.com/edulearn/edulearn-backend/internal/domain/user"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

type Category string

const (
	CategoryTechnology  Category = "technology"
	CategoryDesign      Category = "design"
	CategoryBusiness    Category = "business"
	CategoryMarketing   Category = "marketing"
	CategoryProgramming Category = "programming"
	CategoryTutorial    Category = "tutorial"
	CategoryNews        Category = "news"
	CategoryOther       Category = "other"
)

const DefaultReadTime = 5

type Post struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Title           string                      `gorm:"not null;column:title" json:"title"`
	Slug            string                      `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Excerpt         string                      `gorm:"type:text;column:excerpt" json:"excerpt"`
	Content         string                      `gorm:"type:text;not null;column:content" json:"content"`
	FeaturedImage   string                      `gorm:"column:featured_image" json:"featured_image,omitempty"`
	Status          PostStatus                  `gorm:"type:varchar(16);not null;index;column:status" json:"status"`
	Category        Category                    `gorm:"type:varchar(32);not null;index;column:category" json:"category"`
	Tags            datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	ViewCount       int                         `gorm:"not null;default:0;column:view_count" json:"view_count"`
	LikeCount       int                         `gorm:"not null;default:0;column:like_count" json:"like_count"`
	CommentCount    int                         `gorm:"not null;default:0;column:comment_count" json:"comment_count"`
	ReadTime        int                         `gorm:"not null;column:read_time" json:"read_time"`
	CommentsEnabled bool                        `gorm:"not null;column:comments_enabled" json:"comments_enabled"`
	AuthorID        uint                        `gorm:"not null;index;column:author_id" json:"author_id"`
	PublishedAt     *time.Time                  `gorm:"index;column:published_at" json:"published_at,omitempty"`

	Author *user.User `gorm:"foreignKey:AuthorID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Post) TableName() string { return "blog_posts" }

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index;column:post_id" json:"post_id"`
	UserID   uint   `gorm:"not null;index;column:user_id" json:"user_id"`
	ParentID *uint  `gorm:"index;column:parent_id" json:"parent_id,omitempty"`
	Content  string `gorm:"type:text;not null;column:content" json:"content"`
	IsEdited bool   `gorm:"not null;default:false;column:is_edited" json:"is_edited"`

	Post *Post `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Comment) TableName() string { return "blog_comments" }

type Like struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PostID uint `gorm:"not null;uniqueIndex:idx_blog_like_user_post;column:post_id" json:"post_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_blog_like_user_post;column:user_id" json:"user_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Like) TableName() string { return "blog_likes" }
