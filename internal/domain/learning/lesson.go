package learning

import (
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/edulearn/edulearn-backend/internal/domain/user"
)

type LessonLevel string

const (
	LevelBeginner     LessonLevel = "beginner"
	LevelIntermediate LessonLevel = "intermediate"
	LevelAdvanced     LessonLevel = "advanced"
)

type LessonStatus string

const (
	LessonDraft     LessonStatus = "draft"
	LessonPublished LessonStatus = "published"
	LessonArchived  LessonStatus = "archived"
)

type Lesson struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Title           string                      `gorm:"not null;column:title" json:"title"`
	Description     string                      `gorm:"type:text;column:description" json:"description"`
	Thumbnail       string                      `gorm:"column:thumbnail" json:"thumbnail,omitempty"`
	Price           float64                     `gorm:"type:numeric(10,2);not null;default:0;column:price" json:"price"`
	IsFree          bool                        `gorm:"not null;default:false;column:is_free" json:"is_free"`
	Level           LessonLevel                 `gorm:"type:varchar(32);not null;default:'beginner';column:level" json:"level"`
	Status          LessonStatus                `gorm:"type:varchar(32);not null;default:'draft';index;column:status" json:"status"`
	Duration        int                         `gorm:"not null;default:0;column:duration" json:"duration"`
	AccessDays      int                         `gorm:"not null;default:0;column:access_days" json:"access_days"`
	Tags            datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	EnrollmentCount int                         `gorm:"not null;default:0;column:enrollment_count" json:"enrollment_count"`
	InstructorID    uint                        `gorm:"not null;index;column:instructor_id" json:"instructor_id"`

	Instructor *user.User      `gorm:"foreignKey:InstructorID" json:"-"`
	Modules    []*LessonModule `gorm:"foreignKey:LessonID" json:"modules,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

// EffectivePrice is what an enrollment charges: free lessons cost nothing
// whatever price they carry.
func (l *Lesson) EffectivePrice() float64 {
	if l.IsFree || l.Price <= 0 {
		return 0
	}
	return l.Price
}

// AccessUntil is when an enrollment made at enrolledAt stops granting access.
// Nil means lifetime access.
func (l *Lesson) AccessUntil(enrolledAt time.Time) *time.Time {
	if l.AccessDays <= 0 {
		return nil
	}
	until := enrolledAt.AddDate(0, 0, l.AccessDays)
	return &until
}

// SortTree orders modules and their contents by display order, then id.
func (l *Lesson) SortTree() {
	sort.SliceStable(l.Modules, func(i, j int) bool {
		if l.Modules[i].Order != l.Modules[j].Order {
			return l.Modules[i].Order < l.Modules[j].Order
		}
		return l.Modules[i].ID < l.Modules[j].ID
	})
	for _, m := range l.Modules {
		sort.SliceStable(m.Contents, func(i, j int) bool {
			if m.Contents[i].Order != m.Contents[j].Order {
				return m.Contents[i].Order < m.Contents[j].Order
			}
			return m.Contents[i].ID < m.Contents[j].ID
		})
	}
}

type LessonModule struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	LessonID    uint   `gorm:"not null;index;column:lesson_id" json:"lesson_id"`
	Title       string `gorm:"not null;column:title" json:"title"`
	Description string `gorm:"type:text;column:description" json:"description,omitempty"`
	Order       int    `gorm:"not null;default:0;column:order" json:"order"`

	Lesson   *Lesson          `gorm:"foreignKey:LessonID" json:"-"`
	Contents []*LessonContent `gorm:"foreignKey:ModuleID" json:"contents"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonModule) TableName() string { return "lesson_modules" }

type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentText     ContentType = "text"
	ContentQuiz     ContentType = "quiz"
	ContentDocument ContentType = "document"
)

type LessonContent struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ModuleID      uint        `gorm:"not null;index;column:module_id" json:"module_id"`
	Title         string      `gorm:"not null;column:title" json:"title"`
	Type          ContentType `gorm:"type:varchar(32);not null;column:type" json:"type"`
	Content       string      `gorm:"type:text;column:content" json:"content"`
	Duration      int         `gorm:"not null;default:0;column:duration" json:"duration"`
	Order         int         `gorm:"not null;default:0;column:order" json:"order"`
	IsFreePreview bool        `gorm:"not null;default:false;column:is_free_preview" json:"is_free_preview"`

	Module *LessonModule `gorm:"foreignKey:ModuleID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonContent) TableName() string { return "lesson_contents" }
