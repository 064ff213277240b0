package learning

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentExpired   EnrollmentStatus = "expired"
)

// LessonEnrollment is unique per (user, lesson). The unique index, not the
// service pre-check, is what keeps concurrent enrollments from duplicating.
type LessonEnrollment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;uniqueIndex:idx_enrollment_user_lesson;column:user_id" json:"user_id"`
	LessonID    uint             `gorm:"not null;uniqueIndex:idx_enrollment_user_lesson;index;column:lesson_id" json:"lesson_id"`
	Status      EnrollmentStatus `gorm:"type:varchar(32);not null;index;column:status" json:"status"`
	PricePaid   float64          `gorm:"type:numeric(10,2);not null;default:0;column:price_paid" json:"price_paid"`
	Progress    int              `gorm:"not null;default:0;column:progress" json:"progress"`
	CompletedAt *time.Time       `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ExpiresAt   *time.Time       `gorm:"index;column:expires_at" json:"expires_at,omitempty"`
	EnrolledAt  time.Time        `gorm:"not null;column:enrolled_at" json:"enrolled_at"`

	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonEnrollment) TableName() string { return "lesson_enrollments" }

// LessonProgress is unique per (user, content). TimeSpent accumulates across
// updates and CompletedAt is set once.
type LessonProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_progress_user_content;column:user_id" json:"user_id"`
	ContentID   uint       `gorm:"not null;uniqueIndex:idx_progress_user_content;index;column:content_id" json:"content_id"`
	IsCompleted bool       `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	TimeSpent   int        `gorm:"not null;default:0;column:time_spent" json:"time_spent"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	StartedAt   time.Time  `gorm:"not null;column:started_at" json:"started_at"`

	Content *LessonContent `gorm:"foreignKey:ContentID" json:"content,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
