// Package domain re-exports the persistent models so callers can import a
// single package.
package domain

import (
	"github.com/edulearn/edulearn-backend/internal/domain/blog"
	"github.com/edulearn/edulearn-backend/internal/domain/careers"
	"github.com/edulearn/edulearn-backend/internal/domain/learning"
	"github.com/edulearn/edulearn-backend/internal/domain/media"
	"github.com/edulearn/edulearn-backend/internal/domain/user"
)

type (
	User        = user.User
	UserSummary = user.Summary

	Lesson           = learning.Lesson
	LessonModule     = learning.LessonModule
	LessonContent    = learning.LessonContent
	LessonEnrollment = learning.LessonEnrollment
	LessonProgress   = learning.LessonProgress
	Payment          = learning.Payment

	LessonLevel      = learning.LessonLevel
	LessonStatus     = learning.LessonStatus
	ContentType      = learning.ContentType
	EnrollmentStatus = learning.EnrollmentStatus
	PaymentStatus    = learning.PaymentStatus
	PaymentMethod    = learning.PaymentMethod

	Podcast        = media.Podcast
	PodcastType    = media.PodcastType
	PodcastStatus  = media.PodcastStatus
	SocialAccount  = media.SocialAccount
	SocialPlatform = media.SocialPlatform

	BlogPost     = blog.Post
	BlogComment  = blog.Comment
	BlogLike     = blog.Like
	BlogCategory = blog.Category
	BlogStatus   = blog.PostStatus

	JobPosting        = careers.JobPosting
	JobApplication    = careers.JobApplication
	JobType           = careers.JobType
	JobStatus         = careers.JobStatus
	ExperienceLevel   = careers.ExperienceLevel
	ApplicationStatus = careers.ApplicationStatus
)

const DefaultAvatar = user.DefaultAvatar

const (
	LessonDraft     = learning.LessonDraft
	LessonPublished = learning.LessonPublished
	LessonArchived  = learning.LessonArchived

	EnrollmentPending   = learning.EnrollmentPending
	EnrollmentActive    = learning.EnrollmentActive
	EnrollmentCompleted = learning.EnrollmentCompleted
	EnrollmentExpired   = learning.EnrollmentExpired

	PaymentPending   = learning.PaymentPending
	PaymentCompleted = learning.PaymentCompleted
	PaymentFailed    = learning.PaymentFailed
	PaymentRefunded  = learning.PaymentRefunded

	PodcastAudio     = media.PodcastAudio
	PodcastVideo     = media.PodcastVideo
	PodcastDraft     = media.PodcastDraft
	PodcastPublished = media.PodcastPublished
	PodcastScheduled = media.PodcastScheduled

	PlatformFacebook = media.PlatformFacebook
	PlatformTwitter  = media.PlatformTwitter
	PlatformLinkedIn = media.PlatformLinkedIn

	BlogDraft     = blog.PostDraft
	BlogPublished = blog.PostPublished

	JobDraft  = careers.JobDraft
	JobOpen   = careers.JobOpen
	JobClosed = careers.JobClosed

	ApplicationPending   = careers.ApplicationPending
	ApplicationWithdrawn = careers.ApplicationWithdrawn
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Lesson{},
		&LessonModule{},
		&LessonContent{},
		&LessonEnrollment{},
		&LessonProgress{},
		&Payment{},
		&Podcast{},
		&SocialAccount{},
		&BlogPost{},
		&BlogComment{},
		&BlogLike{},
		&JobPosting{},
		&JobApplication{},
	}
}
