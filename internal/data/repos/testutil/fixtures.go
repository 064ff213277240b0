package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
		Avatar:   types.DefaultAvatar,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPublisher(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, username)
	if err := tx.WithContext(ctx).Model(u).Update("is_publisher", true).Error; err != nil {
		tb.Fatalf("seed publisher: %v", err)
	}
	u.IsPublisher = true
	return u
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, username)
	if err := tx.WithContext(ctx).Model(u).Update("is_admin", true).Error; err != nil {
		tb.Fatalf("seed admin: %v", err)
	}
	u.IsAdmin = true
	return u
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, instructorID uint, price float64, isFree bool) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		Title:        "lesson",
		Description:  "a lesson",
		Price:        price,
		IsFree:       isFree,
		Level:        "beginner",
		Status:       types.LessonPublished,
		InstructorID: instructorID,
	}
	if err := tx.WithContext(ctx).Omit("Instructor", "Modules").Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uint, order int) *types.LessonModule {
	tb.Helper()
	m := &types.LessonModule{
		LessonID: lessonID,
		Title:    fmt.Sprintf("module %d", order),
		Order:    order,
	}
	if err := tx.WithContext(ctx).Omit("Lesson", "Contents").Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uint, order int, preview bool) *types.LessonContent {
	tb.Helper()
	c := &types.LessonContent{
		ModuleID:      moduleID,
		Title:         fmt.Sprintf("content %d", order),
		Type:          "text",
		Content:       "body",
		Duration:      5,
		Order:         order,
		IsFreePreview: preview,
	}
	if err := tx.WithContext(ctx).Omit("Module").Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, lessonID uint, status types.EnrollmentStatus) *types.LessonEnrollment {
	tb.Helper()
	e := &types.LessonEnrollment{
		UserID:     userID,
		LessonID:   lessonID,
		Status:     status,
		EnrolledAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Lesson").Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedPodcast(tb testing.TB, ctx context.Context, tx *gorm.DB, publisherID uint, status types.PodcastStatus) *types.Podcast {
	tb.Helper()
	p := &types.Podcast{
		Title:              "episode",
		Description:        "an episode about things",
		Type:               types.PodcastAudio,
		Status:             status,
		MediaURL:           "https://cdn.example.com/ep.mp3",
		Duration:           60,
		PublisherID:        publisherID,
		AutoShareOnPublish: false,
	}
	if status == types.PodcastPublished {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
	if err := tx.WithContext(ctx).Omit("Publisher").Create(p).Error; err != nil {
		tb.Fatalf("seed podcast: %v", err)
	}
	return p
}

func SeedBlogPost(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uint, slug string, status types.BlogStatus) *types.BlogPost {
	tb.Helper()
	p := &types.BlogPost{
		Title:           "post " + slug,
		Slug:            slug,
		Excerpt:         "an excerpt",
		Content:         "content",
		Status:          status,
		Category:        "technology",
		ReadTime:        5,
		CommentsEnabled: true,
		AuthorID:        authorID,
	}
	if status == types.BlogPublished {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
	if err := tx.WithContext(ctx).Omit("Author").Create(p).Error; err != nil {
		tb.Fatalf("seed blog post: %v", err)
	}
	return p
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, postedBy uint, slug string, status types.JobStatus) *types.JobPosting {
	tb.Helper()
	j := &types.JobPosting{
		Title:           "Go engineer",
		Slug:            slug,
		Description:     "build things",
		Company:         "Acme",
		Location:        "Paris",
		JobType:         "full_time",
		ExperienceLevel: "mid",
		SalaryCurrency:  "EUR",
		Status:          status,
		PostedBy:        postedBy,
	}
	if err := tx.WithContext(ctx).Omit("Poster").Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func PtrTime(v time.Time) *time.Time { return &v }

func PtrUint(v uint) *uint { return &v }
