package app

import (
	"gorm.io/gorm"

	blogrepo "github.com/edulearn/edulearn-backend/internal/data/repos/blog"
	careersrepo "github.com/edulearn/edulearn-backend/internal/data/repos/careers"
	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	mediarepo "github.com/edulearn/edulearn-backend/internal/data/repos/media"
	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type LearningRepos struct {
	Lesson     learningrepo.LessonRepo
	Module     learningrepo.ModuleRepo
	Content    learningrepo.ContentRepo
	Enrollment learningrepo.EnrollmentRepo
	Progress   learningrepo.ProgressRepo
	Payment    learningrepo.PaymentRepo
}

type MediaRepos struct {
	Podcast       mediarepo.PodcastRepo
	SocialAccount mediarepo.SocialAccountRepo
}

type BlogRepos struct {
	Post    blogrepo.PostRepo
	Comment blogrepo.CommentRepo
	Like    blogrepo.LikeRepo
}

type CareersRepos struct {
	Job         careersrepo.JobRepo
	Application careersrepo.ApplicationRepo
}

type Repos struct {
	User     userrepo.UserRepo
	Learning LearningRepos
	Media    MediaRepos
	Blog     BlogRepos
	Careers  CareersRepos
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: userrepo.NewUserRepo(db, log),
		Learning: LearningRepos{
			Lesson:     learningrepo.NewLessonRepo(db, log),
			Module:     learningrepo.NewModuleRepo(db, log),
			Content:    learningrepo.NewContentRepo(db, log),
			Enrollment: learningrepo.NewEnrollmentRepo(db, log),
			Progress:   learningrepo.NewProgressRepo(db, log),
			Payment:    learningrepo.NewPaymentRepo(db, log),
		},
		Media: MediaRepos{
			Podcast:       mediarepo.NewPodcastRepo(db, log),
			SocialAccount: mediarepo.NewSocialAccountRepo(db, log),
		},
		Blog: BlogRepos{
			Post:    blogrepo.NewPostRepo(db, log),
			Comment: blogrepo.NewCommentRepo(db, log),
			Like:    blogrepo.NewLikeRepo(db, log),
		},
		Careers: CareersRepos{
			Job:         careersrepo.NewJobRepo(db, log),
			Application: careersrepo.NewApplicationRepo(db, log),
		},
	}
}
