package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	careersrepo "github.com/edulearn/edulearn-backend/internal/data/repos/careers"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/domain/careers"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type JobPostingInput struct {
	Title            string
	Description      string
	Requirements     string
	Responsibilities string
	Benefits         string
	Company          string
	CompanyLogo      string
	Location         string
	IsRemote         bool
	JobType          types.JobType
	ExperienceLevel  types.ExperienceLevel
	SalaryMin        *float64
	SalaryMax        *float64
	SalaryCurrency   string
	Skills           []string
	Deadline         *time.Time
	// Status defaults to open.
	Status types.JobStatus
}

type UpdateJobPostingInput struct {
	Title            *string
	Description      *string
	Requirements     *string
	Responsibilities *string
	Benefits         *string
	Company          *string
	CompanyLogo      *string
	Location         *string
	IsRemote         *bool
	JobType          *types.JobType
	ExperienceLevel  *types.ExperienceLevel
	SalaryMin        *float64
	SalaryMax        *float64
	SalaryCurrency   *string
	Skills           []string
	Deadline         *time.Time
	Status           *types.JobStatus
}

type ApplyInput struct {
	CoverLetter         string
	ResumeURL           string
	PortfolioURL        string
	Phone               string
	LinkedInURL         string
	GitHubURL           string
	AdditionalDocuments []string
}

type ApplicationStatusInput struct {
	Status   types.ApplicationStatus
	Notes    string
	Feedback string
}

type JobPage struct {
	Jobs  []*types.JobPosting `json:"jobs"`
	Total int64               `json:"total"`
	Pages int                 `json:"pages"`
}

type JobView struct {
	*types.JobPosting
	Poster          *types.UserSummary    `json:"poster,omitempty"`
	HasApplied      *bool                 `json:"has_applied,omitempty"`
	UserApplication *types.JobApplication `json:"user_application,omitempty"`
}

type JobStatistics struct {
	TotalApplications         int64                             `json:"total_applications"`
	StatusBreakdown           map[types.ApplicationStatus]int64 `json:"status_breakdown"`
	ViewCount                 int                               `json:"view_count"`
	AverageApplicationsPerDay float64                           `json:"average_applications_per_day"`
}

type JobService interface {
	PageOpen(dbc dbctx.Context, f careersrepo.JobFilter, page, limit int) (*JobPage, error)
	Search(dbc dbctx.Context, q string) ([]*types.JobPosting, error)
	// GetBySlug counts a view.
	GetBySlug(dbc dbctx.Context, slug string, viewerID uint) (*JobView, error)
	ListMine(dbc dbctx.Context, userID uint) ([]*types.JobPosting, error)

	Create(dbc dbctx.Context, userID uint, in JobPostingInput) (*types.JobPosting, error)
	Update(dbc dbctx.Context, jobID, userID uint, in UpdateJobPostingInput) (*types.JobPosting, error)
	Publish(dbc dbctx.Context, jobID, userID uint) (*types.JobPosting, error)
	Close(dbc dbctx.Context, jobID, userID uint) (*types.JobPosting, error)
	Delete(dbc dbctx.Context, jobID, userID uint) error

	Apply(dbc dbctx.Context, jobID, userID uint, in ApplyInput) (*types.JobApplication, error)
	ListMyApplications(dbc dbctx.Context, userID uint) ([]*types.JobApplication, error)
	ListApplications(dbc dbctx.Context, jobID, userID uint) ([]*types.JobApplication, error)
	UpdateApplicationStatus(dbc dbctx.Context, applicationID, userID uint, in ApplicationStatusInput) (*types.JobApplication, error)
	Withdraw(dbc dbctx.Context, applicationID, userID uint) (*types.JobApplication, error)
	Statistics(dbc dbctx.Context, jobID, userID uint) (*JobStatistics, error)
}

type jobService struct {
	db           *gorm.DB
	log          *logger.Logger
	jobs         careersrepo.JobRepo
	applications careersrepo.ApplicationRepo
	notify       Notifier
	now          func() time.Time
}

func NewJobService(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobs careersrepo.JobRepo,
	applications careersrepo.ApplicationRepo,
	notify Notifier,
) JobService {
	return &jobService{
		db:           db,
		log:          baseLog.With("service", "JobService"),
		jobs:         jobs,
		applications: applications,
		notify:       notify,
		now:          time.Now,
	}
}

func (s *jobService) PageOpen(dbc dbctx.Context, f careersrepo.JobFilter, page, limit int) (*JobPage, error) {
	page, limit = normalizePage(page, limit, 10)
	rows, total, err := s.jobs.PageOpen(dbc, f, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return &JobPage{Jobs: rows, Total: total, Pages: pageCount(total, limit)}, nil
}

func (s *jobService) Search(dbc dbctx.Context, q string) ([]*types.JobPosting, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []*types.JobPosting{}, nil
	}
	rows, err := s.jobs.SearchOpen(dbc, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	return rows, nil
}

func (s *jobService) GetBySlug(dbc dbctx.Context, slug string, viewerID uint) (*JobView, error) {
	j, err := s.jobs.GetBySlug(dbc, slug)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if j == nil {
		return nil, apierr.NotFound("job_not_found", "job posting not found")
	}
	if err := s.jobs.IncrementViewCount(dbc, j.ID); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	j.ViewCount++

	v := &JobView{JobPosting: j, Poster: j.Poster.Summary()}
	if viewerID != 0 {
		app, err := s.applications.GetByUserAndJob(dbc, viewerID, j.ID)
		if err != nil {
			return nil, fmt.Errorf("load viewer application: %w", err)
		}
		applied := app != nil
		v.HasApplied = &applied
		v.UserApplication = app
	}
	return v, nil
}

func (s *jobService) ListMine(dbc dbctx.Context, userID uint) ([]*types.JobPosting, error) {
	rows, err := s.jobs.ListByPoster(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list my jobs: %w", err)
	}
	return rows, nil
}

func (s *jobService) Create(dbc dbctx.Context, userID uint, in JobPostingInput) (*types.JobPosting, error) {
	if err := ensure(Resource{Kind: ResourceJob}, Actor{UserID: userID}, ActionCreate, "forbidden"); err != nil {
		return nil, err
	}
	now := s.now()
	j := &types.JobPosting{
		Title:            strings.TrimSpace(in.Title),
		Slug:             Slugify(in.Title, "job", now),
		Description:      in.Description,
		Requirements:     in.Requirements,
		Responsibilities: in.Responsibilities,
		Benefits:         in.Benefits,
		Company:          in.Company,
		CompanyLogo:      in.CompanyLogo,
		Location:         in.Location,
		IsRemote:         in.IsRemote,
		JobType:          in.JobType,
		ExperienceLevel:  in.ExperienceLevel,
		SalaryMin:        in.SalaryMin,
		SalaryMax:        in.SalaryMax,
		SalaryCurrency:   in.SalaryCurrency,
		Skills:           datatypes.JSONSlice[string](nonNilStrings(in.Skills)),
		Status:           in.Status,
		Deadline:         in.Deadline,
		PostedBy:         userID,
	}
	if j.SalaryCurrency == "" {
		j.SalaryCurrency = careers.DefaultSalaryCurrency
	}
	if j.Status == "" {
		j.Status = types.JobOpen
	}
	if j.Status == types.JobOpen {
		j.PublishedAt = &now
	}
	if err := s.jobs.Create(dbc, j); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.BadRequest("slug_taken", "a job posting with this slug already exists")
		}
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.log.Info("job posting created", "job_id", j.ID, "posted_by", userID, "status", j.Status)
	return j, nil
}

func (s *jobService) owned(dbc dbctx.Context, jobID, userID uint, action Action) (*types.JobPosting, error) {
	j, err := s.jobs.GetByID(dbc, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if j == nil {
		return nil, apierr.NotFound("job_not_found", "job posting not found")
	}
	res := Resource{Kind: ResourceJob, OwnerID: j.PostedBy}
	if err := ensure(res, Actor{UserID: userID}, action, "not_owner"); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *jobService) Update(dbc dbctx.Context, jobID, userID uint, in UpdateJobPostingInput) (*types.JobPosting, error) {
	j, err := s.owned(dbc, jobID, userID, ActionUpdate)
	if err != nil {
		return nil, err
	}
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&j.Title, in.Title)
	setString(&j.Description, in.Description)
	setString(&j.Requirements, in.Requirements)
	setString(&j.Responsibilities, in.Responsibilities)
	setString(&j.Benefits, in.Benefits)
	setString(&j.Company, in.Company)
	setString(&j.CompanyLogo, in.CompanyLogo)
	setString(&j.Location, in.Location)
	setString(&j.SalaryCurrency, in.SalaryCurrency)
	if in.IsRemote != nil {
		j.IsRemote = *in.IsRemote
	}
	if in.JobType != nil {
		j.JobType = *in.JobType
	}
	if in.ExperienceLevel != nil {
		j.ExperienceLevel = *in.ExperienceLevel
	}
	if in.SalaryMin != nil {
		j.SalaryMin = in.SalaryMin
	}
	if in.SalaryMax != nil {
		j.SalaryMax = in.SalaryMax
	}
	if in.Skills != nil {
		j.Skills = datatypes.JSONSlice[string](in.Skills)
	}
	if in.Deadline != nil {
		j.Deadline = in.Deadline
	}
	if in.Status != nil {
		j.Status = *in.Status
	}
	if err := s.jobs.Update(dbc, j); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return j, nil
}

func (s *jobService) Publish(dbc dbctx.Context, jobID, userID uint) (*types.JobPosting, error) {
	j, err := s.owned(dbc, jobID, userID, ActionPublish)
	if err != nil {
		return nil, err
	}
	now := s.now()
	j.Status = types.JobOpen
	j.PublishedAt = &now
	if err := s.jobs.Update(dbc, j); err != nil {
		return nil, fmt.Errorf("publish job: %w", err)
	}
	return j, nil
}

func (s *jobService) Close(dbc dbctx.Context, jobID, userID uint) (*types.JobPosting, error) {
	j, err := s.owned(dbc, jobID, userID, ActionManage)
	if err != nil {
		return nil, err
	}
	j.Status = types.JobClosed
	if err := s.jobs.Update(dbc, j); err != nil {
		return nil, fmt.Errorf("close job: %w", err)
	}
	return j, nil
}

func (s *jobService) Delete(dbc dbctx.Context, jobID, userID uint) error {
	if _, err := s.owned(dbc, jobID, userID, ActionDelete); err != nil {
		return err
	}
	if err := s.jobs.DeleteCascade(dbc, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	s.log.Info("job posting deleted", "job_id", jobID, "user_id", userID)
	return nil
}

var errAlreadyApplied = apierr.BadRequest("already_applied", "you have already applied to this job")

func (s *jobService) Apply(dbc dbctx.Context, jobID, userID uint, in ApplyInput) (*types.JobApplication, error) {
	var out *types.JobApplication
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		j, err := s.jobs.GetByID(inner, jobID)
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		if j == nil {
			return apierr.NotFound("job_not_found", "job posting not found")
		}
		now := s.now()
		if j.Status != types.JobOpen {
			return apierr.BadRequest("job_not_open", "this job no longer accepts applications")
		}
		if !j.AcceptsApplications(now) {
			return apierr.BadRequest("deadline_passed", "the application deadline has passed")
		}
		existing, err := s.applications.GetByUserAndJob(inner, userID, jobID)
		if err != nil {
			return fmt.Errorf("check application: %w", err)
		}
		if existing != nil {
			return errAlreadyApplied
		}

		app := &types.JobApplication{
			UserID:              userID,
			JobID:               jobID,
			CoverLetter:         in.CoverLetter,
			ResumeURL:           in.ResumeURL,
			PortfolioURL:        in.PortfolioURL,
			Phone:               in.Phone,
			LinkedInURL:         in.LinkedInURL,
			GitHubURL:           in.GitHubURL,
			AdditionalDocuments: datatypes.JSONSlice[string](nonNilStrings(in.AdditionalDocuments)),
			Status:              types.ApplicationPending,
			AppliedAt:           now,
		}
		if err := s.applications.Create(inner, app); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyApplied
			}
			return fmt.Errorf("create application: %w", err)
		}
		if err := s.jobs.IncrementApplicationCount(inner, jobID); err != nil {
			return fmt.Errorf("count application: %w", err)
		}
		out = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("application submitted", "application_id", out.ID, "job_id", jobID, "user_id", userID)
	return out, nil
}

func (s *jobService) ListMyApplications(dbc dbctx.Context, userID uint) ([]*types.JobApplication, error) {
	rows, err := s.applications.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list my applications: %w", err)
	}
	return rows, nil
}

func (s *jobService) ListApplications(dbc dbctx.Context, jobID, userID uint) ([]*types.JobApplication, error) {
	if _, err := s.owned(dbc, jobID, userID, ActionManage); err != nil {
		return nil, err
	}
	rows, err := s.applications.ListByJob(dbc, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return rows, nil
}

func (s *jobService) loadApplication(dbc dbctx.Context, id uint) (*types.JobApplication, error) {
	app, err := s.applications.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil || app.Job == nil {
		return nil, apierr.NotFound("application_not_found", "application not found")
	}
	return app, nil
}

func (s *jobService) UpdateApplicationStatus(dbc dbctx.Context, applicationID, userID uint, in ApplicationStatusInput) (*types.JobApplication, error) {
	app, err := s.loadApplication(dbc, applicationID)
	if err != nil {
		return nil, err
	}
	res := Resource{Kind: ResourceApplication, OwnerID: app.Job.PostedBy}
	if err := ensure(res, Actor{UserID: userID}, ActionManage, "not_owner"); err != nil {
		return nil, err
	}
	if err := reviewApplication(s.applications, dbc, app, userID, in, s.now()); err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.ApplicationStatusChanged(dbc.Ctx, app)
	}
	return app, nil
}

// reviewApplication applies a reviewer's decision. Empty notes or feedback
// keep the previous value.
func reviewApplication(repo careersrepo.ApplicationRepo, dbc dbctx.Context, app *types.JobApplication, reviewerID uint, in ApplicationStatusInput, now time.Time) error {
	app.Status = in.Status
	if in.Notes != "" {
		app.Notes = in.Notes
	}
	if in.Feedback != "" {
		app.Feedback = in.Feedback
	}
	app.ReviewedAt = &now
	app.ReviewedBy = &reviewerID
	if err := repo.Update(dbc, app); err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return nil
}

func (s *jobService) Withdraw(dbc dbctx.Context, applicationID, userID uint) (*types.JobApplication, error) {
	app, err := s.loadApplication(dbc, applicationID)
	if err != nil {
		return nil, err
	}
	res := Resource{Kind: ResourceApplication, OwnerID: app.UserID}
	if err := ensure(res, Actor{UserID: userID}, ActionUpdate, "not_owner"); err != nil {
		return nil, err
	}
	app.Status = types.ApplicationWithdrawn
	if err := s.applications.Update(dbc, app); err != nil {
		return nil, fmt.Errorf("withdraw application: %w", err)
	}
	return app, nil
}

func (s *jobService) Statistics(dbc dbctx.Context, jobID, userID uint) (*JobStatistics, error) {
	j, err := s.owned(dbc, jobID, userID, ActionManage)
	if err != nil {
		return nil, err
	}
	counts, err := s.applications.StatusCounts(dbc, jobID)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &JobStatistics{
		TotalApplications:         total,
		StatusBreakdown:           counts,
		ViewCount:                 j.ViewCount,
		AverageApplicationsPerDay: float64(total) / float64(daysSince(j.CreatedAt, s.now())),
	}, nil
}

// daysSince rounds the elapsed time up to whole days, never below 1.
func daysSince(from, now time.Time) int {
	days := int(math.Ceil(now.Sub(from).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
