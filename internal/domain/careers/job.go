package careers

import (
	"time"

	"gorm.io/datatypes"

	"github.com/edulearn/edulearn-backend/internal/domain/user"
)

type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
	JobFreelance  JobType = "freelance"
)

type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceLead   ExperienceLevel = "lead"
)

type JobStatus string

const (
	JobDraft    JobStatus = "draft"
	JobOpen     JobStatus = "open"
	JobClosed   JobStatus = "closed"
	JobArchived JobStatus = "archived"
)

const DefaultSalaryCurrency = "EUR"

type JobPosting struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Title            string                      `gorm:"not null;column:title" json:"title"`
	Slug             string                      `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Description      string                      `gorm:"type:text;not null;column:description" json:"description"`
	Requirements     string                      `gorm:"type:text;column:requirements" json:"requirements"`
	Responsibilities string                      `gorm:"type:text;column:responsibilities" json:"responsibilities,omitempty"`
	Benefits         string                      `gorm:"type:text;column:benefits" json:"benefits,omitempty"`
	Company          string                      `gorm:"not null;column:company" json:"company"`
	CompanyLogo      string                      `gorm:"column:company_logo" json:"company_logo,omitempty"`
	Location         string                      `gorm:"column:location" json:"location"`
	IsRemote         bool                        `gorm:"not null;default:false;column:is_remote" json:"is_remote"`
	JobType          JobType                     `gorm:"type:varchar(32);not null;index;column:job_type" json:"job_type"`
	ExperienceLevel  ExperienceLevel             `gorm:"type:varchar(32);not null;column:experience_level" json:"experience_level"`
	SalaryMin        *float64                    `gorm:"type:numeric(12,2);column:salary_min" json:"salary_min,omitempty"`
	SalaryMax        *float64                    `gorm:"type:numeric(12,2);column:salary_max" json:"salary_max,omitempty"`
	SalaryCurrency   string                      `gorm:"type:varchar(8);column:salary_currency" json:"salary_currency"`
	Skills           datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills"`
	Status           JobStatus                   `gorm:"type:varchar(16);not null;index;column:status" json:"status"`
	ApplicationCount int                         `gorm:"not null;default:0;column:application_count" json:"application_count"`
	ViewCount        int                         `gorm:"not null;default:0;column:view_count" json:"view_count"`
	Deadline         *time.Time                  `gorm:"column:deadline" json:"deadline,omitempty"`
	PostedBy         uint                        `gorm:"not null;index;column:posted_by" json:"posted_by"`
	PublishedAt      *time.Time                  `gorm:"column:published_at" json:"published_at,omitempty"`

	Poster *user.User `gorm:"foreignKey:PostedBy" json:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (JobPosting) TableName() string { return "job_postings" }

// AcceptsApplications reports whether the posting is open and its deadline,
// if any, has not passed.
func (j *JobPosting) AcceptsApplications(now time.Time) bool {
	return j.Status == JobOpen && (j.Deadline == nil || !j.Deadline.Before(now))
}

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewing   ApplicationStatus = "reviewing"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationInterview   ApplicationStatus = "interview"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

type JobApplication struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	UserID              uint                        `gorm:"not null;uniqueIndex:idx_application_user_job;column:user_id" json:"user_id"`
	JobID               uint                        `gorm:"not null;uniqueIndex:idx_application_user_job;index;column:job_id" json:"job_id"`
	CoverLetter         string                      `gorm:"type:text;not null;column:cover_letter" json:"cover_letter"`
	ResumeURL           string                      `gorm:"column:resume_url" json:"resume_url,omitempty"`
	PortfolioURL        string                      `gorm:"column:portfolio_url" json:"portfolio_url,omitempty"`
	Phone               string                      `gorm:"column:phone" json:"phone,omitempty"`
	LinkedInURL         string                      `gorm:"column:linkedin_url" json:"linkedin_url,omitempty"`
	GitHubURL           string                      `gorm:"column:github_url" json:"github_url,omitempty"`
	AdditionalDocuments datatypes.JSONSlice[string] `gorm:"column:additional_documents" json:"additional_documents,omitempty"`
	Status              ApplicationStatus           `gorm:"type:varchar(16);not null;index;column:status" json:"status"`
	Notes               string                      `gorm:"type:text;column:notes" json:"notes,omitempty"`
	Feedback            string                      `gorm:"type:text;column:feedback" json:"feedback,omitempty"`
	ReviewedAt          *time.Time                  `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy          *uint                       `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	AppliedAt           time.Time                   `gorm:"not null;index;column:applied_at" json:"applied_at"`

	Job       *JobPosting `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Applicant *user.User  `gorm:"foreignKey:UserID" json:"-"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (JobApplication) TableName() string { return "job_applications" }
