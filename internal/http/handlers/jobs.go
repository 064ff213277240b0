package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	careersrepo "github.com/edulearn/edulearn-backend/internal/data/repos/careers"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type JobHandler struct {
	log  *logger.Logger
	jobs services.JobService
}

func NewJobHandler(log *logger.Logger, jobs services.JobService) *JobHandler {
	return &JobHandler{log: log.With("handler", "JobHandler"), jobs: jobs}
}

// GET /api/jobs
func (h *JobHandler) List(c *gin.Context) {
	f := careersrepo.JobFilter{
		JobType:  types.JobType(c.Query("job_type")),
		Location: c.Query("location"),
		IsRemote: queryBool(c, "is_remote"),
	}
	out, err := h.jobs.PageOpen(dbcOf(c), f, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/jobs/search
func (h *JobHandler) Search(c *gin.Context) {
	out, err := h.jobs.Search(dbcOf(c), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": out})
}

// GET /api/jobs/:id
// The segment is the job slug; it shares the wildcard name with the id routes.
func (h *JobHandler) GetBySlug(c *gin.Context) {
	out, err := h.jobs.GetBySlug(dbcOf(c), c.Param("id"), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"job": out})
}

// GET /api/jobs/my/postings
func (h *JobHandler) ListMine(c *gin.Context) {
	out, err := h.jobs.ListMine(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": out})
}

type jobRequest struct {
	Title            string                `json:"title" binding:"required,min=5,max=255"`
	Description      string                `json:"description" binding:"required,min=50"`
	Requirements     string                `json:"requirements"`
	Responsibilities string                `json:"responsibilities"`
	Benefits         string                `json:"benefits"`
	Company          string                `json:"company" binding:"required"`
	CompanyLogo      string                `json:"company_logo" binding:"omitempty,url"`
	Location         string                `json:"location" binding:"required"`
	IsRemote         bool                  `json:"is_remote"`
	JobType          types.JobType         `json:"job_type" binding:"required,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel  types.ExperienceLevel `json:"experience_level" binding:"required,oneof=entry junior mid senior lead"`
	SalaryMin        *float64              `json:"salary_min" binding:"omitempty,gte=0"`
	SalaryMax        *float64              `json:"salary_max" binding:"omitempty,gte=0"`
	SalaryCurrency   string                `json:"salary_currency" binding:"omitempty,len=3"`
	Skills           []string              `json:"skills"`
	Deadline         string                `json:"deadline"`
	Status           types.JobStatus       `json:"status" binding:"omitempty,oneof=draft open"`
}

// POST /api/jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req jobRequest
	if !bindJSON(c, &req) {
		return
	}
	deadline, err := parseTime(req.Deadline)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_deadline", err)
		return
	}
	out, err := h.jobs.Create(dbcOf(c), viewerID(c), services.JobPostingInput{
		Title:            req.Title,
		Description:      req.Description,
		Requirements:     req.Requirements,
		Responsibilities: req.Responsibilities,
		Benefits:         req.Benefits,
		Company:          req.Company,
		CompanyLogo:      req.CompanyLogo,
		Location:         req.Location,
		IsRemote:         req.IsRemote,
		JobType:          req.JobType,
		ExperienceLevel:  req.ExperienceLevel,
		SalaryMin:        req.SalaryMin,
		SalaryMax:        req.SalaryMax,
		SalaryCurrency:   req.SalaryCurrency,
		Skills:           req.Skills,
		Deadline:         deadline,
		Status:           req.Status,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"job": out})
}

type updateJobRequest struct {
	Title            *string                `json:"title" binding:"omitempty,min=5,max=255"`
	Description      *string                `json:"description" binding:"omitempty,min=50"`
	Requirements     *string                `json:"requirements"`
	Responsibilities *string                `json:"responsibilities"`
	Benefits         *string                `json:"benefits"`
	Company          *string                `json:"company"`
	CompanyLogo      *string                `json:"company_logo"`
	Location         *string                `json:"location"`
	IsRemote         *bool                  `json:"is_remote"`
	JobType          *types.JobType         `json:"job_type" binding:"omitempty,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel  *types.ExperienceLevel `json:"experience_level" binding:"omitempty,oneof=entry junior mid senior lead"`
	SalaryMin        *float64               `json:"salary_min" binding:"omitempty,gte=0"`
	SalaryMax        *float64               `json:"salary_max" binding:"omitempty,gte=0"`
	SalaryCurrency   *string                `json:"salary_currency" binding:"omitempty,len=3"`
	Skills           []string               `json:"skills"`
	Deadline         string                 `json:"deadline"`
	Status           *types.JobStatus       `json:"status" binding:"omitempty,oneof=draft open closed archived"`
}

// PUT /api/jobs/:id
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateJobRequest
	if !bindJSON(c, &req) {
		return
	}
	deadline, err := parseTime(req.Deadline)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_deadline", err)
		return
	}
	out, err := h.jobs.Update(dbcOf(c), id, viewerID(c), services.UpdateJobPostingInput{
		Title:            req.Title,
		Description:      req.Description,
		Requirements:     req.Requirements,
		Responsibilities: req.Responsibilities,
		Benefits:         req.Benefits,
		Company:          req.Company,
		CompanyLogo:      req.CompanyLogo,
		Location:         req.Location,
		IsRemote:         req.IsRemote,
		JobType:          req.JobType,
		ExperienceLevel:  req.ExperienceLevel,
		SalaryMin:        req.SalaryMin,
		SalaryMax:        req.SalaryMax,
		SalaryCurrency:   req.SalaryCurrency,
		Skills:           req.Skills,
		Deadline:         deadline,
		Status:           req.Status,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"job": out})
}

// POST /api/jobs/:id/publish
func (h *JobHandler) Publish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.jobs.Publish(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"job": out})
}

// POST /api/jobs/:id/close
func (h *JobHandler) Close(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.jobs.Close(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"job": out})
}

// DELETE /api/jobs/:id
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.jobs.Delete(dbcOf(c), id, viewerID(c)); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type applyRequest struct {
	CoverLetter         string   `json:"cover_letter" binding:"required,min=50"`
	ResumeURL           string   `json:"resume_url" binding:"omitempty,url"`
	PortfolioURL        string   `json:"portfolio_url" binding:"omitempty,url"`
	Phone               string   `json:"phone" binding:"max=32"`
	LinkedInURL         string   `json:"linkedin_url" binding:"omitempty,url"`
	GitHubURL           string   `json:"github_url" binding:"omitempty,url"`
	AdditionalDocuments []string `json:"additional_documents" binding:"omitempty,dive,url"`
}

// POST /api/jobs/:id/apply
func (h *JobHandler) Apply(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req applyRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.jobs.Apply(dbcOf(c), id, viewerID(c), services.ApplyInput{
		CoverLetter:         req.CoverLetter,
		ResumeURL:           req.ResumeURL,
		PortfolioURL:        req.PortfolioURL,
		Phone:               req.Phone,
		LinkedInURL:         req.LinkedInURL,
		GitHubURL:           req.GitHubURL,
		AdditionalDocuments: req.AdditionalDocuments,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"application": out})
}

// GET /api/jobs/my/applications
func (h *JobHandler) ListMyApplications(c *gin.Context) {
	out, err := h.jobs.ListMyApplications(dbcOf(c), viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"applications": out})
}

// GET /api/jobs/:id/applications
func (h *JobHandler) ListApplications(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.jobs.ListApplications(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"applications": out})
}

type applicationStatusRequest struct {
	Status   types.ApplicationStatus `json:"status" binding:"required,oneof=pending reviewing shortlisted interview accepted rejected"`
	Notes    string                  `json:"notes"`
	Feedback string                  `json:"feedback"`
}

// PUT /api/jobs/applications/:id/status
func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req applicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.jobs.UpdateApplicationStatus(dbcOf(c), id, viewerID(c), services.ApplicationStatusInput{
		Status:   req.Status,
		Notes:    req.Notes,
		Feedback: req.Feedback,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"application": out})
}

// POST /api/jobs/applications/:id/withdraw
func (h *JobHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.jobs.Withdraw(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"application": out})
}

// GET /api/jobs/:id/statistics
func (h *JobHandler) Statistics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.jobs.Statistics(dbcOf(c), id, viewerID(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"statistics": out})
}
