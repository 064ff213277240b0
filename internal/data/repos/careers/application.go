package careers

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type ApplicationRepo interface {
	Create(dbc dbctx.Context, row *types.JobApplication) error
	// GetByID returns the application with its job and applicant loaded.
	GetByID(dbc dbctx.Context, id uint) (*types.JobApplication, error)
	GetByUserAndJob(dbc dbctx.Context, userID, jobID uint) (*types.JobApplication, error)

	ListByUser(dbc dbctx.Context, userID uint) ([]*types.JobApplication, error)
	ListByJob(dbc dbctx.Context, jobID uint) ([]*types.JobApplication, error)
	// StatusCounts groups the job's applications by status.
	StatusCounts(dbc dbctx.Context, jobID uint) (map[types.ApplicationStatus]int64, error)

	Page(dbc dbctx.Context, status types.ApplicationStatus, offset, limit int) ([]*types.JobApplication, int64, error)
	Count(dbc dbctx.Context, status types.ApplicationStatus) (int64, error)
	Recent(dbc dbctx.Context, limit int) ([]*types.JobApplication, error)

	Update(dbc dbctx.Context, row *types.JobApplication) error
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) Create(dbc dbctx.Context, row *types.JobApplication) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Job", "Applicant").Create(row).Error
}

func (r *applicationRepo) first(q *gorm.DB) (*types.JobApplication, error) {
	var out types.JobApplication
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *applicationRepo) GetByID(dbc dbctx.Context, id uint) (*types.JobApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Preload("Job").Preload("Applicant").Where("id = ?", id))
}

func (r *applicationRepo) GetByUserAndJob(dbc dbctx.Context, userID, jobID uint) (*types.JobApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == 0 || jobID == 0 {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("user_id = ? AND job_id = ?", userID, jobID))
}

func (r *applicationRepo) ListByUser(dbc dbctx.Context, userID uint) ([]*types.JobApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.JobApplication
	if err := t.WithContext(dbc.Ctx).
		Preload("Job").
		Where("user_id = ?", userID).
		Order("applied_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) ListByJob(dbc dbctx.Context, jobID uint) ([]*types.JobApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.JobApplication
	if err := t.WithContext(dbc.Ctx).
		Preload("Applicant").
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) StatusCounts(dbc dbctx.Context, jobID uint) (map[types.ApplicationStatus]int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []struct {
		Status types.ApplicationStatus
		N      int64
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.JobApplication{}).
		Select("status, COUNT(*) AS n").
		Where("job_id = ?", jobID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[types.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *applicationRepo) filtered(dbc dbctx.Context, status types.ApplicationStatus) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.JobApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

func (r *applicationRepo) Page(dbc dbctx.Context, status types.ApplicationStatus, offset, limit int) ([]*types.JobApplication, int64, error) {
	var total int64
	if err := r.filtered(dbc, status).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.JobApplication
	if err := r.filtered(dbc, status).
		Preload("Job").
		Preload("Applicant").
		Order("applied_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *applicationRepo) Count(dbc dbctx.Context, status types.ApplicationStatus) (int64, error) {
	var n int64
	err := r.filtered(dbc, status).Count(&n).Error
	return n, err
}

func (r *applicationRepo) Recent(dbc dbctx.Context, limit int) ([]*types.JobApplication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.JobApplication
	if err := t.WithContext(dbc.Ctx).
		Preload("Job").
		Preload("Applicant").
		Order("applied_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) Update(dbc dbctx.Context, row *types.JobApplication) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Job", "Applicant").Save(row).Error
}
