package careers

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type JobFilter struct {
	JobType  types.JobType
	Location string
	IsRemote *bool
}

type JobRepo interface {
	Create(dbc dbctx.Context, row *types.JobPosting) error
	GetByID(dbc dbctx.Context, id uint) (*types.JobPosting, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.JobPosting, error)
	SlugExists(dbc dbctx.Context, slug string) (bool, error)

	PageOpen(dbc dbctx.Context, f JobFilter, offset, limit int) ([]*types.JobPosting, int64, error)
	SearchOpen(dbc dbctx.Context, q string, limit int) ([]*types.JobPosting, error)
	ListByPoster(dbc dbctx.Context, posterID uint) ([]*types.JobPosting, error)
	Recent(dbc dbctx.Context, limit int) ([]*types.JobPosting, error)
	// Count counts postings, restricted to status when it is non-empty.
	Count(dbc dbctx.Context, status types.JobStatus) (int64, error)

	Update(dbc dbctx.Context, row *types.JobPosting) error
	IncrementViewCount(dbc dbctx.Context, id uint) error
	IncrementApplicationCount(dbc dbctx.Context, id uint) error
	// DeleteCascade removes the posting together with its applications.
	DeleteCascade(dbc dbctx.Context, id uint) error
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: baseLog.With("repo", "JobRepo")}
}

func (r *jobRepo) Create(dbc dbctx.Context, row *types.JobPosting) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Poster").Create(row).Error
}

func (r *jobRepo) first(q *gorm.DB) (*types.JobPosting, error) {
	var out types.JobPosting
	err := q.Preload("Poster").First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *jobRepo) GetByID(dbc dbctx.Context, id uint) (*types.JobPosting, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("id = ?", id))
}

func (r *jobRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.JobPosting, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if strings.TrimSpace(slug) == "" {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("slug = ?", slug))
}

func (r *jobRepo) SlugExists(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.JobPosting{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *jobRepo) open(dbc dbctx.Context, f JobFilter) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.JobPosting{}).Where("status = ?", types.JobOpen)
	if f.JobType != "" {
		q = q.Where("job_type = ?", f.JobType)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}
	if f.IsRemote != nil {
		q = q.Where("is_remote = ?", *f.IsRemote)
	}
	return q
}

func (r *jobRepo) PageOpen(dbc dbctx.Context, f JobFilter, offset, limit int) ([]*types.JobPosting, int64, error) {
	var total int64
	if err := r.open(dbc, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.JobPosting
	if err := r.open(dbc, f).
		Preload("Poster").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *jobRepo) SearchOpen(dbc dbctx.Context, q string, limit int) ([]*types.JobPosting, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	var out []*types.JobPosting
	if err := r.open(dbc, JobFilter{}).
		Preload("Poster").
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(company) LIKE ?", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) ListByPoster(dbc dbctx.Context, posterID uint) ([]*types.JobPosting, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.JobPosting
	if err := t.WithContext(dbc.Ctx).
		Where("posted_by = ?", posterID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) Recent(dbc dbctx.Context, limit int) ([]*types.JobPosting, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.JobPosting
	if err := t.WithContext(dbc.Ctx).
		Preload("Poster").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) Count(dbc dbctx.Context, status types.JobStatus) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.JobPosting{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *jobRepo) Update(dbc dbctx.Context, row *types.JobPosting) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Poster").Save(row).Error
}

func (r *jobRepo) IncrementViewCount(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.JobPosting{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *jobRepo) IncrementApplicationCount(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.JobPosting{}).
		Where("id = ?", id).
		UpdateColumn("application_count", gorm.Expr("application_count + 1")).Error
}

func (r *jobRepo) DeleteCascade(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("job_id = ?", id).Delete(&types.JobApplication{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&types.JobPosting{}).Error
	})
}
