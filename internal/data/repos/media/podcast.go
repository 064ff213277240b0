package media

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type PodcastFilter struct {
	Type     types.PodcastType
	Category string
}

type PodcastRepo interface {
	Create(dbc dbctx.Context, row *types.Podcast) error
	GetByID(dbc dbctx.Context, id uint) (*types.Podcast, error)

	// PagePublished lists published podcasts, most recently published first.
	PagePublished(dbc dbctx.Context, f PodcastFilter, offset, limit int) ([]*types.Podcast, int64, error)
	SearchPublished(dbc dbctx.Context, q string, limit int) ([]*types.Podcast, error)
	ListByPublisher(dbc dbctx.Context, publisherID uint) ([]*types.Podcast, error)
	// ListDueScheduled returns scheduled podcasts whose scheduled_for is at or before now.
	ListDueScheduled(dbc dbctx.Context, now time.Time) ([]*types.Podcast, error)

	// ClaimPublish flips the podcast to published only while it still has status from.
	// It reports false when another caller got there first.
	ClaimPublish(dbc dbctx.Context, id uint, from types.PodcastStatus, at time.Time) (bool, error)
	Update(dbc dbctx.Context, row *types.Podcast) error
	Delete(dbc dbctx.Context, id uint) error
	IncrementListenCount(dbc dbctx.Context, id uint) error
	IncrementLikeCount(dbc dbctx.Context, id uint) error
}

type podcastRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPodcastRepo(db *gorm.DB, baseLog *logger.Logger) PodcastRepo {
	return &podcastRepo{db: db, log: baseLog.With("repo", "PodcastRepo")}
}

func (r *podcastRepo) Create(dbc dbctx.Context, row *types.Podcast) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Publisher").Create(row).Error
}

func (r *podcastRepo) GetByID(dbc dbctx.Context, id uint) (*types.Podcast, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out types.Podcast
	err := t.WithContext(dbc.Ctx).Preload("Publisher").Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *podcastRepo) published(dbc dbctx.Context, f PodcastFilter) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Podcast{}).Where("status = ?", types.PodcastPublished)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

func (r *podcastRepo) PagePublished(dbc dbctx.Context, f PodcastFilter, offset, limit int) ([]*types.Podcast, int64, error) {
	var total int64
	if err := r.published(dbc, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Podcast
	if err := r.published(dbc, f).
		Preload("Publisher").
		Order("published_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *podcastRepo) SearchPublished(dbc dbctx.Context, q string, limit int) ([]*types.Podcast, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	var out []*types.Podcast
	if err := r.published(dbc, PodcastFilter{}).
		Preload("Publisher").
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(CAST(tags AS TEXT)) LIKE ?", like, like, like).
		Order("published_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *podcastRepo) ListByPublisher(dbc dbctx.Context, publisherID uint) ([]*types.Podcast, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Podcast
	if err := t.WithContext(dbc.Ctx).
		Where("publisher_id = ?", publisherID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *podcastRepo) ListDueScheduled(dbc dbctx.Context, now time.Time) ([]*types.Podcast, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Podcast
	if err := t.WithContext(dbc.Ctx).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", types.PodcastScheduled, now).
		Order("scheduled_for ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *podcastRepo) ClaimPublish(dbc dbctx.Context, id uint, from types.PodcastStatus, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Podcast{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       types.PodcastPublished,
			"published_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *podcastRepo) Update(dbc dbctx.Context, row *types.Podcast) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Publisher").Save(row).Error
}

func (r *podcastRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Podcast{}).Error
}

func (r *podcastRepo) IncrementListenCount(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Podcast{}).
		Where("id = ?", id).
		UpdateColumn("listen_count", gorm.Expr("listen_count + 1")).Error
}

func (r *podcastRepo) IncrementLikeCount(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Podcast{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}
