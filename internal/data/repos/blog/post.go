package blog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type PostFilter struct {
	Category types.BlogCategory
	Tag      string
}

type PostRepo interface {
	Create(dbc dbctx.Context, row *types.BlogPost) error
	GetByID(dbc dbctx.Context, id uint) (*types.BlogPost, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.BlogPost, error)
	SlugExists(dbc dbctx.Context, slug string) (bool, error)

	PagePublished(dbc dbctx.Context, f PostFilter, offset, limit int) ([]*types.BlogPost, int64, error)
	Popular(dbc dbctx.Context, limit int) ([]*types.BlogPost, error)
	SearchPublished(dbc dbctx.Context, q string, limit int) ([]*types.BlogPost, error)
	ListByAuthor(dbc dbctx.Context, authorID uint) ([]*types.BlogPost, error)
	Page(dbc dbctx.Context, offset, limit int) ([]*types.BlogPost, int64, error)
	Count(dbc dbctx.Context) (int64, error)

	Update(dbc dbctx.Context, row *types.BlogPost) error
	IncrementViewCount(dbc dbctx.Context, id uint) error
	// AdjustCounter adds delta to like_count or comment_count, never going below zero.
	AdjustCounter(dbc dbctx.Context, id uint, column string, delta int) error
	// DeleteCascade removes the post with its comments and likes.
	DeleteCascade(dbc dbctx.Context, id uint) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "BlogPostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, row *types.BlogPost) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Author").Create(row).Error
}

func (r *postRepo) first(q *gorm.DB) (*types.BlogPost, error) {
	var out types.BlogPost
	err := q.Preload("Author").First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postRepo) GetByID(dbc dbctx.Context, id uint) (*types.BlogPost, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("id = ?", id))
}

func (r *postRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.BlogPost, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if strings.TrimSpace(slug) == "" {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("slug = ?", slug))
}

func (r *postRepo) SlugExists(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.BlogPost{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *postRepo) published(dbc dbctx.Context, f PostFilter) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.BlogPost{}).Where("status = ?", types.BlogPublished)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		q = q.Where("CAST(tags AS TEXT) LIKE ?", `%"`+tag+`"%`)
	}
	return q
}

func (r *postRepo) PagePublished(dbc dbctx.Context, f PostFilter, offset, limit int) ([]*types.BlogPost, int64, error) {
	var total int64
	if err := r.published(dbc, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.BlogPost
	if err := r.published(dbc, f).
		Preload("Author").
		Order("published_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *postRepo) Popular(dbc dbctx.Context, limit int) ([]*types.BlogPost, error) {
	var out []*types.BlogPost
	if err := r.published(dbc, PostFilter{}).
		Preload("Author").
		Order("view_count DESC").
		Order("like_count DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) SearchPublished(dbc dbctx.Context, q string, limit int) ([]*types.BlogPost, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	var out []*types.BlogPost
	if err := r.published(dbc, PostFilter{}).
		Preload("Author").
		Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", like, like, like).
		Order("published_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) ListByAuthor(dbc dbctx.Context, authorID uint) ([]*types.BlogPost, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.BlogPost
	if err := t.WithContext(dbc.Ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) Page(dbc dbctx.Context, offset, limit int) ([]*types.BlogPost, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var total int64
	if err := t.WithContext(dbc.Ctx).Model(&types.BlogPost{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.BlogPost
	if err := t.WithContext(dbc.Ctx).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *postRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.BlogPost{}).Count(&n).Error
	return n, err
}

func (r *postRepo) Update(dbc dbctx.Context, row *types.BlogPost) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Author").Save(row).Error
}

func (r *postRepo) IncrementViewCount(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepo) AdjustCounter(dbc dbctx.Context, id uint, column string, delta int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	switch column {
	case "like_count", "comment_count":
	default:
		return errors.New("blog post: unknown counter " + column)
	}
	expr := gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta)
	return t.WithContext(dbc.Ctx).
		Model(&types.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn(column, expr).Error
}

func (r *postRepo) DeleteCascade(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("post_id = ?", id).Delete(&types.BlogComment{}).Error; err != nil {
			return err
		}
		if err := txx.Where("post_id = ?", id).Delete(&types.BlogLike{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&types.BlogPost{}).Error
	})
}
