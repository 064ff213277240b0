package blog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type CommentRepo interface {
	Create(dbc dbctx.Context, row *types.BlogComment) error
	// GetByID returns the comment with its post loaded.
	GetByID(dbc dbctx.Context, id uint) (*types.BlogComment, error)
	ListByPost(dbc dbctx.Context, postID uint) ([]*types.BlogComment, error)
	Update(dbc dbctx.Context, row *types.BlogComment) error
	// DeleteWithReplies removes the comment and its direct replies and reports how many rows went.
	DeleteWithReplies(dbc dbctx.Context, id uint) (int64, error)
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "BlogCommentRepo")}
}

func (r *commentRepo) Create(dbc dbctx.Context, row *types.BlogComment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Post").Create(row).Error
}

func (r *commentRepo) GetByID(dbc dbctx.Context, id uint) (*types.BlogComment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out types.BlogComment
	err := t.WithContext(dbc.Ctx).Preload("Post").Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *commentRepo) ListByPost(dbc dbctx.Context, postID uint) ([]*types.BlogComment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.BlogComment
	if err := t.WithContext(dbc.Ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *commentRepo) Update(dbc dbctx.Context, row *types.BlogComment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Post").Save(row).Error
}

func (r *commentRepo) DeleteWithReplies(dbc dbctx.Context, id uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Where("id = ? OR parent_id = ?", id, id).Delete(&types.BlogComment{})
	return res.RowsAffected, res.Error
}
