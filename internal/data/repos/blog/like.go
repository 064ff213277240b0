package blog

import (
	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type LikeRepo interface {
	Exists(dbc dbctx.Context, userID, postID uint) (bool, error)
	Create(dbc dbctx.Context, row *types.BlogLike) error
	// Delete reports whether a like row was removed.
	Delete(dbc dbctx.Context, userID, postID uint) (bool, error)
}

type likeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLikeRepo(db *gorm.DB, baseLog *logger.Logger) LikeRepo {
	return &likeRepo{db: db, log: baseLog.With("repo", "BlogLikeRepo")}
}

func (r *likeRepo) Exists(dbc dbctx.Context, userID, postID uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == 0 {
		return false, nil
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.BlogLike{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&n).Error
	return n > 0, err
}

func (r *likeRepo) Create(dbc dbctx.Context, row *types.BlogLike) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *likeRepo) Delete(dbc dbctx.Context, userID, postID uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&types.BlogLike{})
	return res.RowsAffected > 0, res.Error
}
