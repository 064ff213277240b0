package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

// Filter narrows counts and pages. Nil fields are ignored.
type Filter struct {
	IsAdmin     *bool
	IsPublisher *bool
}

type UserRepo interface {
	Create(dbc dbctx.Context, row *types.User) error
	GetByID(dbc dbctx.Context, id uint) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	ListByIDs(dbc dbctx.Context, ids []uint) ([]*types.User, error)

	Page(dbc dbctx.Context, f Filter, offset, limit int) ([]*types.User, int64, error)
	Count(dbc dbctx.Context, f Filter) (int64, error)
	Recent(dbc dbctx.Context, limit int) ([]*types.User, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	// CountOwned counts, per table, rows that reference the user as owner,
	// author, learner, payer or applicant. Tables with no rows are omitted.
	CountOwned(dbc dbctx.Context, id uint) (map[string]int64, error)
	// Delete removes the user together with their social accounts, progress
	// rows and blog likes. Run it inside a transaction.
	Delete(dbc dbctx.Context, id uint) error
}

// ownedRefs are the columns that pin a user row in place.
var ownedRefs = []struct{ table, column string }{
	{"lessons", "instructor_id"},
	{"podcasts", "publisher_id"},
	{"blog_posts", "author_id"},
	{"blog_comments", "user_id"},
	{"job_postings", "posted_by"},
	{"job_applications", "user_id"},
	{"lesson_enrollments", "user_id"},
	{"payments", "user_id"},
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, row *types.User) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row.Email = strings.ToLower(strings.TrimSpace(row.Email))
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *userRepo) first(q *gorm.DB) (*types.User, error) {
	var out types.User
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uint) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("id = ?", id))
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("email = ?", email))
}

func (r *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where("username = ?", username))
}

func (r *userRepo) ListByIDs(dbc dbctx.Context, ids []uint) ([]*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.IsAdmin != nil {
		q = q.Where("is_admin = ?", *f.IsAdmin)
	}
	if f.IsPublisher != nil {
		q = q.Where("is_publisher = ?", *f.IsPublisher)
	}
	return q
}

func (r *userRepo) Page(dbc dbctx.Context, f Filter, offset, limit int) ([]*types.User, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var total int64
	if err := applyFilter(t.WithContext(dbc.Ctx).Model(&types.User{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.User
	if err := applyFilter(t.WithContext(dbc.Ctx), f).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *userRepo) Count(dbc dbctx.Context, f Filter) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := applyFilter(t.WithContext(dbc.Ctx).Model(&types.User{}), f).Count(&n).Error
	return n, err
}

func (r *userRepo) Recent(dbc dbctx.Context, limit int) ([]*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.User
	if err := t.WithContext(dbc.Ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	t = t.WithContext(dbc.Ctx)
	if err := t.Exec(
		"UPDATE blog_posts SET like_count = like_count - 1 WHERE like_count > 0 AND id IN (SELECT post_id FROM blog_likes WHERE user_id = ?)", id,
	).Error; err != nil {
		return err
	}
	for _, personal := range []interface{}{&types.BlogLike{}, &types.LessonProgress{}, &types.SocialAccount{}} {
		if err := t.Where("user_id = ?", id).Delete(personal).Error; err != nil {
			return err
		}
	}
	return t.Where("id = ?", id).Delete(&types.User{}).Error
}

func (r *userRepo) CountOwned(dbc dbctx.Context, id uint) (map[string]int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[string]int64{}
	for _, ref := range ownedRefs {
		var n int64
		if err := t.WithContext(dbc.Ctx).Table(ref.table).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			out[ref.table] = n
		}
	}
	return out, nil
}
