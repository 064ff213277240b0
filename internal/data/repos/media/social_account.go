package media

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type SocialAccountRepo interface {
	Create(dbc dbctx.Context, row *types.SocialAccount) error
	// GetActive returns the newest active account for the platform.
	GetActive(dbc dbctx.Context, userID uint, platform types.SocialPlatform) (*types.SocialAccount, error)
	ListActive(dbc dbctx.Context, userID uint) ([]*types.SocialAccount, error)
	// Deactivate marks every active account of the user on that platform inactive.
	Deactivate(dbc dbctx.Context, userID uint, platform types.SocialPlatform) (int64, error)
}

type socialAccountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSocialAccountRepo(db *gorm.DB, baseLog *logger.Logger) SocialAccountRepo {
	return &socialAccountRepo{db: db, log: baseLog.With("repo", "SocialAccountRepo")}
}

func (r *socialAccountRepo) Create(dbc dbctx.Context, row *types.SocialAccount) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *socialAccountRepo) GetActive(dbc dbctx.Context, userID uint, platform types.SocialPlatform) (*types.SocialAccount, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.SocialAccount
	err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND platform = ? AND is_active = ?", userID, platform, true).
		Order("connected_at DESC").
		Order("id DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *socialAccountRepo) ListActive(dbc dbctx.Context, userID uint) ([]*types.SocialAccount, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SocialAccount
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("connected_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *socialAccountRepo) Deactivate(dbc dbctx.Context, userID uint, platform types.SocialPlatform) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.SocialAccount{}).
		Where("user_id = ? AND platform = ? AND is_active = ?", userID, platform, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
