package learning

import (
	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type PaymentRepo interface {
	Create(dbc dbctx.Context, row *types.Payment) error
	Update(dbc dbctx.Context, row *types.Payment) error
	ListByUser(dbc dbctx.Context, userID uint) ([]*types.Payment, error)
	ListByUserAndLesson(dbc dbctx.Context, userID, lessonID uint) ([]*types.Payment, error)
}

type paymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentRepo(db *gorm.DB, baseLog *logger.Logger) PaymentRepo {
	return &paymentRepo{db: db, log: baseLog.With("repo", "PaymentRepo")}
}

func (r *paymentRepo) Create(dbc dbctx.Context, row *types.Payment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *paymentRepo) Update(dbc dbctx.Context, row *types.Payment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *paymentRepo) ListByUser(dbc dbctx.Context, userID uint) ([]*types.Payment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Payment
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepo) ListByUserAndLesson(dbc dbctx.Context, userID, lessonID uint) ([]*types.Payment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Payment
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
