package learning

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentStripe       PaymentMethod = "stripe"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type Payment struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        uint              `gorm:"not null;index;column:user_id" json:"user_id"`
	LessonID      uint              `gorm:"not null;index;column:lesson_id" json:"lesson_id"`
	Amount        float64           `gorm:"type:numeric(10,2);not null;column:amount" json:"amount"`
	Status        PaymentStatus     `gorm:"type:varchar(32);not null;column:status" json:"status"`
	Method        PaymentMethod     `gorm:"type:varchar(32);not null;column:method" json:"method"`
	TransactionID string            `gorm:"index;column:transaction_id" json:"transaction_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
