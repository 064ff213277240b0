package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
)

// PaymentGateway settles a pending payment. An error aborts the enrollment
// that requested it.
type PaymentGateway interface {
	Complete(dbc dbctx.Context, p *types.Payment) error
}

// StubGateway marks every payment completed synchronously. No money moves.
type StubGateway struct {
	Now func() time.Time
}

func (g StubGateway) Complete(_ dbctx.Context, p *types.Payment) error {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	at := now()
	p.Status = types.PaymentCompleted
	p.TransactionID = NewTransactionID(at)
	if p.Metadata == nil {
		p.Metadata = datatypes.JSONMap{}
	}
	p.Metadata["gateway"] = "stub"
	p.Metadata["completed_at"] = at.UTC().Format(time.RFC3339)
	return nil
}

// NewTransactionID returns TXN-<unix millis>-<8 hex chars>.
func NewTransactionID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TXN-%d-%s", at.UnixMilli(), suffix)
}
