package bus

import (
	"context"

	"github.com/edulearn/edulearn-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.Event) error
	Close() error
}

// Nop drops every event. Used when REDIS_ADDR is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, realtime.Event) error { return nil }
func (Nop) Close() error                                  { return nil }
