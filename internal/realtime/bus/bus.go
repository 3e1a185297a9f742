package bus

import (
	"context"

	"github.com/yungbote/batchcatalog-backend/internal/realtime"
)

// Bus fans catalog change notices out across service instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
