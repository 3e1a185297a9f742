package realtime

type SSEEvent string

const (
	// SSEEventBatchesSnapshot carries the full batch collection, newest first.
	SSEEventBatchesSnapshot SSEEvent = "BatchesSnapshot"
	// SSEEventBatchesChanged is the change notice fanned out between instances.
	SSEEventBatchesChanged SSEEvent = "BatchesChanged"
	SSEEventBatchesError   SSEEvent = "BatchesError"
)

// ChannelBatches is the single channel every catalog listener joins.
const ChannelBatches = "batches"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// ChangeNotice is the payload of SSEEventBatchesChanged.
type ChangeNotice struct {
	Op      string `json:"op"`
	BatchID string `json:"batch_id,omitempty"`
}
