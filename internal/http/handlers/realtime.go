package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/realtime"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	batches services.BatchService
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, batches services.BatchService) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		batches: batches,
	}
}

// GET /api/batches/stream
// Each connection holds its own store subscription, so the first event is
// the current collection and every later event is a newer one.
func (h *RealtimeHandler) StreamBatches(c *gin.Context) {
	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, realtime.ChannelBatches)
	defer h.hub.CloseClient(client)

	unsubscribe := h.batches.Subscribe(c.Request.Context(), func(list []*catalog.Batch) {
		h.hub.Send(client, realtime.SSEMessage{
			Channel: realtime.ChannelBatches,
			Event:   realtime.SSEEventBatchesSnapshot,
			Data:    list,
		})
	}, func(err error) {
		h.log.Warn("batch subscription error", "clientID", client.ID, "error", err)
		h.hub.Send(client, realtime.SSEMessage{
			Channel: realtime.ChannelBatches,
			Event:   realtime.SSEEventBatchesError,
			Data:    gin.H{"message": err.Error()},
		})
	})
	defer unsubscribe()

	h.log.Debug("batch stream open", "clientID", client.ID, "subscribers", h.hub.Subscribers(realtime.ChannelBatches))
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
