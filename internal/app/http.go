package app

import (
	"github.com/yungbote/batchcatalog-backend/internal/http"
	httpH "github.com/yungbote/batchcatalog-backend/internal/http/handlers"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/platform/playback"
	"github.com/yungbote/batchcatalog-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Batch    *httpH.BatchHandler
	Session  *httpH.SessionHandler
	Import   *httpH.ImportHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, cfg Config, store httpH.Pinger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	normalizer := playback.NewNormalizer(cfg.LivePrefix, cfg.RecordedPrefix)
	maxMemory := cfg.uploadMaxMemory()
	return Handlers{
		Health:   httpH.NewHealthHandler(store),
		Batch:    httpH.NewBatchHandler(log, services.Batches, normalizer),
		Session:  httpH.NewSessionHandler(log, services.Editor, maxMemory),
		Import:   httpH.NewImportHandler(log, services.Imports, maxMemory),
		Realtime: httpH.NewRealtimeHandler(log, sseHub, services.Batches),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		HealthHandler:   handlers.Health,
		BatchHandler:    handlers.Batch,
		SessionHandler:  handlers.Session,
		ImportHandler:   handlers.Import,
		RealtimeHandler: handlers.Realtime,
	})
}
