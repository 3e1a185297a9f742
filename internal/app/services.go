package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/ingestion/folder"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/realtime/bus"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

type Services struct {
	Bus     bus.Bus
	Batches services.BatchService
	Editor  services.EditorService
	Imports services.ImportService
}

func wireBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if cfg.RedisAddr == "" {
		log.Info("Using in-process change bus")
		return bus.NewLocalBus(), nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}
	return b, nil
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")
	changeBus, err := wireBus(log, cfg)
	if err != nil {
		return Services{}, err
	}
	aggregator := folder.NewAggregator(log, folder.WithConcurrency(cfg.IngestConcurrency))
	batches := services.NewBatchService(db, log, reposet.Batch, changeBus)
	return Services{
		Bus:     changeBus,
		Batches: batches,
		Editor:  services.NewEditorService(log, batches, aggregator, services.WithSessionIdleTTL(cfg.sessionIdleTTL())),
		Imports: services.NewImportService(log, batches, aggregator),
	}, nil
}
