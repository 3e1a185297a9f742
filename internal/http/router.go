package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/batchcatalog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/batchcatalog-backend/internal/http/middleware"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	BatchHandler    *httpH.BatchHandler
	SessionHandler  *httpH.SessionHandler
	ImportHandler   *httpH.ImportHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/batches/stream", cfg.RealtimeHandler.StreamBatches)
		}

		// Batches
		if cfg.BatchHandler != nil {
			api.GET("/batches", cfg.BatchHandler.ListBatches)
			api.POST("/batches", cfg.BatchHandler.CreateBatch)
			api.GET("/batches/:id", cfg.BatchHandler.GetBatch)
			api.PATCH("/batches/:id", cfg.BatchHandler.UpdateBatch)
			api.DELETE("/batches/:id", cfg.BatchHandler.DeleteBatch)
			api.GET("/batches/:id/export", cfg.BatchHandler.ExportBatch)
		}

		// Folder import
		if cfg.ImportHandler != nil {
			api.POST("/imports/folder", cfg.ImportHandler.ImportFolder)
		}

		// Editing sessions
		if cfg.SessionHandler != nil {
			s := api.Group("/sessions")
			s.POST("", cfg.SessionHandler.OpenSession)
			s.GET("/:id", cfg.SessionHandler.GetSession)
			s.DELETE("/:id", cfg.SessionHandler.CloseSession)
			s.GET("/:id/field", cfg.SessionHandler.GetField)
			s.PATCH("/:id/field", cfg.SessionHandler.SetField)
			s.POST("/:id/subjects", cfg.SessionHandler.AddSubject)
			s.DELETE("/:id/subjects/:subject", cfg.SessionHandler.DeleteSubject)
			s.POST("/:id/subjects/:subject/import", cfg.SessionHandler.ImportSections)
			s.POST("/:id/subjects/:subject/sections", cfg.SessionHandler.AddSection)
			s.DELETE("/:id/subjects/:subject/sections/:section", cfg.SessionHandler.DeleteSection)
			s.POST("/:id/subjects/:subject/sections/:section/contents", cfg.SessionHandler.AddContent)
			s.DELETE("/:id/subjects/:subject/sections/:section/contents/:content", cfg.SessionHandler.DeleteContent)
			s.POST("/:id/selection", cfg.SessionHandler.ToggleSelection)
			s.POST("/:id/bulk-thumbnail", cfg.SessionHandler.BulkApplyThumbnail)
			s.POST("/:id/save", cfg.SessionHandler.Save)
			s.POST("/:id/discard", cfg.SessionHandler.Discard)
		}
	}

	return r
}
