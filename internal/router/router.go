package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SkiltonTrading/cmrv2/internal/extractsvc"
	"github.com/SkiltonTrading/cmrv2/internal/handler"
	"github.com/SkiltonTrading/cmrv2/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware for the
// pipeline server.
func Setup(
	corsOrigins []string,
	fileH *handler.FileHandler,
	runH *handler.RunHandler,
	rowH *handler.RowHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Document queue
	files := v1.Group("/files")
	files.POST("", fileH.Queue)
	files.GET("", fileH.List)
	files.DELETE("/:id", fileH.Delete)

	// Processing runs
	runs := v1.Group("/runs")
	runs.POST("", runH.Start)
	runs.GET("/status", runH.Status)

	// Result table
	rows := v1.Group("/rows")
	rows.GET("", rowH.List)
	rows.DELETE("", rowH.Clear)
	rows.GET("/stats", rowH.Stats)

	// Exports
	export := v1.Group("/export")
	export.GET("/csv", exportH.CSV)
	export.GET("/tsv", exportH.TSV)
	export.GET("/xlsx", exportH.XLSX)

	return r
}

// SetupExtractor configures the Gin engine for the extraction service. The
// wire contract is a single POST endpoint; any other method on the path
// answers 405 with an Allow header.
func SetupExtractor(h *extractsvc.Handler) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	r.HandleMethodNotAllowed = true
	r.NoMethod(h.MethodNotAllowed)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/extract", h.Extract)

	return r
}
