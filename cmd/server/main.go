package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/extract"
	"github.com/SkiltonTrading/cmrv2/internal/handler"
	"github.com/SkiltonTrading/cmrv2/internal/notify/noop"
	"github.com/SkiltonTrading/cmrv2/internal/notify/ses"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/progress"
	"github.com/SkiltonTrading/cmrv2/internal/rasterize"
	"github.com/SkiltonTrading/cmrv2/internal/router"
	"github.com/SkiltonTrading/cmrv2/internal/service"
	statefile "github.com/SkiltonTrading/cmrv2/internal/statestore/file"
	statepg "github.com/SkiltonTrading/cmrv2/internal/statestore/postgres"
	"github.com/SkiltonTrading/cmrv2/internal/storage/local"
	s3storage "github.com/SkiltonTrading/cmrv2/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// State store backend
	var states port.StateStore
	switch cfg.State.Backend {
	case "file":
		states = statefile.NewStore(cfg.State.Path)
	case "postgres":
		db, err := statepg.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		states = statepg.NewStore(db)
	default:
		return fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}

	// Document storage backend
	var docs port.DocumentStore
	switch cfg.Storage.Backend {
	case "local":
		docs = local.NewStore(cfg.Storage.LocalDir)
	case "s3":
		docs, err = s3storage.NewStore(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	// Run-completion notifier
	var notifier port.RunNotifier
	switch cfg.Notify.Provider {
	case "noop":
		notifier = noop.NewNotifier()
	case "ses":
		notifier, err = ses.NewNotifier(&cfg.Notify)
		if err != nil {
			return fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	default:
		return fmt.Errorf("unknown notify provider %q", cfg.Notify.Provider)
	}

	rasterizer := rasterize.NewRasterizer()
	extractor := extract.NewClient(&cfg.Extractor)

	// Restore the persisted slot before taking traffic so duplicates stay
	// closed across restarts.
	session := service.NewSession(states)
	if err := session.Restore(context.Background()); err != nil {
		return fmt.Errorf("failed to restore persisted rows: %w", err)
	}
	log.Printf("restored %d rows from %s state", session.Len(), cfg.State.Backend)

	tracker := progress.NewTracker()

	// Initialize services
	fileSvc := service.NewFileService(docs, rasterizer, tracker, &cfg.Files)
	worker := service.NewPageWorker(docs, rasterizer, extractor, session, tracker, service.PageWorkerConfig{
		Concurrency: cfg.Pipeline.Concurrency,
	})
	runSvc := service.NewRunService(fileSvc, worker, session, tracker, notifier)
	rowSvc := service.NewRowService(session, tracker)

	// Initialize handlers
	fileH := handler.NewFileHandler(fileSvc)
	runH := handler.NewRunHandler(runSvc)
	rowH := handler.NewRowHandler(rowSvc)
	exportH := handler.NewExportHandler(rowSvc)
	healthH := handler.NewHealthHandler(states)

	r := router.Setup(cfg.CORS.AllowedOrigins, fileH, runH, rowH, exportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
