package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/extractsvc"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/router"
	"github.com/SkiltonTrading/cmrv2/internal/vision"
	"github.com/SkiltonTrading/cmrv2/internal/vision/claude"
	"github.com/SkiltonTrading/cmrv2/internal/vision/gemini"
	"github.com/SkiltonTrading/cmrv2/internal/vision/openai"
)

// registerProviders wires the vision provider factories. The provider
// packages import vision for the shared prompt, so they cannot register
// themselves without a cycle.
func registerProviders() {
	vision.RegisterProvider("claude", func(cfg *config.VisionConfig) (port.NoteParser, error) {
		return claude.NewParser(cfg), nil
	})
	vision.RegisterProvider("openai", func(cfg *config.VisionConfig) (port.NoteParser, error) {
		return openai.NewParser(cfg), nil
	})
	vision.RegisterProvider("gemini", func(cfg *config.VisionConfig) (port.NoteParser, error) {
		return gemini.NewParser(cfg), nil
	})
}

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

	registerProviders()

	parser, err := vision.NewParser(&cfg.Vision)
	if err != nil {
		return fmt.Errorf("failed to create vision parser: %w", err)
	}

	h, err := extractsvc.NewHandler(parser)
	if err != nil {
		return fmt.Errorf("failed to create extract handler: %w", err)
	}

	r := router.SetupExtractor(h)

	srv := &http.Server{
		Addr:         cfg.Extractor.ListenPort,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Extraction service starting on %s (provider %s)", cfg.Extractor.ListenPort, cfg.Vision.Provider)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
