package vision

import (
	"fmt"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// ProviderFactory is a function that creates a NoteParser from a vision config.
type ProviderFactory func(cfg *config.VisionConfig) (port.NoteParser, error)

// registry of vision provider factories, populated explicitly via
// RegisterProvider (the provider packages import this one, so they cannot
// register themselves).
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a vision provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a NoteParser from a vision config using the registered factory.
func NewParser(cfg *config.VisionConfig) (port.NoteParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
