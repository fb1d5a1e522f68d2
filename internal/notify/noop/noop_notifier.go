package noop

import (
	"context"
	"log"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type noopNotifier struct{}

// NewNotifier creates a no-op RunNotifier that logs run reports to stdout.
func NewNotifier() port.RunNotifier {
	return &noopNotifier{}
}

func (n *noopNotifier) NotifyRunCompleted(_ context.Context, report port.RunReport) error {
	log.Printf("[NOOP NOTIFY] run finished: %d/%d pages processed, %d rows added, %d pages failed",
		report.ProcessedPages, report.TotalPages, report.RowsAdded, report.FailedPages)
	return nil
}
