package port

import (
	"context"
	"time"
)

// RunReport summarizes a finished processing run for notification.
type RunReport struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	TotalPages     int
	ProcessedPages int
	RowsAdded      int
	FailedPages    int
	Notices        []string
}

// RunNotifier defines the contract for notifying operators about finished runs.
type RunNotifier interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
}
