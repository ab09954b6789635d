package stock

import (
	"context"

	"github.com/google/uuid"
)

// SyncHistoryRepository is the audit sink for completed sync runs. A run is
// recorded as one summary plus one detail row per source record.
type SyncHistoryRepository interface {
	// RecordSync persists a summary and its detail rows in one transaction.
	RecordSync(ctx context.Context, summary *SyncSummary, details []SyncDetail) error
	// LatestSummary returns the most recent summary for a site user, or
	// shared.ErrNotFound when the user has never synced.
	LatestSummary(ctx context.Context, siteUser string) (*SyncSummary, error)
	// Details returns the audit rows belonging to a summary.
	Details(ctx context.Context, summaryID uuid.UUID) ([]SyncDetail, error)
}

// WorkflowStepRepository provides the workflow step configuration the
// transform pipeline reads once per run.
type WorkflowStepRepository interface {
	// Steps returns all configured steps in execution order.
	Steps(ctx context.Context) ([]WorkflowStep, error)
}
