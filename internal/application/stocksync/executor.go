package stocksync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/stock"
)

// maxReportedFailures bounds how many failure details are surfaced in the
// response; the full list always goes to the log and the audit rows.
const maxReportedFailures = 5

// Executor applies a confirmed update payload against the remote catalog
// and records the outcome in the audit sink. Item updates are independent:
// one failure never blocks or rolls back the others, matching the remote
// providers' own per-resource semantics.
type Executor struct {
	history stock.SyncHistoryRepository
	logger  *zap.Logger
}

// NewExecutor creates a sync executor
func NewExecutor(history stock.SyncHistoryRepository, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{history: history, logger: logger}
}

// Execute applies the preview's update payload and persists the final
// summary plus enriched audit rows. The audit write is always attempted,
// even when every update failed; a sink write failure is returned to the
// caller but never undoes remote updates that already applied.
func (e *Executor) Execute(
	ctx context.Context,
	client integration.CatalogPlatform,
	site *integration.Website,
	preview *stock.PreviewResult,
) (*stock.SyncSummary, []stock.SyncDetail, error) {
	details := make([]stock.SyncDetail, len(preview.AuditRows))
	copy(details, preview.AuditRows)

	failures := make(map[string]string)
	succeeded := 0

	if len(preview.UpdatePayload) > 0 {
		result, err := client.ApplyUpdates(ctx, preview.UpdatePayload)
		switch {
		case result != nil:
			// A result alongside an error is a partial application: earlier
			// items applied on the remote store, the rest are in Failures.
			// The accounting must keep those applied items as updated.
			succeeded = len(result.SucceededSKUs)
			for _, f := range result.Failures {
				failures[f.Identifier] = f.Message
			}
		case err != nil:
			// No result at all: none of the items applied. Each item is
			// still accounted for individually in the audit rows.
			for _, upd := range preview.UpdatePayload {
				failures[upd.SKU] = err.Error()
			}
		}
	}

	for i := range details {
		if details[i].Status != stock.SyncStatusUpdated {
			continue
		}
		msg, failed := failures[details[i].SKU]
		if !failed {
			continue
		}
		details[i].Status = stock.SyncStatusError
		details[i].ChangesJSON = embedFailure(details[i].ChangesJSON, msg)
	}

	summary := &stock.SyncSummary{
		ID:             uuid.New(),
		SiteUser:       site.SiteUser,
		TotalProcessed: len(details),
		TotalUpdated:   succeeded,
		TotalNotFound:  len(preview.NotFound),
		TotalUpToDate:  len(preview.UpToDate),
		TotalErrors:    len(failures),
		CreatedAt:      time.Now(),
	}

	e.logFailures(site, failures)

	if err := e.history.RecordSync(ctx, summary, details); err != nil {
		// Applied remote updates stand; there is no compensating transaction.
		e.logger.Error("failed to persist sync history",
			zap.String("site", site.Name),
			zap.Error(err),
		)
		return summary, details, fmt.Errorf("sync applied but audit write failed: %w", err)
	}

	e.logger.Info("sync completed",
		zap.String("site", site.Name),
		zap.Int("processed", summary.TotalProcessed),
		zap.Int("updated", summary.TotalUpdated),
		zap.Int("errors", summary.TotalErrors),
	)

	return summary, details, nil
}

// logFailures logs a bounded sample of failures and the total count.
func (e *Executor) logFailures(site *integration.Website, failures map[string]string) {
	if len(failures) == 0 {
		return
	}
	logged := 0
	for sku, msg := range failures {
		if logged >= maxReportedFailures {
			break
		}
		e.logger.Warn("item update failed",
			zap.String("site", site.Name),
			zap.String("sku", sku),
			zap.String("message", msg),
		)
		logged++
	}
	if len(failures) > maxReportedFailures {
		e.logger.Warn("additional item updates failed",
			zap.String("site", site.Name),
			zap.Int("total_failures", len(failures)),
		)
	}
}

// embedFailure wraps an audit row's change set with the failure message so
// the persisted row carries both what was attempted and why it failed.
func embedFailure(changesJSON, message string) string {
	payload := struct {
		Error   string          `json:"error"`
		Changes json.RawMessage `json:"changes"`
	}{
		Error:   message,
		Changes: json.RawMessage(changesJSON),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return changesJSON
	}
	return string(b)
}
