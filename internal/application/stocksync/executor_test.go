package stocksync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/stock"
)

func threeItemPreview(site *integration.Website) *stock.PreviewResult {
	return &stock.PreviewResult{
		ID:     uuid.New(),
		SiteID: site.ID,
		UpdatePayload: []stock.UpdateInstruction{
			{SKU: "A1", RemoteID: "1", RegularPrice: "100", SalePrice: "90", StockQuantity: 5},
			{SKU: "B2", RemoteID: "2", RegularPrice: "200", SalePrice: "180", StockQuantity: 2},
			{SKU: "C3", RemoteID: "3", RegularPrice: "300", SalePrice: "270", StockQuantity: 9},
		},
		AuditRows: []stock.SyncDetail{
			{SKU: "A1", ProductName: "Widget", Status: stock.SyncStatusUpdated, ChangesJSON: `{"sale_price":{"field":"sale_price","old":"95","new":90}}`},
			{SKU: "B2", ProductName: "Gadget", Status: stock.SyncStatusUpdated, ChangesJSON: `{"stock_quantity":{"field":"stock_quantity","old":4,"new":2}}`},
			{SKU: "C3", ProductName: "Gizmo", Status: stock.SyncStatusUpdated, ChangesJSON: `{"regular_price":{"field":"regular_price","old":"280","new":300}}`},
		},
	}
}

func TestExecute_PartialFailureAccounting(t *testing.T) {
	client := new(MockCatalogPlatform)
	history := new(MockSyncHistoryRepository)
	site := testSite()
	preview := threeItemPreview(site)

	client.On("ApplyUpdates", mock.Anything, preview.UpdatePayload).Return(&integration.UpdateResult{
		SucceededSKUs: []string{"A1", "C3"},
		Failures: []integration.UpdateFailure{
			{Identifier: "B2", Message: "remote API error: status 500"},
		},
	}, nil)
	history.On("RecordSync", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewExecutor(history, zap.NewNop())
	summary, details, err := e.Execute(context.Background(), client, site, preview)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 2, summary.TotalUpdated)
	assert.Equal(t, 1, summary.TotalErrors)
	assert.Equal(t, 0, summary.TotalNotFound)
	assert.Equal(t, 0, summary.TotalUpToDate)
	assert.Equal(t, site.SiteUser, summary.SiteUser)

	require.Len(t, details, 3)
	assert.Equal(t, stock.SyncStatusUpdated, details[0].Status)
	assert.Equal(t, stock.SyncStatusError, details[1].Status)
	assert.Equal(t, stock.SyncStatusUpdated, details[2].Status)

	// The failed row keeps its attempted changes alongside the error.
	var wrapped struct {
		Error   string          `json:"error"`
		Changes json.RawMessage `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(details[1].ChangesJSON), &wrapped))
	assert.Equal(t, "remote API error: status 500", wrapped.Error)
	assert.Contains(t, string(wrapped.Changes), "stock_quantity")

	client.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestExecute_CountConservation(t *testing.T) {
	client := new(MockCatalogPlatform)
	history := new(MockSyncHistoryRepository)
	site := testSite()

	preview := threeItemPreview(site)
	preview.UpToDate = []stock.MatchedItem{{SKU: "D4", Name: "Doodad"}}
	preview.NotFound = []stock.MissingItem{{SKU: "E5"}, {SKU: "F6"}}
	preview.AuditRows = append(preview.AuditRows,
		stock.SyncDetail{SKU: "D4", ProductName: "Doodad", Status: stock.SyncStatusUpToDate, ChangesJSON: "{}"},
		stock.SyncDetail{SKU: "E5", Status: stock.SyncStatusNotFound, ChangesJSON: "{}"},
		stock.SyncDetail{SKU: "F6", Status: stock.SyncStatusNotFound, ChangesJSON: "{}"},
	)

	client.On("ApplyUpdates", mock.Anything, mock.Anything).Return(&integration.UpdateResult{
		SucceededSKUs: []string{"A1", "B2", "C3"},
	}, nil)
	history.On("RecordSync", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewExecutor(history, zap.NewNop())
	summary, details, err := e.Execute(context.Background(), client, site, preview)
	require.NoError(t, err)

	assert.Len(t, details, summary.TotalProcessed)
	assert.Equal(t, summary.TotalProcessed,
		summary.TotalUpdated+summary.TotalErrors+summary.TotalUpToDate+summary.TotalNotFound)
}

func TestExecute_TransportErrorFailsWholePayload(t *testing.T) {
	client := new(MockCatalogPlatform)
	history := new(MockSyncHistoryRepository)
	site := testSite()
	preview := threeItemPreview(site)

	client.On("ApplyUpdates", mock.Anything, mock.Anything).
		Return(nil, integration.ErrRateLimitExceeded)
	history.On("RecordSync", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewExecutor(history, zap.NewNop())
	summary, details, err := e.Execute(context.Background(), client, site, preview)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalUpdated)
	assert.Equal(t, 3, summary.TotalErrors)
	for _, d := range details {
		assert.Equal(t, stock.SyncStatusError, d.Status)
	}
	// The outcome is still recorded even though nothing applied.
	history.AssertCalled(t, "RecordSync", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_PartialResultWithErrorKeepsAppliedItems(t *testing.T) {
	client := new(MockCatalogPlatform)
	history := new(MockSyncHistoryRepository)
	site := testSite()
	preview := threeItemPreview(site)

	// The adapter applied the first item on the remote store before the
	// transport gave out. The rest come back as failures alongside the
	// error, and the accounting must not relabel the applied write.
	transportErr := errors.New("sync: platform request failed with HTTP 500")
	client.On("ApplyUpdates", mock.Anything, preview.UpdatePayload).Return(&integration.UpdateResult{
		SucceededSKUs: []string{"A1"},
		Failures: []integration.UpdateFailure{
			{Identifier: "B2", Message: transportErr.Error()},
			{Identifier: "C3", Message: transportErr.Error()},
		},
	}, transportErr)
	history.On("RecordSync", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewExecutor(history, zap.NewNop())
	summary, details, err := e.Execute(context.Background(), client, site, preview)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalUpdated)
	assert.Equal(t, 2, summary.TotalErrors)
	assert.Equal(t, summary.TotalProcessed,
		summary.TotalUpdated+summary.TotalErrors+summary.TotalUpToDate+summary.TotalNotFound)

	require.Len(t, details, 3)
	assert.Equal(t, stock.SyncStatusUpdated, details[0].Status)
	assert.Equal(t, stock.SyncStatusError, details[1].Status)
	assert.Equal(t, stock.SyncStatusError, details[2].Status)
}

func TestExecute_EmptyPayloadSkipsRemoteCall(t *testing.T) {
	client := new(MockCatalogPlatform)
	history := new(MockSyncHistoryRepository)
	site := testSite()

	preview := &stock.PreviewResult{
		ID:       uuid.New(),
		SiteID:   site.ID,
		UpToDate: []stock.MatchedItem{{SKU: "A1", Name: "Widget"}},
		AuditRows: []stock.SyncDetail{
			{SKU: "A1", ProductName: "Widget", Status: stock.SyncStatusUpToDate, ChangesJSON: "{}"},
		},
	}
	history.On("RecordSync", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewExecutor(history, zap.NewNop())
	summary, _, err := e.Execute(context.Background(), client, site, preview)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalUpToDate)
	assert.Equal(t, 0, summary.TotalUpdated)
	client.AssertNotCalled(t, "ApplyUpdates", mock.Anything, mock.Anything)
}

func TestExecute_AuditSinkFailureStillReturnsSummary(t *testing.T) {
	client := new(MockCatalogPlatform)
	history := new(MockSyncHistoryRepository)
	site := testSite()
	preview := threeItemPreview(site)

	client.On("ApplyUpdates", mock.Anything, mock.Anything).Return(&integration.UpdateResult{
		SucceededSKUs: []string{"A1", "B2", "C3"},
	}, nil)
	sinkErr := errors.New("connection refused")
	history.On("RecordSync", mock.Anything, mock.Anything, mock.Anything).Return(sinkErr)

	e := NewExecutor(history, zap.NewNop())
	summary, details, err := e.Execute(context.Background(), client, site, preview)

	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.TotalUpdated)
	assert.Len(t, details, 3)
}
