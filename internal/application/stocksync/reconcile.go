package stocksync

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/stock"
)

// DefaultBatchSize bounds how many canonical records are reconciled per
// remote fetch. It matches the providers' per-request limits and keeps the
// per-batch SKU lookup small.
const DefaultBatchSize = 100

// Diff field names as they appear in previews and audit rows
const (
	FieldRegularPrice  = "regular_price"
	FieldSalePrice     = "sale_price"
	FieldStockQuantity = "stock_quantity"
)

// Reconciler compares canonical records against live remote state and
// produces the preview a human confirms before any write happens. It is
// read-only: a fetch failure aborts the whole preview, because a partial
// preview is unsafe to show.
type Reconciler struct {
	batchSize int
	logger    *zap.Logger
}

// NewReconciler creates a reconciler. batchSize <= 0 selects the default.
func NewReconciler(batchSize int, logger *zap.Logger) *Reconciler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{batchSize: batchSize, logger: logger}
}

// GeneratePreview partitions the records into batches, fetches the matching
// remote products once per batch and classifies every record as updated,
// up-to-date or not-found. Every record produces exactly one audit row.
// Batches run sequentially to respect provider rate limits and keep
// progress meaningfully ordered.
func (r *Reconciler) GeneratePreview(
	ctx context.Context,
	client integration.CatalogPlatform,
	site *integration.Website,
	records []stock.CanonicalStockRecord,
) (*stock.PreviewResult, error) {
	result := &stock.PreviewResult{
		ID:        uuid.New(),
		SiteID:    site.ID,
		ToUpdate:  make([]stock.PreviewItem, 0),
		UpToDate:  make([]stock.MatchedItem, 0),
		NotFound:  make([]stock.MissingItem, 0),
		AuditRows: make([]stock.SyncDetail, 0, len(records)),
		CreatedAt: time.Now(),
	}

	for start := 0; start < len(records); start += r.batchSize {
		end := start + r.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		skus := make([]string, len(batch))
		for i, rec := range batch {
			skus[i] = rec.SKU
		}

		remote, err := client.FetchProductsBySKU(ctx, skus)
		if err != nil {
			r.logger.Error("batch fetch failed, aborting preview",
				zap.String("site", site.Name),
				zap.Int("batch_start", start),
				zap.Error(err),
			)
			return nil, err
		}

		bySKU := make(map[string]integration.RemoteProduct, len(remote))
		for _, p := range remote {
			bySKU[p.SKU] = p
		}

		for _, rec := range batch {
			p, ok := bySKU[rec.SKU]
			if !ok {
				result.NotFound = append(result.NotFound, stock.MissingItem{SKU: rec.SKU})
				result.AuditRows = append(result.AuditRows, stock.SyncDetail{
					SKU:         rec.SKU,
					ProductName: rec.Name,
					Status:      stock.SyncStatusNotFound,
					ChangesJSON: "{}",
				})
				continue
			}

			changes := diffRecord(rec, p)
			if len(changes) == 0 {
				result.UpToDate = append(result.UpToDate, stock.MatchedItem{SKU: rec.SKU, Name: p.Name})
				result.AuditRows = append(result.AuditRows, stock.SyncDetail{
					SKU:         rec.SKU,
					ProductName: p.Name,
					Status:      stock.SyncStatusUpToDate,
					ChangesJSON: "{}",
				})
				continue
			}

			result.ToUpdate = append(result.ToUpdate, stock.PreviewItem{
				SKU:     rec.SKU,
				Name:    p.Name,
				Changes: changes,
			})
			result.UpdatePayload = append(result.UpdatePayload, stock.UpdateInstruction{
				SKU:             rec.SKU,
				RemoteID:        p.RemoteID,
				VariantID:       p.VariantID,
				InventoryItemID: p.InventoryItemID,
				RegularPrice:    strconv.FormatInt(rec.RegularPrice, 10),
				SalePrice:       strconv.FormatInt(rec.SalePrice, 10),
				StockQuantity:   rec.Stock,
			})
			result.AuditRows = append(result.AuditRows, stock.SyncDetail{
				SKU:         rec.SKU,
				ProductName: p.Name,
				Status:      stock.SyncStatusUpdated,
				ChangesJSON: changes.JSON(),
			})
		}
	}

	r.logger.Info("preview generated",
		zap.String("site", site.Name),
		zap.Int("processed", len(records)),
		zap.Int("to_update", len(result.ToUpdate)),
		zap.Int("up_to_date", len(result.UpToDate)),
		zap.Int("not_found", len(result.NotFound)),
	)

	return result, nil
}

// diffRecord compares the three synced fields. Remote prices arrive as
// decimal strings whose formatting varies per store setting, so they are
// compared numerically: "120" and "120.00" are the same price, not a diff.
func diffRecord(rec stock.CanonicalStockRecord, p integration.RemoteProduct) stock.ChangeSet {
	changes := make(stock.ChangeSet)

	if !remoteDecimal(p.RegularPrice).Equal(decimal.NewFromInt(rec.RegularPrice)) {
		changes[FieldRegularPrice] = stock.FieldChange{
			Field: FieldRegularPrice,
			Old:   p.RegularPrice,
			New:   rec.RegularPrice,
		}
	}

	if !remoteDecimal(p.SalePrice).Equal(decimal.NewFromInt(rec.SalePrice)) {
		changes[FieldSalePrice] = stock.FieldChange{
			Field: FieldSalePrice,
			Old:   p.SalePrice,
			New:   rec.SalePrice,
		}
	}

	var remoteStock int64
	if p.StockQuantity != nil {
		remoteStock = *p.StockQuantity
	}
	if remoteStock != rec.Stock {
		var old any
		if p.StockQuantity != nil {
			old = *p.StockQuantity
		}
		changes[FieldStockQuantity] = stock.FieldChange{
			Field: FieldStockQuantity,
			Old:   old,
			New:   rec.Stock,
		}
	}

	return changes
}

// remoteDecimal parses a provider price string. An empty or malformed
// value counts as zero, matching how the providers represent "no price".
func remoteDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
