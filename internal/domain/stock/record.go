package stock

import (
	"time"

	"github.com/google/uuid"
)

// CanonicalStockRecord is the normalized per-SKU pricing/stock output of the
// transform pipeline, independent of the source spreadsheet format. All
// monetary and quantity values are whole units: the source data carries no
// meaningful sub-unit precision, so every value is rounded up on ingestion.
type CanonicalStockRecord struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	RegularPrice int64  `json:"regularPrice"`
	SalePrice    int64  `json:"salePrice"`
	OldSalePrice int64  `json:"oldSalePrice"`
	Stock        int64  `json:"stock"`
	PurchaseRate int64  `json:"purchaseRate"`
}

// StockRun owns the canonical records produced by one pipeline execution.
// Records are immutable after the run completes and are discarded after a
// sync finishes or the run is reset; they are never shared across runs.
type StockRun struct {
	ID        uuid.UUID              `json:"id"`
	Records   []CanonicalStockRecord `json:"records"`
	CreatedAt time.Time              `json:"createdAt"`
}

// NewStockRun creates a run owning the given records.
func NewStockRun(records []CanonicalStockRecord) *StockRun {
	return &StockRun{
		ID:        uuid.New(),
		Records:   records,
		CreatedAt: time.Now(),
	}
}
