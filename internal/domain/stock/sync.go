package stock

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the per-record outcome of one reconciliation/sync run.
type SyncStatus string

const (
	// SyncStatusUpdated indicates the remote record differed and an update
	// was (or will be) issued.
	SyncStatusUpdated SyncStatus = "updated"
	// SyncStatusUpToDate indicates the remote record already matched.
	SyncStatusUpToDate SyncStatus = "up_to_date"
	// SyncStatusNotFound indicates no remote record matched the SKU.
	SyncStatusNotFound SyncStatus = "not_found"
	// SyncStatusError indicates the update for this record failed.
	SyncStatusError SyncStatus = "error"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusUpdated, SyncStatusUpToDate, SyncStatusNotFound, SyncStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// FieldChange is one row of a diff between a canonical record and its
// remote counterpart.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// ChangeSet maps field name to its change. A record requires an update
// iff its ChangeSet is non-empty.
type ChangeSet map[string]FieldChange

// JSON serializes the change set for audit storage. An empty set
// serializes to "{}" so audit rows are always valid JSON.
func (cs ChangeSet) JSON() string {
	if len(cs) == 0 {
		return "{}"
	}
	b, err := json.Marshal(cs)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// PreviewItem is one pending change shown to a human before committing.
type PreviewItem struct {
	SKU     string    `json:"sku"`
	Name    string    `json:"name"`
	Changes ChangeSet `json:"changes"`
}

// MatchedItem identifies a record whose remote counterpart already matches.
type MatchedItem struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// MissingItem identifies a record with no remote counterpart.
type MissingItem struct {
	SKU string `json:"sku"`
}

// UpdateInstruction carries the remote identifiers and the new values for
// one product update. It deliberately carries no old values: remote state
// may have moved since the preview, and the write is last-writer-wins on
// the fields it names.
type UpdateInstruction struct {
	SKU             string `json:"sku"`
	RemoteID        string `json:"remoteId"`
	VariantID       string `json:"variantId,omitempty"`
	InventoryItemID string `json:"inventoryItemId,omitempty"`
	RegularPrice    string `json:"regularPrice"`
	SalePrice       string `json:"salePrice"`
	StockQuantity   int64  `json:"stockQuantity"`
}

// SyncDetail is one persisted audit row per source record. Every canonical
// record in a run produces exactly one detail row regardless of outcome.
type SyncDetail struct {
	SKU         string     `json:"sku"`
	ProductName string     `json:"productName"`
	Status      SyncStatus `json:"status"`
	ChangesJSON string     `json:"changesJson"`
}

// SyncSummary aggregates one sync run. The counts always satisfy
// TotalUpdated + TotalErrors + TotalUpToDate + TotalNotFound == TotalProcessed.
type SyncSummary struct {
	ID             uuid.UUID `json:"id"`
	SiteUser       string    `json:"siteUser"`
	TotalProcessed int       `json:"totalProcessed"`
	TotalUpdated   int       `json:"totalUpdated"`
	TotalNotFound  int       `json:"totalNotFound"`
	TotalUpToDate  int       `json:"totalUpToDate"`
	TotalErrors    int       `json:"totalErrors"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PreviewResult is the read-only output of one reconciliation pass,
// surfaced to a human before any write is committed.
type PreviewResult struct {
	ID            uuid.UUID           `json:"id"`
	SiteID        uuid.UUID           `json:"siteId"`
	ToUpdate      []PreviewItem       `json:"toUpdate"`
	UpToDate      []MatchedItem       `json:"upToDate"`
	NotFound      []MissingItem       `json:"notFound"`
	UpdatePayload []UpdateInstruction `json:"-"`
	AuditRows     []SyncDetail        `json:"-"`
	CreatedAt     time.Time           `json:"createdAt"`
}
