package integration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// RemoteProduct is the platform's view of one sellable item, keyed by SKU.
// Monetary fields stay in the provider's decimal-string form; parsing is the
// caller's decision so formatting differences never leak into comparisons
// by accident.
type RemoteProduct struct {
	// RemoteID is the product ID on the platform
	RemoteID string
	// VariantID is the variant ID for platforms that price at variant level
	VariantID string
	// InventoryItemID is the inventory item handle for stock writes (Shopify)
	InventoryItemID string
	// SKU is the merchant-assigned stock keeping unit
	SKU string
	// Name is the product title
	Name string
	// RegularPrice is the list price as a decimal string
	RegularPrice string
	// SalePrice is the discounted price as a decimal string, empty when unset
	SalePrice string
	// StockQuantity is nil when the platform does not track stock for the item
	StockQuantity *int64
}

// ProductUpdate carries new values for one remote product. It names only
// the fields the sync writes; everything else on the remote record is left
// untouched.
type ProductUpdate struct {
	RemoteID        string
	VariantID       string
	InventoryItemID string
	SKU             string
	RegularPrice    string
	SalePrice       string
	StockQuantity   int64
}

// UpdateFailure records one failed item in a batch update.
type UpdateFailure struct {
	// Identifier is the SKU (or remote ID when the SKU is unknown)
	Identifier string
	// Message is the platform's failure message
	Message string
}

// UpdateResult aggregates a batch update. Items are independent: a failure
// on one never rolls back or blocks the others.
type UpdateResult struct {
	SucceededSKUs []string
	Failures      []UpdateFailure
}

// Order is the narrow order view the sync backend consumes.
type Order struct {
	RemoteID  string
	Number    string
	Status    string
	Total     decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// Cursor is an opaque pagination handle. Callers only ever pass it back
// unchanged; its contents are a platform detail.
type Cursor string

// OrderPage is one page of orders plus the continuation handle.
type OrderPage struct {
	Orders  []Order
	HasMore bool
	Next    Cursor
}

// ---------------------------------------------------------------------------
// CatalogPlatform Port
// ---------------------------------------------------------------------------

// CatalogPlatform is the uniform contract over the concrete platform
// backends. A client is bound to exactly one Website at construction time;
// platform dispatch happens once there, never per call. Implementations
// perform network I/O only and keep no local persistence.
type CatalogPlatform interface {
	// PlatformCode returns the platform this client talks to
	PlatformCode() PlatformCode

	// FetchProductsBySKU fetches the remote records matching the given SKU
	// set, following pagination transparently. SKUs with no remote match are
	// simply absent from the result.
	FetchProductsBySKU(ctx context.Context, skus []string) ([]RemoteProduct, error)

	// FetchOrders returns one page of orders; pass the returned cursor to
	// continue. An empty cursor starts from the newest orders.
	FetchOrders(ctx context.Context, cursor Cursor, limit int) (*OrderPage, error)

	// FetchOrder returns a single order by its platform ID
	FetchOrder(ctx context.Context, remoteID string) (*Order, error)

	// UpdateProduct applies one product update
	UpdateProduct(ctx context.Context, update ProductUpdate) error

	// ApplyUpdates applies a payload of updates the way the platform prefers
	// (batch endpoint where one exists, item-by-item otherwise) and reports
	// per-item outcomes. A transport-level failure mid-payload returns the
	// partial result together with the error: successes already applied are
	// kept and unattempted items appear in Failures, so callers never lose
	// the record of a remote write that happened.
	ApplyUpdates(ctx context.Context, updates []ProductUpdate) (*UpdateResult, error)

	// CancelOrder cancels an order on the platform
	CancelOrder(ctx context.Context, remoteID string) error
}
