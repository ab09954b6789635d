package ecommerce

// shopifyVariant is the variant-level view Shopify prices and stocks at.
// CompareAtPrice is the struck-through list price; Price is what the
// customer pays, which maps to the sale price when a discount is active.
type shopifyVariant struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"product_id"`
	SKU             string `json:"sku"`
	Price           string `json:"price"`
	CompareAtPrice  string `json:"compare_at_price"`
	InventoryItemID int64  `json:"inventory_item_id"`
	InventoryQty    int64  `json:"inventory_quantity"`
	InventoryMgmt   string `json:"inventory_management"`
}

// shopifyProduct is the subset of a Shopify product the sync reads
type shopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Variants []shopifyVariant `json:"variants"`
}

// shopifyProductsResponse is the envelope of GET products.json
type shopifyProductsResponse struct {
	Products []shopifyProduct `json:"products"`
}

// shopifyVariantWrite is the body of PUT variants/{id}.json
type shopifyVariantWrite struct {
	Variant struct {
		ID             int64  `json:"id"`
		Price          string `json:"price"`
		CompareAtPrice string `json:"compare_at_price"`
	} `json:"variant"`
}

// shopifyInventorySet is the body of POST inventory_levels/set.json
type shopifyInventorySet struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int64 `json:"available"`
}

// shopifyOrder is the subset of a Shopify order the sync reads
type shopifyOrder struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TotalPrice string `json:"total_price"`
	Currency   string `json:"currency"`
	CreatedAt  string `json:"created_at"`
	// FinancialStatus plus CancelledAt together determine the effective status
	FinancialStatus string `json:"financial_status"`
	CancelledAt     string `json:"cancelled_at"`
}

// shopifyOrdersResponse is the envelope of GET orders.json
type shopifyOrdersResponse struct {
	Orders []shopifyOrder `json:"orders"`
}

// shopifyOrderResponse is the envelope of GET orders/{id}.json
type shopifyOrderResponse struct {
	Order *shopifyOrder `json:"order"`
}
