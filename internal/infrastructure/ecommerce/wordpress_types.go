package ecommerce

// wooProduct is the subset of a WooCommerce REST product the sync reads.
// Price fields arrive as decimal strings whose formatting depends on the
// store's settings; they are passed through untouched.
type wooProduct struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	RegularPrice  string `json:"regular_price"`
	SalePrice     string `json:"sale_price"`
	ManageStock   bool   `json:"manage_stock"`
	StockQuantity *int64 `json:"stock_quantity"`
}

// wooProductWrite is the update body for one product in a batch request
type wooProductWrite struct {
	ID            int64  `json:"id"`
	RegularPrice  string `json:"regular_price"`
	SalePrice     string `json:"sale_price"`
	StockQuantity int64  `json:"stock_quantity"`
}

// wooBatchRequest is the body of POST products/batch
type wooBatchRequest struct {
	Update []wooProductWrite `json:"update"`
}

// wooBatchItem is one item result in a batch response. WooCommerce reports
// per-item failures inline with HTTP 200 on the envelope.
type wooBatchItem struct {
	ID    int64         `json:"id"`
	SKU   string        `json:"sku"`
	Error *wooItemError `json:"error,omitempty"`
}

// wooItemError is WooCommerce's inline error object
type wooItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wooBatchResponse is the envelope of POST products/batch
type wooBatchResponse struct {
	Update []wooBatchItem `json:"update"`
}

// wooOrder is the subset of a WooCommerce order the sync reads
type wooOrder struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	DateCreated string `json:"date_created_gmt"`
}

// wooStatusWrite is the body of PUT orders/{id} for a status change
type wooStatusWrite struct {
	Status string `json:"status"`
}
