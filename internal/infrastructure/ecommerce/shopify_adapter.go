package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksync/backend/internal/domain/integration"
)

// shopifyAPIVersion pins the admin REST API version all requests use
const shopifyAPIVersion = "2024-01"

// shopifyPerPage is the admin API maximum page size
const shopifyPerPage = 250

// defaultShopifyMinInterval spaces consecutive API calls to stay inside
// Shopify's 2 requests/second bucket with headroom for other consumers.
const defaultShopifyMinInterval = 500 * time.Millisecond

// ShopifyAdapter implements CatalogPlatform against one Shopify store's
// admin REST API. Calls through one adapter instance are serialized and
// spaced by a minimum interval; the rate budget is per store, so the
// adapter instance must be the only caller for its store.
type ShopifyAdapter struct {
	site        *integration.Website
	baseURL     string
	httpClient  *http.Client
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

var _ integration.CatalogPlatform = (*ShopifyAdapter)(nil)

// ShopifyOption configures a ShopifyAdapter
type ShopifyOption func(*ShopifyAdapter)

// WithMinInterval overrides the minimum spacing between API calls
func WithMinInterval(d time.Duration) ShopifyOption {
	return func(a *ShopifyAdapter) {
		if d >= 0 {
			a.minInterval = d
		}
	}
}

// NewShopifyAdapter creates a client bound to one Shopify store
func NewShopifyAdapter(site *integration.Website, opts ...ShopifyOption) (*ShopifyAdapter, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if site.Platform != integration.PlatformCodeShopify {
		return nil, integration.ErrPlatformNotConfigured
	}
	a := &ShopifyAdapter{
		site:        site,
		baseURL:     strings.TrimRight(site.BaseURL, "/") + "/admin/api/" + shopifyAPIVersion,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		minInterval: defaultShopifyMinInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// PlatformCode returns the platform code this adapter handles
func (a *ShopifyAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeShopify
}

// FetchProductsBySKU walks the store catalog and picks the variants whose
// SKU is in the requested set. The admin REST API has no SKU filter, so the
// walk follows Link-header pagination and stops early once every requested
// SKU has been seen.
func (a *ShopifyAdapter) FetchProductsBySKU(ctx context.Context, skus []string) ([]integration.RemoteProduct, error) {
	if len(skus) == 0 {
		return nil, nil
	}

	wanted := make(map[string]bool, len(skus))
	for _, s := range skus {
		wanted[s] = true
	}

	products := make([]integration.RemoteProduct, 0, len(skus))
	pageInfo := ""
	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(shopifyPerPage))
		query.Set("fields", "id,title,variants")
		if pageInfo != "" {
			query.Set("page_info", pageInfo)
		}

		body, header, err := a.doRequest(ctx, http.MethodGet, "/products.json", query, nil)
		if err != nil {
			return nil, err
		}

		var resp shopifyProductsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
		}

		for _, p := range resp.Products {
			for _, v := range p.Variants {
				if !wanted[v.SKU] {
					continue
				}
				products = append(products, toRemoteVariant(p, v))
				delete(wanted, v.SKU)
			}
		}

		pageInfo = nextPageInfo(header)
		if pageInfo == "" || len(wanted) == 0 || len(resp.Products) == 0 {
			break
		}
	}

	return products, nil
}

// toRemoteVariant maps a Shopify variant to the domain view. Shopify's
// "price" is the selling price and "compare_at_price" the list price; when
// no discount is active compare_at is empty and price is the list price.
func toRemoteVariant(p shopifyProduct, v shopifyVariant) integration.RemoteProduct {
	remote := integration.RemoteProduct{
		RemoteID:        strconv.FormatInt(p.ID, 10),
		VariantID:       strconv.FormatInt(v.ID, 10),
		InventoryItemID: strconv.FormatInt(v.InventoryItemID, 10),
		SKU:             v.SKU,
		Name:            p.Title,
		SalePrice:       v.Price,
	}
	if v.CompareAtPrice != "" {
		remote.RegularPrice = v.CompareAtPrice
	} else {
		remote.RegularPrice = v.Price
	}
	if v.InventoryMgmt != "" {
		qty := v.InventoryQty
		remote.StockQuantity = &qty
	}
	return remote
}

// UpdateProduct pushes one instruction as two writes: the variant's prices,
// then the inventory level at the site's configured location. Stock writes
// without a location ID fail before any call is made.
func (a *ShopifyAdapter) UpdateProduct(ctx context.Context, update integration.ProductUpdate) error {
	if a.site.LocationID == "" {
		return integration.ErrMissingLocationID
	}
	locationID, err := strconv.ParseInt(a.site.LocationID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad location ID %q", integration.ErrMissingLocationID, a.site.LocationID)
	}
	variantID, err := strconv.ParseInt(update.VariantID, 10, 64)
	if err != nil {
		return fmt.Errorf("shopify: invalid variant ID %q", update.VariantID)
	}
	inventoryItemID, err := strconv.ParseInt(update.InventoryItemID, 10, 64)
	if err != nil {
		return fmt.Errorf("shopify: invalid inventory item ID %q", update.InventoryItemID)
	}

	var priceWrite shopifyVariantWrite
	priceWrite.Variant.ID = variantID
	priceWrite.Variant.Price = update.SalePrice
	priceWrite.Variant.CompareAtPrice = update.RegularPrice
	path := fmt.Sprintf("/variants/%d.json", variantID)
	if _, _, err := a.doRequest(ctx, http.MethodPut, path, nil, priceWrite); err != nil {
		return err
	}

	stockWrite := shopifyInventorySet{
		LocationID:      locationID,
		InventoryItemID: inventoryItemID,
		Available:       update.StockQuantity,
	}
	_, _, err = a.doRequest(ctx, http.MethodPost, "/inventory_levels/set.json", nil, stockWrite)
	return err
}

// ApplyUpdates applies the payload item by item; Shopify has no batch
// product endpoint. Per-item failures are collected and never abort the
// remaining items. On context cancellation the partial result is returned
// alongside the error, with unattempted items reported as failures.
func (a *ShopifyAdapter) ApplyUpdates(ctx context.Context, updates []integration.ProductUpdate) (*integration.UpdateResult, error) {
	result := &integration.UpdateResult{
		SucceededSKUs: make([]string, 0, len(updates)),
	}
	for i, u := range updates {
		if err := ctx.Err(); err != nil {
			failPending(result, nil, updates[i:], err)
			return result, err
		}
		if err := a.UpdateProduct(ctx, u); err != nil {
			result.Failures = append(result.Failures, integration.UpdateFailure{
				Identifier: u.SKU,
				Message:    err.Error(),
			})
			continue
		}
		result.SucceededSKUs = append(result.SucceededSKUs, u.SKU)
	}
	return result, nil
}

// FetchOrders returns one page of orders, newest first. The cursor is the
// opaque page_info token from Shopify's Link header.
func (a *ShopifyAdapter) FetchOrders(ctx context.Context, cursor integration.Cursor, limit int) (*integration.OrderPage, error) {
	if limit <= 0 || limit > shopifyPerPage {
		limit = shopifyPerPage
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("page_info", string(cursor))
	} else {
		query.Set("status", "any")
		query.Set("order", "created_at desc")
	}

	body, header, err := a.doRequest(ctx, http.MethodGet, "/orders.json", query, nil)
	if err != nil {
		return nil, err
	}

	var resp shopifyOrdersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	result := &integration.OrderPage{Orders: make([]integration.Order, 0, len(resp.Orders))}
	for _, o := range resp.Orders {
		result.Orders = append(result.Orders, toShopifyOrder(o))
	}
	if next := nextPageInfo(header); next != "" {
		result.HasMore = true
		result.Next = integration.Cursor(next)
	}
	return result, nil
}

// FetchOrder returns a single order by its Shopify ID
func (a *ShopifyAdapter) FetchOrder(ctx context.Context, remoteID string) (*integration.Order, error) {
	body, _, err := a.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(remoteID)+".json", nil, nil)
	if err != nil {
		var apiErr *integration.RemoteAPIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}

	var resp shopifyOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.Order == nil {
		return nil, integration.ErrOrderNotFound
	}
	order := toShopifyOrder(*resp.Order)
	return &order, nil
}

// CancelOrder cancels an order on Shopify
func (a *ShopifyAdapter) CancelOrder(ctx context.Context, remoteID string) error {
	_, _, err := a.doRequest(ctx, http.MethodPost, "/orders/"+url.PathEscape(remoteID)+"/cancel.json", nil, struct{}{})
	if err != nil {
		var apiErr *integration.RemoteAPIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return integration.ErrOrderNotFound
		}
	}
	return err
}

// toShopifyOrder maps a Shopify order to the domain view
func toShopifyOrder(o shopifyOrder) integration.Order {
	total, err := decimal.NewFromString(o.TotalPrice)
	if err != nil {
		total = decimal.Zero
	}
	status := o.FinancialStatus
	if o.CancelledAt != "" {
		status = "cancelled"
	}
	order := integration.Order{
		RemoteID: strconv.FormatInt(o.ID, 10),
		Number:   o.Name,
		Status:   status,
		Total:    total,
		Currency: o.Currency,
	}
	if t, err := time.Parse(time.RFC3339, o.CreatedAt); err == nil {
		order.CreatedAt = t.UTC()
	}
	return order
}

// nextPageInfo extracts the page_info token of the rel="next" link from a
// Shopify Link header, or "" when there is no next page.
func nextPageInfo(header http.Header) string {
	for _, link := range strings.Split(header.Get("Link"), ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		if !strings.Contains(parts[1], `rel="next"`) {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// throttle enforces the minimum spacing between consecutive API calls
func (a *ShopifyAdapter) throttle(ctx context.Context) error {
	a.mu.Lock()
	wait := a.minInterval - time.Since(a.lastCall)
	if wait > 0 {
		a.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		a.mu.Lock()
	}
	a.lastCall = time.Now()
	a.mu.Unlock()
	return nil
}

// doRequest performs one authenticated admin API call. Non-2xx statuses
// are classified into the domain's platform errors; in particular 429
// surfaces as ErrRateLimitExceeded.
func (a *ShopifyAdapter) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, http.Header, error) {
	if err := a.throttle(ctx); err != nil {
		return nil, nil, err
	}

	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.site.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, nil, integration.ClassifyStatus(resp.StatusCode, string(body))
	}
	return body, resp.Header, nil
}
