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
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksync/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed platform response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// wooAPIPrefix is the WooCommerce REST API mount point
const wooAPIPrefix = "/wp-json/wc/v3"

// wooPerPage is the WooCommerce maximum page size
const wooPerPage = 100

// WordPressAdapter implements CatalogPlatform against a WordPress site
// running WooCommerce. It is bound to one site's credentials at
// construction and authenticates every request with the site's consumer
// key pair over basic auth.
type WordPressAdapter struct {
	site       *integration.Website
	baseURL    string
	httpClient *http.Client
}

var _ integration.CatalogPlatform = (*WordPressAdapter)(nil)

// NewWordPressAdapter creates a client bound to one WooCommerce site
func NewWordPressAdapter(site *integration.Website) (*WordPressAdapter, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if site.Platform != integration.PlatformCodeWordPress {
		return nil, integration.ErrPlatformNotConfigured
	}
	return &WordPressAdapter{
		site:       site,
		baseURL:    strings.TrimRight(site.BaseURL, "/") + wooAPIPrefix,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// PlatformCode returns the platform code this adapter handles
func (a *WordPressAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeWordPress
}

// FetchProductsBySKU looks up remote products by SKU. WooCommerce accepts a
// comma-separated SKU filter, so one request covers the whole batch; result
// pages beyond the first are followed via the X-WP-TotalPages header. A SKU
// containing a comma cannot be expressed in the filter and is rejected up
// front rather than silently matching nothing.
func (a *WordPressAdapter) FetchProductsBySKU(ctx context.Context, skus []string) ([]integration.RemoteProduct, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	for _, sku := range skus {
		if strings.Contains(sku, ",") {
			return nil, fmt.Errorf("sku %q cannot be queried: the lookup filter is comma-separated", sku)
		}
	}

	products := make([]integration.RemoteProduct, 0, len(skus))
	page := 1
	for {
		query := url.Values{}
		query.Set("sku", strings.Join(skus, ","))
		query.Set("per_page", strconv.Itoa(wooPerPage))
		query.Set("page", strconv.Itoa(page))

		body, header, err := a.doRequest(ctx, http.MethodGet, "/products", query, nil)
		if err != nil {
			return nil, err
		}

		var batch []wooProduct
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
		}
		for _, p := range batch {
			products = append(products, a.toRemoteProduct(p))
		}

		totalPages, _ := strconv.Atoi(header.Get("X-WP-TotalPages"))
		if page >= totalPages || len(batch) == 0 {
			break
		}
		page++
	}

	return products, nil
}

// toRemoteProduct maps a WooCommerce product to the domain view
func (a *WordPressAdapter) toRemoteProduct(p wooProduct) integration.RemoteProduct {
	remote := integration.RemoteProduct{
		RemoteID:     strconv.FormatInt(p.ID, 10),
		SKU:          p.SKU,
		Name:         p.Name,
		RegularPrice: p.RegularPrice,
		SalePrice:    p.SalePrice,
	}
	if p.ManageStock {
		remote.StockQuantity = p.StockQuantity
	}
	return remote
}

// UpdateProduct applies one product update via PUT products/{id}
func (a *WordPressAdapter) UpdateProduct(ctx context.Context, update integration.ProductUpdate) error {
	write := wooProductWrite{
		RegularPrice:  update.RegularPrice,
		SalePrice:     update.SalePrice,
		StockQuantity: update.StockQuantity,
	}
	_, _, err := a.doRequest(ctx, http.MethodPut, "/products/"+url.PathEscape(update.RemoteID), nil, write)
	return err
}

// ApplyUpdates pushes the payload through POST products/batch, chunked to
// the endpoint's 100-item limit. WooCommerce applies items independently
// and reports failures inline, so a failed item never aborts its chunk.
// When a chunk call itself fails, the partial result is returned alongside
// the error: earlier successes stand and unattempted items are reported as
// failures.
func (a *WordPressAdapter) ApplyUpdates(ctx context.Context, updates []integration.ProductUpdate) (*integration.UpdateResult, error) {
	result := &integration.UpdateResult{
		SucceededSKUs: make([]string, 0, len(updates)),
	}

	for start := 0; start < len(updates); start += wooPerPage {
		end := start + wooPerPage
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		skuByID := make(map[int64]string, len(chunk))
		sent := make([]string, 0, len(chunk))
		req := wooBatchRequest{Update: make([]wooProductWrite, 0, len(chunk))}
		for _, u := range chunk {
			id, err := strconv.ParseInt(u.RemoteID, 10, 64)
			if err != nil {
				result.Failures = append(result.Failures, integration.UpdateFailure{
					Identifier: u.SKU,
					Message:    fmt.Sprintf("invalid remote product ID %q", u.RemoteID),
				})
				continue
			}
			skuByID[id] = u.SKU
			sent = append(sent, u.SKU)
			req.Update = append(req.Update, wooProductWrite{
				ID:            id,
				RegularPrice:  u.RegularPrice,
				SalePrice:     u.SalePrice,
				StockQuantity: u.StockQuantity,
			})
		}
		if len(req.Update) == 0 {
			continue
		}

		body, _, err := a.doRequest(ctx, http.MethodPost, "/products/batch", nil, req)
		if err != nil {
			// Earlier chunks already applied on the remote store; keep
			// their outcomes and report this chunk plus everything after
			// it as failed.
			failPending(result, sent, updates[end:], err)
			return result, err
		}

		var resp wooBatchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			err = fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
			failPending(result, sent, updates[end:], err)
			return result, err
		}

		for _, item := range resp.Update {
			sku := item.SKU
			if sku == "" {
				sku = skuByID[item.ID]
			}
			if item.Error != nil {
				result.Failures = append(result.Failures, integration.UpdateFailure{
					Identifier: sku,
					Message:    item.Error.Message,
				})
				continue
			}
			result.SucceededSKUs = append(result.SucceededSKUs, sku)
		}
	}

	return result, nil
}

// failPending marks the named SKUs and every remaining update as failed
// with the same cause, preserving outcomes already collected.
func failPending(result *integration.UpdateResult, skus []string, remaining []integration.ProductUpdate, cause error) {
	for _, sku := range skus {
		result.Failures = append(result.Failures, integration.UpdateFailure{
			Identifier: sku,
			Message:    cause.Error(),
		})
	}
	for _, u := range remaining {
		result.Failures = append(result.Failures, integration.UpdateFailure{
			Identifier: u.SKU,
			Message:    cause.Error(),
		})
	}
}

// FetchOrders returns one page of orders, newest first. The cursor is the
// next page number.
func (a *WordPressAdapter) FetchOrders(ctx context.Context, cursor integration.Cursor, limit int) (*integration.OrderPage, error) {
	page := 1
	if cursor != "" {
		p, err := strconv.Atoi(string(cursor))
		if err != nil || p < 1 {
			return nil, fmt.Errorf("%w: bad order cursor %q", integration.ErrPlatformInvalidResponse, cursor)
		}
		page = p
	}
	if limit <= 0 || limit > wooPerPage {
		limit = wooPerPage
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(limit))
	query.Set("page", strconv.Itoa(page))
	query.Set("orderby", "date")
	query.Set("order", "desc")

	body, header, err := a.doRequest(ctx, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var raw []wooOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	result := &integration.OrderPage{Orders: make([]integration.Order, 0, len(raw))}
	for _, o := range raw {
		result.Orders = append(result.Orders, toOrder(o))
	}

	totalPages, _ := strconv.Atoi(header.Get("X-WP-TotalPages"))
	if page < totalPages {
		result.HasMore = true
		result.Next = integration.Cursor(strconv.Itoa(page + 1))
	}
	return result, nil
}

// FetchOrder returns a single order by its WooCommerce ID
func (a *WordPressAdapter) FetchOrder(ctx context.Context, remoteID string) (*integration.Order, error) {
	body, _, err := a.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(remoteID), nil, nil)
	if err != nil {
		var apiErr *integration.RemoteAPIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}

	var raw wooOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	order := toOrder(raw)
	return &order, nil
}

// CancelOrder moves an order to the cancelled status
func (a *WordPressAdapter) CancelOrder(ctx context.Context, remoteID string) error {
	_, _, err := a.doRequest(ctx, http.MethodPut, "/orders/"+url.PathEscape(remoteID),
		nil, wooStatusWrite{Status: "cancelled"})
	if err != nil {
		var apiErr *integration.RemoteAPIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return integration.ErrOrderNotFound
		}
	}
	return err
}

// toOrder maps a WooCommerce order to the domain view
func toOrder(o wooOrder) integration.Order {
	total, err := decimal.NewFromString(o.Total)
	if err != nil {
		total = decimal.Zero
	}
	order := integration.Order{
		RemoteID: strconv.FormatInt(o.ID, 10),
		Number:   o.Number,
		Status:   o.Status,
		Total:    total,
		Currency: o.Currency,
	}
	if t, err := time.Parse("2006-01-02T15:04:05", o.DateCreated); err == nil {
		order.CreatedAt = t.UTC()
	}
	return order
}

// doRequest performs one authenticated WooCommerce API call and returns the
// raw body plus response headers. Non-2xx statuses are classified into the
// domain's platform errors.
func (a *WordPressAdapter) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, http.Header, error) {
	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("woocommerce: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.SetBasicAuth(a.site.ConsumerKey, a.site.ConsumerSecret)
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
		return nil, nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, nil, integration.ClassifyStatus(resp.StatusCode, string(body))
	}
	return body, resp.Header, nil
}
