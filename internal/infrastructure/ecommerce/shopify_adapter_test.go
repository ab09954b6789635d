package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksync/backend/internal/domain/integration"
)

func shopifySite(baseURL string) *integration.Website {
	return &integration.Website{
		ID:          uuid.New(),
		SiteUser:    "beta-store",
		Name:        "Beta Store",
		Platform:    integration.PlatformCodeShopify,
		BaseURL:     baseURL,
		AccessToken: "shpat_test",
		LocationID:  "5500",
	}
}

// noThrottle removes call spacing so tests run fast
func noThrottle() ShopifyOption { return WithMinInterval(0) }

func TestShopify_FetchProductsBySKU(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/"+shopifyAPIVersion+"/products.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		_ = json.NewEncoder(w).Encode(shopifyProductsResponse{Products: []shopifyProduct{
			{
				ID:    7001,
				Title: "Widget",
				Variants: []shopifyVariant{
					{ID: 8001, ProductID: 7001, SKU: "A1", Price: "99.00", CompareAtPrice: "120.00", InventoryItemID: 9001, InventoryQty: 5, InventoryMgmt: "shopify"},
					{ID: 8002, ProductID: 7001, SKU: "ZZ", Price: "10.00"},
				},
			},
			{
				ID:    7002,
				Title: "Gadget",
				Variants: []shopifyVariant{
					{ID: 8003, ProductID: 7002, SKU: "B2", Price: "45.00", InventoryItemID: 9003, InventoryQty: 2},
				},
			},
		}})
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	products, err := adapter.FetchProductsBySKU(context.Background(), []string{"A1", "B2"})
	require.NoError(t, err)
	require.Len(t, products, 2)

	a1 := products[0]
	assert.Equal(t, "7001", a1.RemoteID)
	assert.Equal(t, "8001", a1.VariantID)
	assert.Equal(t, "9001", a1.InventoryItemID)
	assert.Equal(t, "120.00", a1.RegularPrice)
	assert.Equal(t, "99.00", a1.SalePrice)
	require.NotNil(t, a1.StockQuantity)
	assert.Equal(t, int64(5), *a1.StockQuantity)

	// No compare_at price: the selling price is the list price too
	b2 := products[1]
	assert.Equal(t, "45.00", b2.RegularPrice)
	assert.Equal(t, "45.00", b2.SalePrice)
	// No inventory management: stock untracked
	assert.Nil(t, b2.StockQuantity)
}

func TestShopify_FetchProductsBySKU_StopsWhenAllFound(t *testing.T) {
	calls := 0
	var serverURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Every page advertises a next page; only the walk's early exit
		// keeps this from looping.
		w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/%s/products.json?page_info=tok%d>; rel="next"`, serverURL, shopifyAPIVersion, calls))
		_ = json.NewEncoder(w).Encode(shopifyProductsResponse{Products: []shopifyProduct{
			{ID: 1, Title: "Widget", Variants: []shopifyVariant{{ID: 2, SKU: "A1", Price: "10.00"}}},
		}})
	}))
	defer server.Close()
	serverURL = server.URL

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	products, err := adapter.FetchProductsBySKU(context.Background(), []string{"A1"})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, calls)
}

func TestShopify_UpdateProduct_WritesPriceThenInventory(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/admin/api/" + shopifyAPIVersion + "/variants/8001.json":
			var body shopifyVariantWrite
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(8001), body.Variant.ID)
			assert.Equal(t, "99", body.Variant.Price)
			assert.Equal(t, "120", body.Variant.CompareAtPrice)
		case "/admin/api/" + shopifyAPIVersion + "/inventory_levels/set.json":
			var body shopifyInventorySet
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(5500), body.LocationID)
			assert.Equal(t, int64(9001), body.InventoryItemID)
			assert.Equal(t, int64(3), body.Available)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	err = adapter.UpdateProduct(context.Background(), integration.ProductUpdate{
		SKU: "A1", RemoteID: "7001", VariantID: "8001", InventoryItemID: "9001",
		RegularPrice: "120", SalePrice: "99", StockQuantity: 3,
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "variants")
	assert.Contains(t, paths[1], "inventory_levels")
}

func TestShopify_UpdateProduct_RequiresLocationID(t *testing.T) {
	site := shopifySite("https://beta.myshopify.com")
	site.LocationID = ""

	adapter, err := NewShopifyAdapter(site, noThrottle())
	require.NoError(t, err)

	err = adapter.UpdateProduct(context.Background(), integration.ProductUpdate{
		SKU: "A1", VariantID: "8001", InventoryItemID: "9001", StockQuantity: 3,
	})
	assert.ErrorIs(t, err, integration.ErrMissingLocationID)
}

func TestShopify_ApplyUpdates_ItemFailuresAreIndependent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/api/"+shopifyAPIVersion+"/variants/13.json" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"errors":{"price":["is invalid"]}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	result, err := adapter.ApplyUpdates(context.Background(), []integration.ProductUpdate{
		{SKU: "A1", VariantID: "11", InventoryItemID: "21", SalePrice: "10", RegularPrice: "12"},
		{SKU: "B2", VariantID: "13", InventoryItemID: "23", SalePrice: "-1", RegularPrice: "12"},
		{SKU: "C3", VariantID: "15", InventoryItemID: "25", SalePrice: "30", RegularPrice: "33"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A1", "C3"}, result.SucceededSKUs)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "B2", result.Failures[0].Identifier)
}

func TestShopify_ApplyUpdates_CancellationReportsRemainder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected on a cancelled context")
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := adapter.ApplyUpdates(ctx, []integration.ProductUpdate{
		{SKU: "A1", VariantID: "11", InventoryItemID: "21", SalePrice: "10", RegularPrice: "12"},
		{SKU: "B2", VariantID: "13", InventoryItemID: "23", SalePrice: "20", RegularPrice: "22"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Every unattempted item is accounted for so the caller's audit
	// trail stays complete.
	require.NotNil(t, result)
	assert.Empty(t, result.SucceededSKUs)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "A1", result.Failures[0].Identifier)
	assert.Equal(t, "B2", result.Failures[1].Identifier)
}

func TestShopify_RateLimitClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	_, err = adapter.FetchProductsBySKU(context.Background(), []string{"A1"})
	assert.ErrorIs(t, err, integration.ErrRateLimitExceeded)
}

func TestShopify_ThrottleSpacesCalls(t *testing.T) {
	var timestamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timestamps = append(timestamps, time.Now())
		_ = json.NewEncoder(w).Encode(shopifyProductsResponse{})
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), WithMinInterval(50*time.Millisecond))
	require.NoError(t, err)

	_, err = adapter.FetchProductsBySKU(context.Background(), []string{"A1"})
	require.NoError(t, err)
	_, err = adapter.FetchProductsBySKU(context.Background(), []string{"A1"})
	require.NoError(t, err)

	require.Len(t, timestamps, 2)
	assert.GreaterOrEqual(t, timestamps[1].Sub(timestamps[0]), 45*time.Millisecond)
}

func TestShopify_ThrottleHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(shopifyProductsResponse{})
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), WithMinInterval(time.Hour))
	require.NoError(t, err)

	_, err = adapter.FetchProductsBySKU(context.Background(), []string{"A1"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = adapter.FetchProductsBySKU(ctx, []string{"A1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShopify_FetchOrders_CursorFromLinkHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cursor := r.URL.Query().Get("page_info"); cursor != "" {
			assert.Equal(t, "tok123", cursor)
			// Cursor requests must not re-send filter params
			assert.Empty(t, r.URL.Query().Get("status"))
		}
		w.Header().Set("Link", `<`+r.Host+`/admin/api/`+shopifyAPIVersion+`/orders.json?page_info=tok123>; rel="next"`)
		_ = json.NewEncoder(w).Encode(shopifyOrdersResponse{Orders: []shopifyOrder{
			{ID: 5001, Name: "#1042", TotalPrice: "310.00", Currency: "INR", CreatedAt: "2026-04-01T10:30:00Z", FinancialStatus: "paid"},
		}})
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	page, err := adapter.FetchOrders(context.Background(), "", 50)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "5001", page.Orders[0].RemoteID)
	assert.Equal(t, "#1042", page.Orders[0].Number)
	assert.Equal(t, "paid", page.Orders[0].Status)
	assert.True(t, page.HasMore)
	assert.Equal(t, integration.Cursor("tok123"), page.Next)

	_, err = adapter.FetchOrders(context.Background(), page.Next, 50)
	require.NoError(t, err)
}

func TestShopify_FetchOrder_CancelledStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(shopifyOrderResponse{Order: &shopifyOrder{
			ID: 5002, Name: "#1043", TotalPrice: "80.00", Currency: "INR",
			CreatedAt: "2026-04-02T08:00:00Z", FinancialStatus: "refunded", CancelledAt: "2026-04-03T09:00:00Z",
		}})
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)

	order, err := adapter.FetchOrder(context.Background(), "5002")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", order.Status)
}

func TestShopify_CancelOrder(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/admin/api/"+shopifyAPIVersion+"/orders/5001/cancel.json", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter, err := NewShopifyAdapter(shopifySite(server.URL), noThrottle())
	require.NoError(t, err)
	require.NoError(t, adapter.CancelOrder(context.Background(), "5001"))
	assert.True(t, called)
}

func TestNextPageInfo(t *testing.T) {
	header := http.Header{}
	header.Set("Link", `<https://x.myshopify.com/admin/api/2024-01/products.json?page_info=abc&limit=250>; rel="previous", <https://x.myshopify.com/admin/api/2024-01/products.json?page_info=def&limit=250>; rel="next"`)
	assert.Equal(t, "def", nextPageInfo(header))

	header.Set("Link", `<https://x.myshopify.com/admin/api/2024-01/products.json?page_info=abc>; rel="previous"`)
	assert.Equal(t, "", nextPageInfo(header))

	assert.Equal(t, "", nextPageInfo(http.Header{}))
}
